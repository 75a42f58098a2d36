package services

import (
	"crypto"
	_ "crypto/md5"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
)

const (
	defaultCommonsURL = "https://upload.wikimedia.org/wikipedia/commons"
	commonsThumbWidth = 500
)

// Commons builds Wikimedia Commons thumbnail URLs.
//
// Commons stores a file under a directory named after the MD5 of its underscore-normalized name. When MD5 is not
// available the FNV-32a hex of the same name is used instead; that path is deterministic but usually wrong, so the
// resulting URL fails its reachability check and counts as no image.
type Commons struct {
	baseURL string
	md5     bool
}

// NewCommons creates a Commons URL builder.
func NewCommons(baseURL string) *Commons {
	if baseURL == "" {
		baseURL = defaultCommonsURL
	}
	return &Commons{baseURL: strings.TrimRight(baseURL, "/"), md5: crypto.MD5.Available()}
}

// ThumbURL returns the 500px thumbnail URL for a Commons file name as found in a Wikidata claim.
func (c *Commons) ThumbURL(fileName string) string {
	name := strings.ReplaceAll(strings.TrimSpace(fileName), " ", "_")
	digest := c.digest(name)
	encoded := url.PathEscape(name)
	return fmt.Sprintf("%s/thumb/%s/%s/%s/%dpx-%s",
		c.baseURL, digest[:1], digest[:2], encoded, commonsThumbWidth, encoded)
}

func (c *Commons) digest(name string) string {
	if c.md5 {
		h := crypto.MD5.New()
		h.Write([]byte(name))
		return hex.EncodeToString(h.Sum(nil))
	}
	return fallbackDigest(name)
}

func fallbackDigest(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("%08x", h.Sum32())
}
