package services

import (
	"fmt"
	"net/url"
	"strings"
)

const defaultCoverArtURL = "https://coverartarchive.org"

// CoverArtArchive builds image URLs for release groups. It never talks to the network itself; the pipeline's
// reachability check decides whether the image exists.
type CoverArtArchive struct {
	baseURL string
}

// NewCoverArtArchive creates a CoverArtArchive URL builder.
func NewCoverArtArchive(baseURL string) *CoverArtArchive {
	if baseURL == "" {
		baseURL = defaultCoverArtURL
	}
	return &CoverArtArchive{baseURL: strings.TrimRight(baseURL, "/")}
}

// FrontURL returns the 500px front cover URL for a release group id.
func (c *CoverArtArchive) FrontURL(releaseGroupID string) string {
	return fmt.Sprintf("%s/release-group/%s/front-500", c.baseURL, url.PathEscape(releaseGroupID))
}
