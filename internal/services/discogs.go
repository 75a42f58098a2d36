package services

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/shelf/internal/shared"
)

const defaultDiscogsURL = "https://www.discogs.com"

// discogsImage matches image URLs on the Discogs image CDN.
var discogsImage = regexp.MustCompile(`https://i\.discogs\.com/[^"'\s<>)]+`)

// Discogs scrapes the public Discogs search page for a cover image. No token is needed.
type Discogs struct {
	client  *Client
	baseURL string
}

// NewDiscogs creates a Discogs scraper.
func NewDiscogs(client *Client, baseURL string) *Discogs {
	if baseURL == "" {
		baseURL = defaultDiscogsURL
	}
	return &Discogs{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// AlbumCover returns the first release image on the search page for artist and title.
func (d *Discogs) AlbumCover(ctx context.Context, artist, title string) (string, error) {
	params := url.Values{
		"q":    {strings.TrimSpace(artist + " " + title)},
		"type": {"release"},
	}

	page, err := d.client.getText(ctx, d.baseURL+"/search/?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("discogs search: %w", err)
	}

	for _, match := range discogsImage.FindAllString(page, -1) {
		candidate := html.UnescapeString(match)
		if strings.Contains(candidate, "spacer") {
			continue
		}
		return candidate, nil
	}
	return "", fmt.Errorf("%w: discogs page has no image for %s - %s", shared.ErrNoMatch, artist, title)
}
