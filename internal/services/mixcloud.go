package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

const (
	defaultMixcloudURL       = "https://api.mixcloud.com"
	defaultMixcloudOEmbedURL = "https://app.mixcloud.com/oembed/"
	mixSearchLimit           = 6
)

type mixcloudOEmbed struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	Image        string `json:"image"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// MixcloudCloudcast is a Mixcloud search hit.
type MixcloudCloudcast struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Pictures struct {
		Large      string `json:"large"`
		ExtraLarge string `json:"extra_large"`
	} `json:"pictures"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

// Mixcloud resolves mixes by URL and searches cloudcasts.
type Mixcloud struct {
	client    *Client
	apiURL    string
	oembedURL string
}

// NewMixcloud creates a Mixcloud client.
func NewMixcloud(client *Client, apiURL, oembedURL string) *Mixcloud {
	if apiURL == "" {
		apiURL = defaultMixcloudURL
	}
	if oembedURL == "" {
		oembedURL = defaultMixcloudOEmbedURL
	}
	return &Mixcloud{client: client, apiURL: strings.TrimRight(apiURL, "/"), oembedURL: oembedURL}
}

// ResolveByURL fetches the oEmbed record for a Mixcloud page URL.
func (m *Mixcloud) ResolveByURL(ctx context.Context, mixURL string) (models.MixResult, error) {
	u, err := url.Parse(strings.TrimSpace(mixURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || !strings.HasSuffix(u.Hostname(), "mixcloud.com") {
		return models.MixResult{}, fmt.Errorf("%w: not a mixcloud url: %q", shared.ErrInvalidInput, mixURL)
	}

	params := url.Values{"url": {u.String()}, "format": {"json"}}
	var embed mixcloudOEmbed
	if err := m.client.getJSON(ctx, m.oembedURL+"?"+params.Encode(), &embed); err != nil {
		return models.MixResult{}, fmt.Errorf("mixcloud oembed: %w", err)
	}
	if embed.Title == "" {
		return models.MixResult{}, fmt.Errorf("%w: mixcloud has no mix at %s", shared.ErrNoMatch, mixURL)
	}

	cover := embed.Image
	if cover == "" {
		cover = embed.ThumbnailURL
	}
	return models.MixResult{
		Title:     embed.Title,
		Artist:    embed.AuthorName,
		CoverURL:  cover,
		SourceURL: u.String(),
	}, nil
}

// SearchMixes searches cloudcasts by text.
func (m *Mixcloud) SearchMixes(ctx context.Context, text string) ([]models.MixResult, error) {
	params := url.Values{"q": {text}, "type": {"cloudcast"}, "limit": {fmt.Sprint(mixSearchLimit)}}

	var response struct {
		Data []MixcloudCloudcast `json:"data"`
	}
	if err := m.client.getJSON(ctx, m.apiURL+"/search/?"+params.Encode(), &response); err != nil {
		return nil, fmt.Errorf("mixcloud search: %w", err)
	}

	mixes := make([]models.MixResult, 0, len(response.Data))
	for _, c := range response.Data {
		cover := c.Pictures.ExtraLarge
		if cover == "" {
			cover = c.Pictures.Large
		}
		mixes = append(mixes, models.MixResult{
			Title:     c.Name,
			Artist:    c.User.Name,
			CoverURL:  cover,
			SourceURL: c.URL,
		})
	}
	return mixes, nil
}
