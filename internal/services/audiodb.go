package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/shelf/internal/shared"
)

const (
	defaultAudioDBURL = "https://www.theaudiodb.com/api/v1/json"
	defaultAudioDBKey = "2"
)

// AudioDBArtist holds the image fields of a TheAudioDB artist record.
type AudioDBArtist struct {
	Name      string `json:"strArtist"`
	Thumb     string `json:"strArtistThumb"`
	Fanart    string `json:"strArtistFanart"`
	WideThumb string `json:"strArtistWideThumb"`
}

// AudioDB looks up artist press photos on TheAudioDB.
type AudioDB struct {
	client  *Client
	baseURL string
	apiKey  string
}

// NewAudioDB creates an AudioDB client. The public test key is used when apiKey is empty.
func NewAudioDB(client *Client, baseURL, apiKey string) *AudioDB {
	if baseURL == "" {
		baseURL = defaultAudioDBURL
	}
	if apiKey == "" {
		apiKey = defaultAudioDBKey
	}
	return &AudioDB{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// ArtistPhoto returns the first available image for name: thumb, then fanart, then wide thumb.
func (a *AudioDB) ArtistPhoto(ctx context.Context, name string) (string, error) {
	var response struct {
		Artists []AudioDBArtist `json:"artists"`
	}

	endpoint := fmt.Sprintf("%s/%s/search.php?s=%s", a.baseURL, url.PathEscape(a.apiKey), url.QueryEscape(name))
	if err := a.client.getJSON(ctx, endpoint, &response); err != nil {
		return "", fmt.Errorf("audiodb search: %w", err)
	}

	if len(response.Artists) == 0 {
		return "", fmt.Errorf("%w: audiodb has no artist %s", shared.ErrNoMatch, name)
	}

	artist := response.Artists[0]
	for _, candidate := range []string{artist.Thumb, artist.Fanart, artist.WideThumb} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: audiodb has no image for %s", shared.ErrNoMatch, name)
}
