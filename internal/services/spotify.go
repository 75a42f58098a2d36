// Spotify Web API album search
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/search
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/shelf/internal/shared"
)

const (
	spotifyTokenURL    = "https://accounts.spotify.com/api/token"
	spotifyBaseURL     = "https://api.spotify.com/v1"
	spotifySearchLimit = 5
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album search hit.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	Images      []SpotifyImage  `json:"images"`
}

// Spotify searches the Spotify catalog for album covers using the client-credentials flow.
type Spotify struct {
	config  *clientcredentials.Config
	api     *Client
	baseURL string
}

// NewSpotify creates a Spotify client. base supplies the transport the token source and API calls go through.
func NewSpotify(base *Client, clientID, clientSecret, tokenURL, apiURL string) (*Spotify, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client id and secret", shared.ErrMissingCredentials)
	}
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}
	if apiURL == "" {
		apiURL = spotifyBaseURL
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	// the token source and API calls share the base transport
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base.HTTPClient())
	return &Spotify{
		config:  config,
		api:     &Client{httpClient: config.Client(ctx), userAgent: base.userAgent},
		baseURL: strings.TrimRight(apiURL, "/"),
	}, nil
}

// Name returns the service name.
func (s *Spotify) Name() string {
	return "Spotify"
}

// SearchAlbums returns album hits for artist and title.
func (s *Spotify) SearchAlbums(ctx context.Context, artist, title string) ([]SpotifyAlbum, error) {
	params := url.Values{
		"q":     {fmt.Sprintf("album:%s artist:%s", title, artist)},
		"type":  {"album"},
		"limit": {fmt.Sprint(spotifySearchLimit)},
	}

	var response struct {
		Albums struct {
			Items []SpotifyAlbum `json:"items"`
		} `json:"albums"`
	}

	if err := s.api.getJSON(ctx, s.baseURL+"/search?"+params.Encode(), &response); err != nil {
		return nil, fmt.Errorf("spotify search: %w", err)
	}
	return response.Albums.Items, nil
}

// AlbumCover returns the largest image of the album whose "artist title" is closest to the query.
func (s *Spotify) AlbumCover(ctx context.Context, artist, title string) (string, error) {
	albums, err := s.SearchAlbums(ctx, artist, title)
	if err != nil {
		return "", err
	}

	best, ok := BestAlbumMatch(albums, artist, title)
	if !ok {
		return "", fmt.Errorf("%w: spotify has no cover for %s - %s", shared.ErrNoMatch, artist, title)
	}
	return best.Images[0].URL, nil
}

// BestAlbumMatch picks the album with an image whose name is most similar to the query. An exact normalized title
// match wins outright; otherwise the smallest Levenshtein distance over "artist title" decides.
func BestAlbumMatch(albums []SpotifyAlbum, artist, title string) (SpotifyAlbum, bool) {
	query := shared.NormalizeName(artist + " " + title)
	wantTitle := shared.NormalizeName(title)

	var (
		best     SpotifyAlbum
		bestDist int
		found    bool
	)
	for _, album := range albums {
		if len(album.Images) == 0 {
			continue
		}

		candidate := album.Name
		if len(album.Artists) > 0 {
			candidate = album.Artists[0].Name + " " + album.Name
		}

		dist := fuzzy.LevenshteinDistance(query, shared.NormalizeName(candidate))
		if shared.NormalizeName(album.Name) == wantTitle {
			dist = -1
		}
		if !found || dist < bestDist {
			best, bestDist, found = album, dist, true
		}
	}
	return best, found
}
