// MusicBrainz web service client (https://musicbrainz.org/doc/MusicBrainz_API)
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/desertthunder/shelf/internal/cache"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

const (
	defaultMusicBrainzURL = "https://musicbrainz.org/ws/2"
	catalogSearchLimit    = 4
	artistMatchLimit      = 3
)

// Lookups caches identifier lookups. [cache.LookupCache] implements it.
type Lookups interface {
	Get(bucket []byte, key string) (string, bool)
	Set(bucket []byte, key, value string) error
}

type artistCredit struct {
	Name string `json:"name"`
}

// MBReleaseGroup is a release group search hit.
type MBReleaseGroup struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	FirstReleaseDate string         `json:"first-release-date"`
	PrimaryType      string         `json:"primary-type"`
	ArtistCredit     []artistCredit `json:"artist-credit"`
}

// MBArtist is an artist search hit.
type MBArtist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Disambiguation string `json:"disambiguation"`
	Country        string `json:"country"`
}

type mbRelation struct {
	Type string `json:"type"`
	URL  struct {
		Resource string `json:"resource"`
	} `json:"url"`
}

// MusicBrainz searches the catalog for release groups and artists.
//
// Every request waits on a shared limiter; the public service allows one request per second.
type MusicBrainz struct {
	client  *Client
	baseURL string
	limiter *rate.Limiter
	lookups Lookups
	logger  *log.Logger
}

// NewMusicBrainz creates a MusicBrainz client. A nil limiter allows one request per second and a nil lookups
// disables identifier caching.
func NewMusicBrainz(client *Client, baseURL string, limiter *rate.Limiter, lookups Lookups, logger *log.Logger) *MusicBrainz {
	if baseURL == "" {
		baseURL = defaultMusicBrainzURL
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MusicBrainz{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: limiter,
		lookups: lookups,
		logger:  logger.With("component", "musicbrainz"),
	}
}

func (m *MusicBrainz) get(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	params.Set("fmt", "json")
	return m.client.getJSON(ctx, m.baseURL+endpoint+"?"+params.Encode(), result)
}

func (m *MusicBrainz) searchReleaseGroups(ctx context.Context, query string, limit int) ([]MBReleaseGroup, error) {
	var response struct {
		ReleaseGroups []MBReleaseGroup `json:"release-groups"`
	}
	params := url.Values{"query": {query}, "limit": {fmt.Sprint(limit)}}
	if err := m.get(ctx, "/release-group/", params, &response); err != nil {
		return nil, fmt.Errorf("release group search: %w", err)
	}
	return response.ReleaseGroups, nil
}

func (m *MusicBrainz) searchArtists(ctx context.Context, query string, limit int) ([]MBArtist, error) {
	var response struct {
		Artists []MBArtist `json:"artists"`
	}
	params := url.Values{"query": {query}, "limit": {fmt.Sprint(limit)}}
	if err := m.get(ctx, "/artist/", params, &response); err != nil {
		return nil, fmt.Errorf("artist search: %w", err)
	}
	return response.Artists, nil
}

// SearchCatalog runs the album and artist searches in parallel. Albums come first in the result.
func (m *MusicBrainz) SearchCatalog(ctx context.Context, text string) (models.SearchResults, error) {
	var (
		groups  []MBReleaseGroup
		artists []MBArtist
	)

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		groups, err = m.searchReleaseGroups(ctx, text, catalogSearchLimit)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		artists, err = m.searchArtists(ctx, text, catalogSearchLimit)
		return err
	})
	if err := p.Wait(); err != nil {
		return models.SearchResults{}, err
	}

	results := models.SearchResults{
		Albums:  make([]models.AlbumResult, 0, len(groups)),
		Artists: make([]models.ArtistResult, 0, len(artists)),
	}
	for _, rg := range groups {
		results.Albums = append(results.Albums, rg.toAlbum("Unknown Artist", ""))
	}
	for _, a := range artists {
		results.Artists = append(results.Artists, models.ArtistResult{
			Name:           a.Name,
			Disambiguation: a.Disambiguation,
			Country:        a.Country,
			ExternalID:     a.ID,
		})
	}
	return results, nil
}

// LookupReleaseGroup returns the best release group for artist and title with canonical metadata.
// Returns [shared.ErrNoMatch] when the catalog has nothing.
func (m *MusicBrainz) LookupReleaseGroup(ctx context.Context, artist, title string) (models.AlbumResult, error) {
	query := fmt.Sprintf("releasegroup:%s AND artist:%s", luceneQuote(title), luceneQuote(artist))
	groups, err := m.searchReleaseGroups(ctx, query, 1)
	if err != nil {
		return models.AlbumResult{}, err
	}
	if len(groups) == 0 {
		return models.AlbumResult{}, fmt.Errorf("%w: %s - %s", shared.ErrNoMatch, artist, title)
	}

	album := groups[0].toAlbum(artist, "TBA")
	m.remember(cache.BucketReleaseGroups, shared.NormalizeKey(artist, title), album.ExternalID)
	return album, nil
}

// ReleaseIdentifier returns only the release group id for artist and title, consulting the cache first.
func (m *MusicBrainz) ReleaseIdentifier(ctx context.Context, artist, title string) (string, error) {
	key := shared.NormalizeKey(artist, title)
	if id, ok := m.recall(cache.BucketReleaseGroups, key); ok {
		return id, nil
	}

	album, err := m.LookupReleaseGroup(ctx, artist, title)
	if err != nil {
		return "", err
	}
	return album.ExternalID, nil
}

// SearchArtistID resolves an artist name to an id, preferring an exact case-insensitive name match over the first
// hit.
func (m *MusicBrainz) SearchArtistID(ctx context.Context, name string) (string, error) {
	key := shared.NormalizeKey(name)
	if id, ok := m.recall(cache.BucketArtists, key); ok {
		return id, nil
	}

	artists, err := m.searchArtists(ctx, name, artistMatchLimit)
	if err != nil {
		return "", err
	}
	if len(artists) == 0 {
		return "", fmt.Errorf("%w: artist %s", shared.ErrNoMatch, name)
	}

	id := artists[0].ID
	for _, a := range artists {
		if strings.EqualFold(a.Name, name) {
			id = a.ID
			break
		}
	}

	m.remember(cache.BucketArtists, key, id)
	return id, nil
}

// ArtistWikidataID follows the artist's url relations to its Wikidata entity id (e.g. "Q483507").
func (m *MusicBrainz) ArtistWikidataID(ctx context.Context, mbid string) (string, error) {
	if qid, ok := m.recall(cache.BucketWikidata, mbid); ok {
		return qid, nil
	}

	var response struct {
		Relations []mbRelation `json:"relations"`
	}
	params := url.Values{"inc": {"url-rels"}}
	if err := m.get(ctx, "/artist/"+url.PathEscape(mbid), params, &response); err != nil {
		return "", fmt.Errorf("artist lookup: %w", err)
	}

	for _, rel := range response.Relations {
		if rel.Type != "wikidata" {
			continue
		}
		resource := strings.TrimRight(rel.URL.Resource, "/")
		if i := strings.LastIndex(resource, "/"); i >= 0 && i < len(resource)-1 {
			qid := resource[i+1:]
			m.remember(cache.BucketWikidata, mbid, qid)
			return qid, nil
		}
	}
	return "", fmt.Errorf("%w: no wikidata relation for %s", shared.ErrNoMatch, mbid)
}

func (m *MusicBrainz) recall(bucket []byte, key string) (string, bool) {
	if m.lookups == nil {
		return "", false
	}
	return m.lookups.Get(bucket, key)
}

func (m *MusicBrainz) remember(bucket []byte, key, value string) {
	if m.lookups == nil || value == "" {
		return
	}
	if err := m.lookups.Set(bucket, key, value); err != nil {
		m.logger.Warn("failed to cache lookup", "bucket", string(bucket), "key", key, "error", err)
	}
}

func (rg MBReleaseGroup) toAlbum(fallbackArtist, fallbackYear string) models.AlbumResult {
	artist := fallbackArtist
	if len(rg.ArtistCredit) > 0 && rg.ArtistCredit[0].Name != "" {
		artist = rg.ArtistCredit[0].Name
	}
	year, _, _ := strings.Cut(rg.FirstReleaseDate, "-")
	if year == "" {
		year = fallbackYear
	}
	return models.AlbumResult{
		Title:       rg.Title,
		Artist:      artist,
		Year:        year,
		ReleaseDate: rg.FirstReleaseDate,
		ExternalID:  rg.ID,
	}
}

// luceneQuote wraps s in quotes for a search field, escaping quotes and backslashes.
func luceneQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
