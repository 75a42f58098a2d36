// package testing contains shared testing utilities
package testing

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// MockRepository is an in-memory [models.ItemRepository]. Setting Err makes every write fail.
type MockRepository struct {
	mu    sync.Mutex
	rows  map[string]models.Item
	seq   []string
	Err   error
	Calls map[string]int
}

func NewMockRepository(items ...models.Item) *MockRepository {
	r := &MockRepository{rows: make(map[string]models.Item), Calls: make(map[string]int)}
	for _, item := range items {
		r.rows[item.ID] = item
		r.seq = append(r.seq, item.ID)
	}
	return r
}

func (r *MockRepository) call(name string) error {
	r.Calls[name]++
	return r.Err
}

// CallCount returns how many times the named method ran.
func (r *MockRepository) CallCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Calls[name]
}

// Row returns the stored row for id.
func (r *MockRepository) Row(id string) (models.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.rows[id]
	return item, ok
}

func (r *MockRepository) Create(_ context.Context, item models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Create"); err != nil {
		return err
	}
	r.rows[item.ID] = item
	r.seq = append(r.seq, item.ID)
	return nil
}

func (r *MockRepository) Get(_ context.Context, id string) (models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["Get"]++
	item, ok := r.rows[id]
	if !ok {
		return models.Item{}, shared.ErrItemNotFound
	}
	return item, nil
}

// List returns rows with a manual order first, ascending, then the rest in insertion order.
func (r *MockRepository) List(_ context.Context) ([]models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["List"]++

	items := make([]models.Item, 0, len(r.seq))
	for _, id := range r.seq {
		if item, ok := r.rows[id]; ok {
			items = append(items, item)
		}
	}
	slices.SortStableFunc(items, func(a, b models.Item) int {
		switch {
		case a.Order != nil && b.Order != nil:
			return cmp.Compare(*a.Order, *b.Order)
		case a.Order != nil:
			return -1
		case b.Order != nil:
			return 1
		}
		return 0
	})
	return items, nil
}

func (r *MockRepository) update(name, id string, fn func(*models.Item)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call(name); err != nil {
		return err
	}
	item, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}
	fn(&item)
	r.rows[id] = item
	return nil
}

func (r *MockRepository) SetListened(_ context.Context, id string, listened bool) error {
	return r.update("SetListened", id, func(item *models.Item) { item.Listened = listened })
}

func (r *MockRepository) SetListenAgain(_ context.Context, id string, again bool) error {
	return r.update("SetListenAgain", id, func(item *models.Item) { item.ListenAgain = again })
}

func (r *MockRepository) SetArtwork(_ context.Context, id, coverURL, externalID string) error {
	return r.update("SetArtwork", id, func(item *models.Item) {
		item.CoverURL = coverURL
		if externalID != "" {
			item.ExternalID = externalID
		}
	})
}

func (r *MockRepository) SetExternalID(_ context.Context, id, externalID string) error {
	return r.update("SetExternalID", id, func(item *models.Item) { item.ExternalID = externalID })
}

func (r *MockRepository) SaveOrder(_ context.Context, updates []models.OrderUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("SaveOrder"); err != nil {
		return err
	}
	for _, u := range updates {
		if item, ok := r.rows[u.ID]; ok {
			item.Order = models.IntPtr(u.Order)
			r.rows[u.ID] = item
		}
	}
	return nil
}

func (r *MockRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Delete"); err != nil {
		return err
	}
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}
	delete(r.rows, id)
	return nil
}

var _ models.ItemRepository = (*MockRepository)(nil)

// MockCatalog answers catalog calls from fixed data.
type MockCatalog struct {
	mu       sync.Mutex
	Results  models.SearchResults
	Releases map[string]models.AlbumResult // keyed by shared.NormalizeKey(artist, title)
	Err      error
	Lookups  int
	Searches int
}

func (m *MockCatalog) SearchCatalog(_ context.Context, _ string) (models.SearchResults, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searches++
	return m.Results, m.Err
}

func (m *MockCatalog) LookupReleaseGroup(_ context.Context, artist, title string) (models.AlbumResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups++
	if m.Err != nil {
		return models.AlbumResult{}, m.Err
	}
	if album, ok := m.Releases[shared.NormalizeKey(artist, title)]; ok {
		return album, nil
	}
	return models.AlbumResult{}, shared.ErrNoMatch
}

// MockMixes answers mix calls from fixed data.
type MockMixes struct {
	Mix   models.MixResult
	Mixes []models.MixResult
	Err   error
}

func (m *MockMixes) ResolveByURL(_ context.Context, mixURL string) (models.MixResult, error) {
	if m.Err != nil {
		return models.MixResult{}, m.Err
	}
	mix := m.Mix
	mix.SourceURL = mixURL
	return mix, nil
}

func (m *MockMixes) SearchMixes(_ context.Context, _ string) ([]models.MixResult, error) {
	return m.Mixes, m.Err
}

// Album builds a stored album row for tests.
func Album(id, artist, title string, addedAt time.Time) models.Item {
	return models.Item{ID: id, Kind: models.KindAlbum, Artist: artist, Title: title, AddedAt: addedAt}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
