// Package shelf is the collection engine: the ordered in-memory store, the drag reorder session and the add, toggle
// and remove operations that keep the row store and the artwork pipeline in step.
package shelf

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/shelf/internal/artwork"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// minSearchLength is the shortest text worth sending to the catalog.
const minSearchLength = 2

// manualYear marks albums added from text the catalog could not match.
const manualYear = "TBA"

// lineSeparators split "Artist - Title" entries. Bare hyphens are left alone so names like "Jay-Z" survive.
var lineSeparators = []string{" - ", " – ", " — "}

// Catalog is the release and artist search the shelf uses for text entry.
type Catalog interface {
	SearchCatalog(ctx context.Context, text string) (models.SearchResults, error)
	LookupReleaseGroup(ctx context.Context, artist, title string) (models.AlbumResult, error)
}

// Mixes resolves and searches mixes.
type Mixes interface {
	ResolveByURL(ctx context.Context, mixURL string) (models.MixResult, error)
	SearchMixes(ctx context.Context, text string) ([]models.MixResult, error)
}

// Options configures a [Shelf].
type Options struct {
	Catalog       Catalog
	Mixes         Mixes
	Chains        artwork.Chains
	Checker       artwork.Checker
	HoverThrottle time.Duration
	Logger        *log.Logger
}

// Shelf binds the in-memory [Store] to the row store and the artwork pipeline.
//
// Row store failures are logged and absorbed: the in-memory collection stays authoritative.
type Shelf struct {
	store    *Store
	repo     models.ItemRepository
	pipeline *artwork.Pipeline
	catalog  Catalog
	mixes    Mixes
	logger   *log.Logger

	reorderOnce sync.Once
	reorder     *ReorderSession
	throttle    time.Duration
}

// New creates a Shelf over repo.
func New(repo models.ItemRepository, opts Options) *Shelf {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	store := NewStore()
	var persist artwork.Persister
	if repo != nil {
		persist = repo
	}

	return &Shelf{
		store:    store,
		repo:     repo,
		pipeline: artwork.NewPipeline(store, persist, opts.Chains, opts.Checker, logger),
		catalog:  opts.Catalog,
		mixes:    opts.Mixes,
		logger:   logger.With("component", "shelf"),
		throttle: opts.HoverThrottle,
	}
}

// Store returns the in-memory collection.
func (s *Shelf) Store() *Store { return s.store }

// Pipeline returns the artwork pipeline.
func (s *Shelf) Pipeline() *artwork.Pipeline { return s.pipeline }

// Items returns the collection in display order.
func (s *Shelf) Items() []models.Item { return s.store.Items() }

// Load reads every row and applies the ordering policy.
func (s *Shelf) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	s.store.Load(items)
	s.logger.Debug("collection loaded", "items", len(items))
	return nil
}

// AddAlbum adds an album and starts its artwork resolution.
func (s *Shelf) AddAlbum(ctx context.Context, album models.AlbumResult) models.Item {
	return s.add(ctx, models.NewAlbum(album))
}

// AddArtist adds an artist and starts its artwork resolution.
func (s *Shelf) AddArtist(ctx context.Context, artist models.ArtistResult) models.Item {
	return s.add(ctx, models.NewArtist(artist))
}

// AddMix adds a mix. Mixes arrive with their cover.
func (s *Shelf) AddMix(ctx context.Context, mix models.MixResult) models.Item {
	return s.add(ctx, models.NewMix(mix))
}

// AddMixByURL resolves a mix page URL and adds it.
func (s *Shelf) AddMixByURL(ctx context.Context, mixURL string) (models.Item, error) {
	if s.mixes == nil {
		return models.Item{}, shared.ErrServiceUnavailable
	}
	mix, err := s.mixes.ResolveByURL(ctx, mixURL)
	if err != nil {
		return models.Item{}, err
	}
	return s.AddMix(ctx, mix), nil
}

func (s *Shelf) add(ctx context.Context, item models.Item) models.Item {
	if s.repo != nil {
		if err := s.repo.Create(ctx, item); err != nil {
			s.logger.Error("failed to save item", "id", item.ID, "kind", item.Kind, "error", err)
		}
	}
	s.store.Add(item)
	s.pipeline.Resolve(ctx, item)
	s.logger.Info("item added", "id", item.ID, "kind", item.Kind, "title", item.DisplayTitle())
	return item
}

// ParseLine splits manual entry text into artist and title. ok is false when the text has no separator.
func ParseLine(line string) (artist, title string, ok bool) {
	line = strings.TrimSpace(line)

	cut := -1
	var sep string
	for _, candidate := range lineSeparators {
		if i := strings.Index(line, candidate); i >= 0 && (cut < 0 || i < cut) {
			cut, sep = i, candidate
		}
	}
	if cut < 0 {
		return "", "", false
	}

	artist = strings.TrimSpace(line[:cut])
	title = strings.TrimSpace(line[cut+len(sep):])
	if artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}

// ImportLine adds one line of manual entry. "Artist - Title" is canonicalized through the catalog and falls back
// to a manual album; anything else becomes an artist. Blank lines are skipped and report false.
func (s *Shelf) ImportLine(ctx context.Context, line string) (models.Item, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return models.Item{}, false
	}

	artist, title, ok := ParseLine(line)
	if !ok {
		return s.AddArtist(ctx, models.ArtistResult{Name: line}), true
	}

	if s.catalog != nil {
		album, err := s.catalog.LookupReleaseGroup(ctx, artist, title)
		switch {
		case err == nil:
			return s.AddAlbum(ctx, album), true
		case errors.Is(err, shared.ErrNoMatch):
			s.logger.Debug("no catalog match, adding manual entry", "artist", artist, "title", title)
		default:
			s.logger.Warn("catalog lookup failed, adding manual entry", "artist", artist, "title", title, "error", err)
		}
	}

	return s.AddAlbum(ctx, models.AlbumResult{Artist: artist, Title: title, Year: manualYear}), true
}

// SearchText reports whether text qualifies for a catalog search: a single line of at least two characters.
func SearchText(text string) bool {
	return !strings.Contains(text, "\n") && len([]rune(text)) >= minSearchLength
}

// Search queries the catalog. Text that does not qualify yields no results and no error.
func (s *Shelf) Search(ctx context.Context, text string) (models.SearchResults, error) {
	if !SearchText(text) || s.catalog == nil {
		return models.SearchResults{}, nil
	}
	return s.catalog.SearchCatalog(ctx, text)
}

// SearchMixes queries the mix catalog under the same text rules as [Shelf.Search].
func (s *Shelf) SearchMixes(ctx context.Context, text string) ([]models.MixResult, error) {
	if !SearchText(text) || s.mixes == nil {
		return nil, nil
	}
	return s.mixes.SearchMixes(ctx, text)
}

// ToggleListened flips the listened flag.
func (s *Shelf) ToggleListened(ctx context.Context, id string) (models.Item, error) {
	return s.toggle(ctx, id, "listened",
		func(item models.Item) bool { return item.Listened },
		func(item *models.Item, v bool) { item.Listened = v },
		func(ctx context.Context, v bool) error { return s.repo.SetListened(ctx, id, v) })
}

// ToggleListenAgain flips the listen-again flag.
func (s *Shelf) ToggleListenAgain(ctx context.Context, id string) (models.Item, error) {
	return s.toggle(ctx, id, "listen_again",
		func(item models.Item) bool { return item.ListenAgain },
		func(item *models.Item, v bool) { item.ListenAgain = v },
		func(ctx context.Context, v bool) error { return s.repo.SetListenAgain(ctx, id, v) })
}

// toggle persists the flipped flag, then applies it to the store.
func (s *Shelf) toggle(
	ctx context.Context,
	id, field string,
	get func(models.Item) bool,
	set func(*models.Item, bool),
	save func(context.Context, bool) error,
) (models.Item, error) {
	item, ok := s.store.Get(id)
	if !ok {
		return models.Item{}, shared.ErrItemNotFound
	}
	value := !get(item)

	if s.repo != nil {
		if err := save(ctx, value); err != nil {
			s.logger.Error("failed to save flag", "id", id, "field", field, "error", err)
		}
	}

	if !s.store.Update(id, func(item *models.Item) { set(item, value) }) {
		return models.Item{}, shared.ErrItemNotFound
	}
	item, _ = s.store.Get(id)
	return item, nil
}

// Remove deletes the item everywhere and drops its resolution bookkeeping.
func (s *Shelf) Remove(ctx context.Context, id string) error {
	if !s.store.Has(id) {
		return shared.ErrItemNotFound
	}

	if s.repo != nil {
		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.Error("failed to delete item", "id", id, "error", err)
		}
	}
	s.store.Remove(id)
	s.pipeline.Forget(id)
	s.logger.Info("item removed", "id", id)
	return nil
}

// RetryArtwork re-runs the artwork chain for id. It reports false when a resolution is already running.
func (s *Shelf) RetryArtwork(ctx context.Context, id string) (bool, error) {
	item, ok := s.store.Get(id)
	if !ok {
		return false, shared.ErrItemNotFound
	}
	return s.pipeline.Resolve(ctx, item), nil
}

// Reorder returns the shelf's drag session.
func (s *Shelf) Reorder() *ReorderSession {
	s.reorderOnce.Do(func() {
		var saver OrderSaver
		if s.repo != nil {
			saver = s.repo
		}
		s.reorder = NewReorderSession(s.store, saver, s.throttle, s.logger)
	})
	return s.reorder
}

// BeginReorder starts a drag of id from origin.
func (s *Shelf) BeginReorder(id string, origin int, pointer, cardOrigin Point) (*ReorderSession, error) {
	session := s.Reorder()
	if err := session.Begin(id, origin, pointer, cardOrigin); err != nil {
		return nil, err
	}
	return session, nil
}

// Move places id at position to in one gesture and commits the result.
func (s *Shelf) Move(ctx context.Context, id string, to int) ([]models.OrderUpdate, error) {
	items := s.store.Items()
	from := indexOf(items, id)
	if from < 0 {
		return nil, shared.ErrItemNotFound
	}

	session, err := s.BeginReorder(id, from, Point{}, Point{})
	if err != nil {
		return nil, err
	}
	session.Hover(to, time.Now())
	return session.End(ctx)
}
