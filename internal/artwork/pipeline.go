// Package artwork resolves cover images for shelf items through ordered provider chains.
//
// Each item has at most one resolution in flight. Results are written to the row store first and then to the
// in-memory collection, and only while the item still exists there.
package artwork

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/shelf/internal/models"
)

// Status is the resolution state of one item.
type Status int

const (
	StatusIdle Status = iota
	StatusFetching
	StatusResolved
	StatusUnresolved
)

func (s Status) String() string {
	switch s {
	case StatusFetching:
		return "fetching"
	case StatusResolved:
		return "resolved"
	case StatusUnresolved:
		return "unresolved"
	default:
		return "idle"
	}
}

// Collection is the in-memory item view the pipeline writes into.
type Collection interface {
	Get(id string) (models.Item, bool)
	Update(id string, fn func(*models.Item)) bool
}

// Persister writes resolution results to the row store.
type Persister interface {
	SetArtwork(ctx context.Context, id, coverURL, externalID string) error
	SetExternalID(ctx context.Context, id, externalID string) error
}

// Pipeline runs provider chains in the background, one per item at a time.
type Pipeline struct {
	mu     sync.Mutex
	status map[string]Status
	wg     sync.WaitGroup

	chains  Chains
	check   Checker
	items   Collection
	persist Persister
	logger  *log.Logger
}

// NewPipeline creates a Pipeline. persist may be nil for a memory-only shelf.
func NewPipeline(items Collection, persist Persister, chains Chains, check Checker, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		status:  make(map[string]Status),
		chains:  chains,
		check:   check,
		items:   items,
		persist: persist,
		logger:  logger.With("component", "artwork"),
	}
}

// Resolve dispatches on the item's kind. Mixes carry their own cover and are skipped.
func (p *Pipeline) Resolve(ctx context.Context, item models.Item) bool {
	switch item.Kind {
	case models.KindAlbum:
		return p.ResolveAlbumArt(ctx, item.Artist, item.Title, item.ID)
	case models.KindArtist:
		return p.ResolveArtistImage(ctx, item.Name, item.ExternalID, item.ID)
	}
	return false
}

// ResolveAlbumArt starts the album chain for id and returns at once. It is a no-op, returning false, while a
// resolution for id is already running.
func (p *Pipeline) ResolveAlbumArt(ctx context.Context, artist, title, id string) bool {
	var known string
	if item, ok := p.items.Get(id); ok {
		known = item.ExternalID
	}
	q := Query{Artist: artist, Title: title, ExternalID: known}
	return p.start(ctx, id, q, p.chains.AlbumIdentifier, p.chains.Album)
}

// ResolveArtistImage starts the artist chain for id and returns at once. It is a no-op, returning false, while a
// resolution for id is already running.
func (p *Pipeline) ResolveArtistImage(ctx context.Context, name, externalID, id string) bool {
	q := Query{Name: name, Artist: name, ExternalID: externalID}
	return p.start(ctx, id, q, p.chains.ArtistIdentifier, p.chains.Artist)
}

// Status returns the resolution state of id.
func (p *Pipeline) Status(id string) Status {
	p.mu.Lock()
	status, ok := p.status[id]
	p.mu.Unlock()
	if ok {
		return status
	}

	if item, found := p.items.Get(id); found && item.HasCover() {
		return StatusResolved
	}
	return StatusIdle
}

// Forget drops the bookkeeping for id. A resolution still running for id will discard its result.
func (p *Pipeline) Forget(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.status, id)
}

// Wait blocks until every started resolution has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) start(ctx context.Context, id string, q Query, identify IdentifierFunc, providers []Provider) bool {
	p.mu.Lock()
	if p.status[id] == StatusFetching {
		p.mu.Unlock()
		p.logger.Debug("resolution already in flight", "id", id)
		return false
	}
	p.status[id] = StatusFetching
	p.mu.Unlock()

	// in-flight lookups outlive the caller
	ctx = context.WithoutCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.finish(id, p.run(ctx, id, q, identify, providers))
	}()
	return true
}

func (p *Pipeline) run(ctx context.Context, id string, q Query, identify IdentifierFunc, providers []Provider) Status {
	known := q.ExternalID
	if q.ExternalID == "" && identify != nil {
		discovered, err := identify(ctx, q)
		if err != nil {
			p.logger.Debug("identifier lookup failed", "id", id, "error", err)
		} else {
			q.ExternalID = discovered
		}
	}

	var newID string
	if q.ExternalID != known {
		newID = q.ExternalID
	}

	cover, provider, err := FirstReachable(ctx, providers, q, p.check, p.logger)
	if err != nil {
		if !isNoResult(err) {
			p.logger.Warn("resolution aborted", "id", id, "error", err)
		}
		if newID != "" {
			p.storeIdentifier(ctx, id, newID)
		}
		p.logger.Info("no artwork found", "id", id)
		return StatusUnresolved
	}

	if !p.storeCover(ctx, id, cover, newID) {
		return StatusUnresolved
	}
	p.logger.Info("artwork resolved", "id", id, "provider", provider)
	return StatusResolved
}

func (p *Pipeline) storeCover(ctx context.Context, id, cover, externalID string) bool {
	if _, ok := p.items.Get(id); !ok {
		p.logger.Debug("item removed during resolution", "id", id)
		return false
	}

	if p.persist != nil {
		if err := p.persist.SetArtwork(ctx, id, cover, externalID); err != nil {
			p.logger.Error("failed to persist artwork", "id", id, "error", err)
		}
	}

	return p.items.Update(id, func(item *models.Item) {
		item.CoverURL = cover
		if externalID != "" {
			item.ExternalID = externalID
		}
	})
}

func (p *Pipeline) storeIdentifier(ctx context.Context, id, externalID string) {
	if _, ok := p.items.Get(id); !ok {
		return
	}

	if p.persist != nil {
		if err := p.persist.SetExternalID(ctx, id, externalID); err != nil {
			p.logger.Error("failed to persist identifier", "id", id, "error", err)
		}
	}
	p.items.Update(id, func(item *models.Item) { item.ExternalID = externalID })
}

func (p *Pipeline) finish(id string, status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.status[id]; !ok {
		return
	}
	// resolved items are recognised by their cover, so only failures stay tracked
	if status == StatusResolved {
		delete(p.status, id)
		return
	}
	p.status[id] = status
}
