// package models defines the data model for the shelf
package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/shelf/internal/shared"
)

// Kind identifies what an [Item] represents. It is fixed at creation.
type Kind string

const (
	KindAlbum  Kind = "album"
	KindArtist Kind = "artist"
	KindMix    Kind = "mix"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAlbum, KindArtist, KindMix:
		return true
	}
	return false
}

// Item is a single entry in the collection.
//
// Display fields depend on Kind: albums use Title/Artist/Year/ReleaseDate, artists use Name/Disambiguation
// and mixes use Title/Artist/SourceURL.
type Item struct {
	ID             string
	Kind           Kind
	Title          string
	Artist         string
	Name           string
	Disambiguation string
	Year           string
	ReleaseDate    string
	SourceURL      string
	ExternalID     string // MusicBrainz id (release group or artist)
	CoverURL       string
	AddedAt        time.Time
	Listened       bool
	ListenAgain    bool
	Order          *int // manual order; nil until the first reorder commit
}

// NewAlbum creates an album item with a fresh id and timestamp.
func NewAlbum(a AlbumResult) Item {
	return Item{
		ID:          shared.GenerateID(),
		Kind:        KindAlbum,
		Title:       a.Title,
		Artist:      a.Artist,
		Year:        a.Year,
		ReleaseDate: a.ReleaseDate,
		ExternalID:  a.ExternalID,
		AddedAt:     time.Now().UTC(),
	}
}

// NewArtist creates an artist item with a fresh id and timestamp.
func NewArtist(a ArtistResult) Item {
	return Item{
		ID:             shared.GenerateID(),
		Kind:           KindArtist,
		Name:           a.Name,
		Disambiguation: a.Disambiguation,
		ExternalID:     a.ExternalID,
		AddedAt:        time.Now().UTC(),
	}
}

// NewMix creates a mix item with a fresh id and timestamp. The cover comes with the mix.
func NewMix(m MixResult) Item {
	return Item{
		ID:        shared.GenerateID(),
		Kind:      KindMix,
		Title:     m.Title,
		Artist:    m.Artist,
		SourceURL: m.SourceURL,
		CoverURL:  m.CoverURL,
		AddedAt:   time.Now().UTC(),
	}
}

// Validate checks the invariants every stored item must satisfy.
func (i Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: missing id", shared.ErrInvalidItem)
	}
	if !i.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", shared.ErrInvalidItem, i.Kind)
	}
	if i.AddedAt.IsZero() {
		return fmt.Errorf("%w: missing added_at", shared.ErrInvalidItem)
	}
	switch i.Kind {
	case KindArtist:
		if strings.TrimSpace(i.Name) == "" {
			return fmt.Errorf("%w: artist without name", shared.ErrInvalidItem)
		}
	default:
		if strings.TrimSpace(i.Title) == "" && strings.TrimSpace(i.Artist) == "" {
			return fmt.Errorf("%w: %s without title or artist", shared.ErrInvalidItem, i.Kind)
		}
	}
	return nil
}

// HasCover reports whether artwork has been resolved.
func (i Item) HasCover() bool { return i.CoverURL != "" }

// HasOrder reports whether the item carries a manual order.
func (i Item) HasOrder() bool { return i.Order != nil }

// DisplayTitle is the primary text for the item.
func (i Item) DisplayTitle() string {
	if i.Kind == KindArtist {
		return i.Name
	}
	return i.Title
}

// Subtitle is the secondary text for the item.
func (i Item) Subtitle() string {
	switch i.Kind {
	case KindArtist:
		return i.Disambiguation
	case KindAlbum:
		if i.Year != "" {
			return fmt.Sprintf("%s • %s", i.Artist, i.Year)
		}
	}
	return i.Artist
}

// Label is the text that runs around the record's center label.
func (i Item) Label() string {
	if i.Kind == KindArtist {
		return fmt.Sprintf("%s — Discography — ", i.Name)
	}
	return fmt.Sprintf("%s — %s — ", i.Artist, i.Title)
}

// OrderUpdate is one (id, manual order) pair produced by a reorder commit.
type OrderUpdate struct {
	ID    string
	Order int
}

// IntPtr returns a pointer to v. Used for [Item.Order].
func IntPtr(v int) *int { return &v }

// ItemRepository defines the row store operations behind the collection.
type ItemRepository interface {
	Create(ctx context.Context, item Item) error                           // Create inserts a new item row
	Get(ctx context.Context, id string) (Item, error)                      // Get retrieves an item by id
	List(ctx context.Context) ([]Item, error)                              // List returns all items ordered by item_order, nulls last
	SetListened(ctx context.Context, id string, listened bool) error       // SetListened updates the listened flag
	SetListenAgain(ctx context.Context, id string, again bool) error       // SetListenAgain updates the listen-again flag
	SetArtwork(ctx context.Context, id, coverURL, externalID string) error // SetArtwork stores a resolved cover and identifier
	SetExternalID(ctx context.Context, id, externalID string) error        // SetExternalID stores a discovered identifier alone
	SaveOrder(ctx context.Context, updates []OrderUpdate) error            // SaveOrder writes a reorder commit as one batch
	Delete(ctx context.Context, id string) error                           // Delete removes an item row
}
