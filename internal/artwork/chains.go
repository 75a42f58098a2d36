package artwork

import (
	"context"
	"fmt"

	"github.com/desertthunder/shelf/internal/shared"
)

// IdentifierFunc resolves a catalog identifier for a query.
type IdentifierFunc func(ctx context.Context, q Query) (string, error)

// Chains holds the ordered providers for each item kind plus the identifier step run before them.
type Chains struct {
	AlbumIdentifier  IdentifierFunc
	Album            []Provider
	ArtistIdentifier IdentifierFunc
	Artist           []Provider
}

// CoverArchive builds a front cover URL from a release group id.
type CoverArchive interface {
	FrontURL(releaseGroupID string) string
}

// AlbumSearcher finds an album cover by artist and title.
type AlbumSearcher interface {
	AlbumCover(ctx context.Context, artist, title string) (string, error)
}

// PhotoSearcher finds an artist photo by name.
type PhotoSearcher interface {
	ArtistPhoto(ctx context.Context, name string) (string, error)
}

// WikidataLinker maps an artist id to its Wikidata entity.
type WikidataLinker interface {
	ArtistWikidataID(ctx context.Context, mbid string) (string, error)
}

// ImageFiles names the image file of a Wikidata entity.
type ImageFiles interface {
	ImageFileName(ctx context.Context, qid string) (string, error)
}

// ThumbBuilder turns a media file name into a thumbnail URL.
type ThumbBuilder interface {
	ThumbURL(fileName string) string
}

// CoverArchiveProvider looks up the front cover of the query's release group.
func CoverArchiveProvider(archive CoverArchive) Provider {
	return Provider{
		Name: "coverartarchive",
		Find: func(_ context.Context, q Query) (string, error) {
			if q.ExternalID == "" {
				return "", fmt.Errorf("%w: no release group id", shared.ErrNoMatch)
			}
			return archive.FrontURL(q.ExternalID), nil
		},
	}
}

// AlbumSearchProvider searches an album catalog by artist and title.
func AlbumSearchProvider(name string, s AlbumSearcher) Provider {
	return Provider{
		Name: name,
		Find: func(ctx context.Context, q Query) (string, error) {
			return s.AlbumCover(ctx, q.Artist, q.Title)
		},
	}
}

// PressPhotoProvider looks up an artist photo by name.
func PressPhotoProvider(name string, s PhotoSearcher) Provider {
	return Provider{
		Name: name,
		Find: func(ctx context.Context, q Query) (string, error) {
			return s.ArtistPhoto(ctx, q.Name)
		},
	}
}

// CommonsProvider follows artist id → Wikidata entity → image file → Commons thumbnail.
func CommonsProvider(linker WikidataLinker, files ImageFiles, thumbs ThumbBuilder) Provider {
	return Provider{
		Name: "commons",
		Find: func(ctx context.Context, q Query) (string, error) {
			if q.ExternalID == "" {
				return "", fmt.Errorf("%w: no artist id", shared.ErrNoMatch)
			}
			qid, err := linker.ArtistWikidataID(ctx, q.ExternalID)
			if err != nil {
				return "", err
			}
			fileName, err := files.ImageFileName(ctx, qid)
			if err != nil {
				return "", err
			}
			return thumbs.ThumbURL(fileName), nil
		},
	}
}

// ReleaseIdentifier resolves a release group id from artist and title.
type ReleaseIdentifier interface {
	ReleaseIdentifier(ctx context.Context, artist, title string) (string, error)
}

// ArtistIdentifier resolves an artist id from a name.
type ArtistIdentifier interface {
	SearchArtistID(ctx context.Context, name string) (string, error)
}

// Sources are the collaborators behind [DefaultChains]. Nil entries drop their step.
type Sources struct {
	Releases   ReleaseIdentifier
	Artists    ArtistIdentifier
	Covers     CoverArchive
	Commercial AlbumSearcher
	Community  AlbumSearcher
	Photos     PhotoSearcher
	Linker     WikidataLinker
	Files      ImageFiles
	Thumbs     ThumbBuilder
}

// DefaultChains wires the album chain (cover archive, commercial catalog, community catalog) and the artist chain
// (press photos, then the Wikidata image on Commons).
func DefaultChains(s Sources) Chains {
	var c Chains

	if s.Releases != nil {
		c.AlbumIdentifier = func(ctx context.Context, q Query) (string, error) {
			return s.Releases.ReleaseIdentifier(ctx, q.Artist, q.Title)
		}
	}
	if s.Covers != nil {
		c.Album = append(c.Album, CoverArchiveProvider(s.Covers))
	}
	if s.Commercial != nil {
		c.Album = append(c.Album, AlbumSearchProvider("spotify", s.Commercial))
	}
	if s.Community != nil {
		c.Album = append(c.Album, AlbumSearchProvider("discogs", s.Community))
	}

	if s.Artists != nil {
		c.ArtistIdentifier = func(ctx context.Context, q Query) (string, error) {
			return s.Artists.SearchArtistID(ctx, q.Name)
		}
	}
	if s.Photos != nil {
		c.Artist = append(c.Artist, PressPhotoProvider("audiodb", s.Photos))
	}
	if s.Linker != nil && s.Files != nil && s.Thumbs != nil {
		c.Artist = append(c.Artist, CommonsProvider(s.Linker, s.Files, s.Thumbs))
	}
	return c
}
