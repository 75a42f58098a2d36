package models

// AlbumResult is an album (release group) hit from catalog search or lookup.
type AlbumResult struct {
	Title       string
	Artist      string
	Year        string
	ReleaseDate string
	ExternalID  string
}

// ArtistResult is an artist hit from catalog search.
type ArtistResult struct {
	Name           string
	Disambiguation string
	Country        string
	ExternalID     string
}

// MixResult is a mix resolved from a URL or returned by mix search.
type MixResult struct {
	Title     string
	Artist    string
	CoverURL  string
	SourceURL string
}

// SearchResults holds catalog search hits; albums are listed before artists.
type SearchResults struct {
	Albums  []AlbumResult
	Artists []ArtistResult
}

// Len returns the total number of hits.
func (r SearchResults) Len() int { return len(r.Albums) + len(r.Artists) }
