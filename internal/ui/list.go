package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/shelf/internal/models"
)

var (
	_ list.Item = albumResultItem{}
	_ list.Item = artistResultItem{}
	_ list.Item = mixResultItem{}
)

// albumResultItem wraps [models.AlbumResult] to implement [list.Item].
type albumResultItem struct {
	album models.AlbumResult
}

func (i albumResultItem) FilterValue() string { return i.album.Title }
func (i albumResultItem) Title() string       { return i.album.Title }
func (i albumResultItem) Description() string {
	desc := i.album.Artist
	if i.album.Year != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.album.Year)
	}
	return "album • " + desc
}

// artistResultItem wraps [models.ArtistResult] to implement [list.Item].
type artistResultItem struct {
	artist models.ArtistResult
}

func (i artistResultItem) FilterValue() string { return i.artist.Name }
func (i artistResultItem) Title() string       { return i.artist.Name }
func (i artistResultItem) Description() string {
	desc := "artist"
	if i.artist.Disambiguation != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.artist.Disambiguation)
	}
	if i.artist.Country != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.artist.Country)
	}
	return desc
}

// mixResultItem wraps [models.MixResult] to implement [list.Item].
type mixResultItem struct {
	mix models.MixResult
}

func (i mixResultItem) FilterValue() string { return i.mix.Title }
func (i mixResultItem) Title() string       { return i.mix.Title }
func (i mixResultItem) Description() string { return "mix • " + i.mix.Artist }

// resultItems lists albums before artists, then mixes.
func resultItems(results models.SearchResults, mixes []models.MixResult) []list.Item {
	items := make([]list.Item, 0, results.Len()+len(mixes))
	for _, album := range results.Albums {
		items = append(items, albumResultItem{album: album})
	}
	for _, artist := range results.Artists {
		items = append(items, artistResultItem{artist: artist})
	}
	for _, mix := range mixes {
		items = append(items, mixResultItem{mix: mix})
	}
	return items
}
