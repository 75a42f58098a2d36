package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/shelf/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgItemsChanged MsgKind = iota
	MsgSearchDebounced
	MsgSearchResults
	MsgRackFrame
	MsgStatus
)

// itemsChangedMsg is the constructor for [MsgItemsChanged]
func itemsChangedMsg() Msg {
	return Msg{kind: MsgItemsChanged}
}

// searchDebouncedMsg is the constructor for [MsgSearchDebounced]
func searchDebouncedMsg(seq int) Msg {
	return Msg{kind: MsgSearchDebounced, data: seq}
}

// searchResultsMsg is the constructor for [MsgSearchResults]
func searchResultsMsg(query string, results models.SearchResults, mixes []models.MixResult, err error) Msg {
	return Msg{
		kind: MsgSearchResults,
		data: searchResults{query: query, results: results, mixes: mixes, err: err},
	}
}

type searchResults struct {
	query   string
	results models.SearchResults
	mixes   []models.MixResult
	err     error
}

// rackFrameMsg is the constructor for [MsgRackFrame]
func rackFrameMsg(now time.Time) Msg {
	return Msg{kind: MsgRackFrame, data: now}
}

// statusMsg is the constructor for [MsgStatus]
func statusMsg(text string, err error) Msg {
	return Msg{
		kind: MsgStatus,
		data: struct {
			text string
			err  error
		}{text, err},
	}
}
