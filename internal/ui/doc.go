// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views over one [shelf.Shelf]:
//  1. [ShelfView] : the collection in display order, with listened toggles and keyboard reordering
//  2. [SearchView] : debounced catalog search and single-line "Artist - Title" entry
//  3. [RackView] : the carousel, stepped by hand or shuffled to a random unlistened pick
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Store changes made off the event loop (artwork arriving, imports) reach the model through a coalescing signal channel.
// The rack runs on frame ticks that feed the controller's virtual clock.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
