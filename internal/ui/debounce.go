package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultSearchDebounce is the quiet period after the last keystroke before a search runs.
const DefaultSearchDebounce = 300 * time.Millisecond

// debouncer issues sequence-numbered ticks; only the tick from the latest trigger fires.
type debouncer struct {
	delay time.Duration
	seq   int
}

func newDebouncer(delay time.Duration) *debouncer {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &debouncer{delay: delay}
}

func (d *debouncer) trigger() tea.Cmd {
	d.seq++
	seq := d.seq
	return tea.Tick(d.delay, func(time.Time) tea.Msg { return searchDebouncedMsg(seq) })
}

func (d *debouncer) fires(seq int) bool {
	return seq == d.seq
}
