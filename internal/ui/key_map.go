package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	left     key.Binding
	right    key.Binding
	enter    key.Binding
	back     key.Binding
	listened key.Binding
	again    key.Binding
	move     key.Binding
	remove   key.Binding
	retry    key.Binding
	search   key.Binding
	rack     key.Binding
	shuffle  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		listened: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "listened")),
		again:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "listen again")),
		move:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		remove:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		retry:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "retry cover")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "add")),
		rack:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rack")),
		shuffle:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.listened, k.again, k.move, k.remove, k.retry},
		{k.search, k.rack, k.shuffle, k.quit},
	}
}
