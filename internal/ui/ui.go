package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/shelf/internal/artwork"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/rack"
	"github.com/desertthunder/shelf/internal/shelf"
)

// rackFrame is the redraw interval while the rack is animating.
const rackFrame = 16 * time.Millisecond

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ShelfView ViewState = iota
	SearchView
	RackView
)

// Options configures a [Model].
type Options struct {
	Shelf    *shelf.Shelf
	Rack     *rack.Controller
	Debounce time.Duration
	Logger   *log.Logger
	Now      func() time.Time
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	shelf    *shelf.Shelf
	rack     *rack.Controller
	items    []models.Item
	cursor   int
	changed  chan struct{}
	input    textinput.Model
	results  list.Model
	query    string
	debounce *debouncer
	status   string
	err      error
	width    int
	height   int
	help     help.Model
	keys     keyMap
	logger   *log.Logger
	now      func() time.Time
}

// NewModel creates a TUI model over opts.Shelf. Store changes are observed from here on.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	controller := opts.Rack
	if controller == nil {
		controller = rack.New(rack.Options{Logger: logger})
	}

	input := textinput.New()
	input.Placeholder = "Search, or Artist - Title"
	input.CharLimit = 200

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.Title = "Results"
	results.SetShowHelp(false)
	results.SetFilteringEnabled(false)

	m := &Model{
		ctx:      ctx,
		view:     ShelfView,
		shelf:    opts.Shelf,
		rack:     controller,
		changed:  make(chan struct{}, 1),
		input:    input,
		results:  results,
		debounce: newDebouncer(opts.Debounce),
		help:     help.New(),
		keys:     newKeyMap(),
		logger:   logger.With("component", "ui"),
		now:      now,
	}

	m.shelf.Store().Subscribe(func([]models.Item) {
		select {
		case m.changed <- struct{}{}:
		default:
		}
	})
	m.refresh()
	return m
}

// Init starts listening for store changes.
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && (m.view != SearchView || msg.String() == "ctrl+c") {
			return m, tea.Quit
		}
		switch m.view {
		case ShelfView:
			return m.handleShelfKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case RackView:
			return m.handleRackKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgItemsChanged:
		m.refresh()
		return m, m.waitForChange()

	case MsgSearchDebounced:
		if !m.debounce.fires(msg.data.(int)) {
			return m, nil
		}
		return m, m.runSearch(m.input.Value())

	case MsgSearchResults:
		res := msg.data.(searchResults)
		if res.query != m.input.Value() {
			return m, nil
		}
		if res.err != nil {
			m.logger.Warn("search failed", "query", res.query, "error", res.err)
		}
		m.query = res.query
		cmd := m.results.SetItems(resultItems(res.results, res.mixes))
		return m, cmd

	case MsgRackFrame:
		m.rack.Tick(msg.data.(time.Time))
		if m.rack.Shuffling() {
			return m, m.rackTick()
		}
		return m, nil

	case MsgStatus:
		data := msg.data.(struct {
			text string
			err  error
		})
		m.status, m.err = data.text, data.err
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case ShelfView:
		body = m.renderShelf()
	case SearchView:
		body = m.renderSearch()
	case RackView:
		body = m.renderRack()
	}

	switch {
	case m.err != nil:
		body += "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.status != "":
		body += "\n" + styles.ok.Render(m.status)
	}
	return body
}

// refresh re-reads the display order and keeps the cursor on a valid row.
func (m *Model) refresh() {
	m.items = m.shelf.Items()
	m.rack.SetItems(m.items)

	if session := m.shelf.Reorder(); session.State() == shelf.ReorderDragging {
		if id, _ := session.Grabbed(); id != "" {
			for i, item := range m.items {
				if item.ID == id {
					m.cursor = i
				}
			}
		}
	}
	m.cursor = max(0, min(m.cursor, len(m.items)-1))
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changed:
			return itemsChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) selected() (models.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return models.Item{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) handleShelfKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := m.shelf.Reorder()
	if session.State() == shelf.ReorderDragging {
		return m.handleReorderKeys(msg, session)
	}

	switch {
	case key.Matches(msg, m.keys.up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, m.keys.down):
		m.cursor = min(len(m.items)-1, m.cursor+1)
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.status, m.err = "", nil
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.rack):
		m.view = RackView
		m.rack.SetItems(m.items)
	case key.Matches(msg, m.keys.listened):
		if item, ok := m.selected(); ok {
			_, err := m.shelf.ToggleListened(m.ctx, item.ID)
			m.err = err
		}
	case key.Matches(msg, m.keys.again):
		if item, ok := m.selected(); ok {
			_, err := m.shelf.ToggleListenAgain(m.ctx, item.ID)
			m.err = err
		}
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.selected(); ok {
			m.err = m.shelf.Remove(m.ctx, item.ID)
			m.status = fmt.Sprintf("Removed %s", item.DisplayTitle())
		}
	case key.Matches(msg, m.keys.retry):
		if item, ok := m.selected(); ok {
			started, err := m.shelf.RetryArtwork(m.ctx, item.ID)
			m.err = err
			if started {
				m.status = fmt.Sprintf("Looking for a cover for %s", item.DisplayTitle())
			}
		}
	case key.Matches(msg, m.keys.move):
		if item, ok := m.selected(); ok {
			if _, err := m.shelf.BeginReorder(item.ID, m.cursor, shelf.Point{}, shelf.Point{}); err != nil {
				m.err = err
			}
		}
	}
	m.refresh()
	return m, nil
}

// handleReorderKeys moves the grabbed row with up/down and drops it on enter or esc.
func (m *Model) handleReorderKeys(msg tea.KeyMsg, session *shelf.ReorderSession) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.up):
		session.Hover(m.cursor-1, m.now())
	case key.Matches(msg, m.keys.down):
		session.Hover(m.cursor+1, m.now())
	case key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.move):
		updates, err := session.End(m.ctx)
		m.err = err
		if err == nil {
			m.status = fmt.Sprintf("Order saved (%d items)", len(updates))
		}
	}
	m.refresh()
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = ShelfView
		m.input.Blur()
		return m, nil
	case "up", "down":
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	case "enter":
		return m, m.addSelection()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	if !shelf.SearchText(m.input.Value()) {
		m.query = ""
		m.results.SetItems(nil)
		return m, cmd
	}
	return m, tea.Batch(cmd, m.debounce.trigger())
}

// addSelection adds the highlighted result. Without results the input is taken as a line of manual entry.
func (m *Model) addSelection() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())

	var added models.Item
	switch selected := m.results.SelectedItem().(type) {
	case albumResultItem:
		added = m.shelf.AddAlbum(m.ctx, selected.album)
	case artistResultItem:
		added = m.shelf.AddArtist(m.ctx, selected.artist)
	case mixResultItem:
		added = m.shelf.AddMix(m.ctx, selected.mix)
	default:
		if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
			return m.addMixURL(text)
		}
		item, ok := m.shelf.ImportLine(m.ctx, text)
		if !ok {
			return nil
		}
		added = item
	}

	m.input.SetValue("")
	m.results.SetItems(nil)
	m.query = ""
	m.view = ShelfView
	m.input.Blur()
	m.status, m.err = fmt.Sprintf("Added %s", added.DisplayTitle()), nil
	m.refresh()
	return nil
}

func (m *Model) addMixURL(url string) tea.Cmd {
	m.input.SetValue("")
	m.view = ShelfView
	m.input.Blur()
	return func() tea.Msg {
		item, err := m.shelf.AddMixByURL(m.ctx, url)
		if err != nil {
			return statusMsg("", err)
		}
		return statusMsg(fmt.Sprintf("Added %s", item.DisplayTitle()), nil)
	}
}

func (m *Model) runSearch(text string) tea.Cmd {
	return func() tea.Msg {
		results, err := m.shelf.Search(m.ctx, text)
		mixes, mixErr := m.shelf.SearchMixes(m.ctx, text)
		if err == nil {
			err = mixErr
		}
		return searchResultsMsg(text, results, mixes, err)
	}
}

func (m *Model) handleRackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.rack):
		m.view = ShelfView
	case key.Matches(msg, m.keys.left), key.Matches(msg, m.keys.up):
		m.rack.Navigate(-1, m.now())
	case key.Matches(msg, m.keys.right), key.Matches(msg, m.keys.down):
		m.rack.Navigate(1, m.now())
	case key.Matches(msg, m.keys.shuffle):
		if _, err := m.rack.Shuffle(m.now()); err != nil {
			m.status, m.err = "", err
			return m, nil
		}
		m.err = nil
		return m, m.rackTick()
	case key.Matches(msg, m.keys.listened):
		if item, ok := m.rack.Current(); ok && !m.rack.Shuffling() {
			_, m.err = m.shelf.ToggleListened(m.ctx, item.ID)
			m.refresh()
		}
	}
	return m, nil
}

func (m *Model) rackTick() tea.Cmd {
	return tea.Tick(rackFrame, func(t time.Time) tea.Msg { return rackFrameMsg(t) })
}

func (m *Model) renderShelf() string {
	title := styles.title.Render(fmt.Sprintf("Shelf (%d)", len(m.items)))
	if len(m.items) == 0 {
		return fmt.Sprintf("%s\n%s\n\n%s", title, styles.muted.Render("Nothing here yet. Press / to add something."), m.shelfHelp())
	}

	dragging := m.shelf.Reorder().State() == shelf.ReorderDragging
	pipeline := m.shelf.Pipeline()

	var b strings.Builder
	for i, item := range m.items {
		check := "[ ]"
		if item.Listened {
			check = "[x]"
		}
		if item.ListenAgain {
			check += "↺"
		}

		cover := " "
		switch {
		case item.HasCover():
			cover = "■"
		case pipeline.Status(item.ID) == artwork.StatusFetching:
			cover = "…"
		case pipeline.Status(item.ID) == artwork.StatusUnresolved:
			cover = "□"
		}

		row := fmt.Sprintf("%s %s %s  %s", check, cover, item.DisplayTitle(), styles.muted.Render(item.Subtitle()))
		switch {
		case i == m.cursor && dragging:
			row = styles.warn.Render("≡ " + row)
		case i == m.cursor:
			row = styles.selected.Render("> " + row)
		default:
			row = "  " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), m.shelfHelp())
}

func (m *Model) shelfHelp() string {
	if m.shelf.Reorder().State() == shelf.ReorderDragging {
		return m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter})
	}
	return m.help.ShortHelpView([]key.Binding{
		m.keys.listened, m.keys.again, m.keys.move, m.keys.remove, m.keys.retry,
		m.keys.search, m.keys.rack, m.keys.quit,
	})
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Add to shelf")

	var results string
	switch {
	case len(m.results.Items()) > 0:
		results = m.results.View()
	case m.query != "":
		results = styles.muted.Render("No matches. Press enter to add it as typed.")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.input.View(), results, helpView)
}

func (m *Model) renderRack() string {
	title := styles.title.Render("Rack")
	items := m.rack.Items()
	if len(items) == 0 {
		return fmt.Sprintf("%s\n%s", title, styles.muted.Render("No covers to show yet."))
	}

	n := len(items)
	position := max(m.rack.Position(), 0)
	cards := make([]string, 0, 5)
	for offset := -2; offset <= 2; offset++ {
		if n < 5 && (position%n+offset < 0 || position%n+offset >= n) {
			continue
		}
		item := items[((position+offset)%n+n)%n]
		label := fmt.Sprintf("%s\n%s", item.DisplayTitle(), styles.muted.Render(item.Subtitle()))
		if offset == 0 {
			cards = append(cards, styles.facing.Render(label))
		} else {
			cards = append(cards, styles.card.Render(label))
		}
	}

	status := fmt.Sprintf("%d / %d", position%n+1, n)
	if m.rack.Shuffling() {
		status = styles.warn.Render("spinning...")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.left, m.keys.right, m.keys.shuffle, m.keys.listened, m.keys.back})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, lipgloss.JoinHorizontal(lipgloss.Center, cards...), status, helpView)
}
