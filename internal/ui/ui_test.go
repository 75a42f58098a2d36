package ui

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/shelf"
	th "github.com/desertthunder/shelf/internal/testing"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, items ...models.Item) (*Model, *th.MockRepository) {
	t.Helper()
	logger := log.New(io.Discard)
	repo := th.NewMockRepository(items...)
	s := shelf.New(repo, shelf.Options{Catalog: &th.MockCatalog{}, Logger: logger})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewModel(context.Background(), Options{
		Shelf:  s,
		Logger: logger,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	return m, repo
}

func ids(items []models.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestDebouncer(t *testing.T) {
	d := newDebouncer(0)
	if d.delay != DefaultSearchDebounce {
		t.Errorf("expected default delay, got %v", d.delay)
	}

	d.trigger()
	d.trigger()
	if d.fires(1) {
		t.Error("superseded tick should not fire")
	}
	if !d.fires(2) {
		t.Error("latest tick should fire")
	}
}

func TestModel(t *testing.T) {
	older := th.Album("1", "Stereolab", "Dots and Loops", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := th.Album("2", "Broadcast", "Haha Sound", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	t.Run("keyboard reorder commits", func(t *testing.T) {
		m, repo := newTestModel(t, older, newer)
		if got := ids(m.items); !slices.Equal(got, []string{"2", "1"}) {
			t.Fatalf("expected [2 1], got %v", got)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(runes("m"))
		if m.shelf.Reorder().State() != shelf.ReorderDragging {
			t.Fatal("expected drag to start")
		}

		m.Update(tea.KeyMsg{Type: tea.KeyUp})
		if m.cursor != 0 {
			t.Errorf("cursor should follow the grabbed item, got %d", m.cursor)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.shelf.Reorder().State() != shelf.ReorderIdle {
			t.Error("enter should drop the item")
		}
		if got := ids(m.shelf.Items()); !slices.Equal(got, []string{"1", "2"}) {
			t.Errorf("expected [1 2], got %v", got)
		}
		if row, _ := repo.Row("1"); row.Order == nil || *row.Order != 0 {
			t.Errorf("order should be persisted, got %+v", row.Order)
		}
	})

	t.Run("toggle listened from the shelf", func(t *testing.T) {
		m, _ := newTestModel(t, older, newer)

		m.Update(runes("x"))
		item, _ := m.shelf.Store().Get("2")
		if !item.Listened {
			t.Error("expected item 2 listened")
		}
		if got := ids(m.items); !slices.Equal(got, []string{"1", "2"}) {
			t.Errorf("listened item should sink, got %v", got)
		}
	})

	t.Run("search view swallows q", func(t *testing.T) {
		m, _ := newTestModel(t)

		m.Update(runes("/"))
		if m.view != SearchView {
			t.Fatal("expected search view")
		}
		m.Update(runes("q"))
		if m.view != SearchView || m.input.Value() != "q" {
			t.Errorf("expected q in input, got %q", m.input.Value())
		}
	})

	t.Run("stale debounce ticks are dropped", func(t *testing.T) {
		m, _ := newTestModel(t)
		m.debounce.trigger()
		m.debounce.trigger()

		if _, cmd := m.Update(searchDebouncedMsg(1)); cmd != nil {
			t.Error("stale tick should not search")
		}
		if _, cmd := m.Update(searchDebouncedMsg(2)); cmd == nil {
			t.Error("latest tick should search")
		}
	})

	t.Run("enter without results imports the line", func(t *testing.T) {
		m, repo := newTestModel(t)

		m.Update(runes("/"))
		m.input.SetValue("Broadcast - Tender Buttons")
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m.shelf.Pipeline().Wait()

		if m.view != ShelfView || len(m.shelf.Items()) != 1 {
			t.Errorf("expected one item and the shelf view, got %d items in view %d", len(m.shelf.Items()), m.view)
		}
		if repo.CallCount("Create") != 1 {
			t.Error("expected the item to be persisted")
		}
	})

	t.Run("rack shuffle without candidates", func(t *testing.T) {
		m, _ := newTestModel(t, older, newer)

		m.Update(runes("r"))
		if m.view != RackView {
			t.Fatal("expected rack view")
		}
		m.Update(runes("s"))
		if !errors.Is(m.err, shared.ErrNoCandidates) {
			t.Errorf("expected ErrNoCandidates, got %v", m.err)
		}
	})

	t.Run("rack shuffle runs to idle", func(t *testing.T) {
		covered := older
		covered.CoverURL = "https://covers/1.jpg"
		m, _ := newTestModel(t, covered)

		m.Update(runes("r"))
		_, cmd := m.Update(runes("s"))
		if cmd == nil || !m.rack.Shuffling() {
			t.Fatal("expected shuffle to start ticking")
		}

		m.Update(rackFrameMsg(time.Now().Add(time.Hour)))
		if m.rack.Shuffling() {
			t.Error("expected the rack to settle")
		}
		if item, ok := m.rack.Current(); !ok || item.ID != "1" {
			t.Errorf("expected item 1 facing, got %+v", item)
		}
	})
}
