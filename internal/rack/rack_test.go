package rack

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

var epoch = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

func covered(id string, age int, listened, again bool) models.Item {
	return models.Item{
		ID:          id,
		Kind:        models.KindAlbum,
		Title:       "Title " + id,
		Artist:      "Artist " + id,
		CoverURL:    "https://covers/" + id + ".jpg",
		AddedAt:     epoch.Add(-time.Duration(age) * time.Hour),
		Listened:    listened,
		ListenAgain: again,
	}
}

func newController(seed uint64) *Controller {
	return New(Options{
		GestureInterval: 100 * time.Millisecond,
		SpinDuration:    time.Second,
		SnapDuration:    10 * time.Millisecond,
		SettleDuration:  300 * time.Millisecond,
		Rand:            rand.New(rand.NewPCG(seed, seed+1)),
		Logger:          log.New(io.Discard),
	})
}

func TestRackItems(t *testing.T) {
	items := []models.Item{
		covered("fresh", 1, false, false),
		covered("heard", 2, true, false),
		covered("again", 3, true, true),
		{ID: "bare", Kind: models.KindArtist, Name: "No Cover", AddedAt: epoch},
	}

	got := RackItems(items)
	if len(got) != 2 || got[0].ID != "fresh" || got[1].ID != "again" {
		t.Errorf("unexpected rack view: %+v", got)
	}
}

func TestController(t *testing.T) {
	t.Run("SetItems snaps into range without animation", func(t *testing.T) {
		c := newController(1)
		if c.Position() != Unsettled {
			t.Fatalf("expected unsettled start, got %d", c.Position())
		}

		c.SetItems([]models.Item{covered("a", 1, false, false), covered("b", 2, false, false)})
		if c.Position() != 0 || c.Animate() {
			t.Errorf("expected snap to 0, got position %d animate %v", c.Position(), c.Animate())
		}

		c.Navigate(1, epoch)
		c.SetItems([]models.Item{covered("a", 1, false, false)})
		if c.Position() != 0 || c.Animate() {
			t.Errorf("expected clamp to 0, got position %d animate %v", c.Position(), c.Animate())
		}

		c.SetItems(nil)
		if c.Position() != Unsettled {
			t.Errorf("empty rack should be unsettled, got %d", c.Position())
		}
		if _, ok := c.Current(); ok {
			t.Error("empty rack has no current item")
		}
	})

	t.Run("Navigate clamps and throttles", func(t *testing.T) {
		c := newController(1)
		c.SetItems([]models.Item{
			covered("a", 1, false, false),
			covered("b", 2, false, false),
			covered("c", 3, false, false),
		})

		if c.Navigate(-1, epoch) {
			t.Error("cannot step below zero")
		}
		if !c.Navigate(5, epoch) || c.Position() != 1 {
			t.Errorf("large delta should still step once, got %d", c.Position())
		}
		if c.Navigate(1, epoch.Add(50*time.Millisecond)) {
			t.Error("second step inside the gesture interval should be ignored")
		}
		if !c.Navigate(1, epoch.Add(150*time.Millisecond)) || c.Position() != 2 {
			t.Errorf("expected step to 2, got %d", c.Position())
		}
		if c.Navigate(1, epoch.Add(time.Second)) {
			t.Error("cannot step past the end")
		}
		if !c.Animate() {
			t.Error("manual steps animate")
		}
	})

	t.Run("Shuffle requires candidates", func(t *testing.T) {
		c := newController(1)
		if _, err := c.Shuffle(epoch); !errors.Is(err, shared.ErrNoCandidates) {
			t.Errorf("expected ErrNoCandidates on empty rack, got %v", err)
		}

		c.SetItems([]models.Item{covered("again", 1, true, true)})
		if _, err := c.Shuffle(epoch); !errors.Is(err, shared.ErrNoCandidates) {
			t.Errorf("listen-again items are not shuffle candidates, got %v", err)
		}
	})

	t.Run("Shuffle sequence", func(t *testing.T) {
		c := newController(7)
		c.SetItems([]models.Item{
			covered("a", 1, false, false),
			covered("b", 2, true, true),
			covered("c", 3, false, false),
			covered("d", 4, false, false),
		})
		n := len(c.Items())

		target, err := c.Shuffle(epoch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !c.Shuffling() || c.Phase() != PhaseOvershoot {
			t.Fatalf("expected overshoot, got %v", c.Phase())
		}
		if pos := c.Position(); pos != target+2*n && pos != target+3*n {
			t.Errorf("expected two or three revolutions past %d, got %d", target, pos)
		}

		if _, err := c.Shuffle(epoch); !errors.Is(err, shared.ErrShuffleBusy) {
			t.Errorf("expected ErrShuffleBusy, got %v", err)
		}
		if c.Navigate(1, epoch.Add(time.Hour)) {
			t.Error("navigation is ignored while shuffling")
		}

		if c.Tick(epoch.Add(500 * time.Millisecond)) {
			t.Error("spin has not finished yet")
		}

		c.Tick(epoch.Add(time.Second))
		if c.Phase() != PhaseSnap || c.Position() != (target+1)%n || c.Animate() {
			t.Errorf("expected unanimated snap to %d, got %v at %d", (target+1)%n, c.Phase(), c.Position())
		}

		c.Tick(epoch.Add(time.Second + 10*time.Millisecond))
		if c.Phase() != PhaseSettle || c.Position() != target || !c.Animate() {
			t.Errorf("expected animated settle to %d, got %v at %d", target, c.Phase(), c.Position())
		}

		c.Tick(epoch.Add(2 * time.Second))
		if c.Shuffling() || c.Position() != target {
			t.Errorf("expected Idle(%d), got %v at %d", target, c.Phase(), c.Position())
		}
	})

	t.Run("Tick completes several phases at once", func(t *testing.T) {
		c := newController(3)
		c.SetItems([]models.Item{covered("a", 1, false, false), covered("b", 2, false, false)})

		target, _ := c.Shuffle(epoch)
		if !c.Tick(epoch.Add(time.Minute)) {
			t.Fatal("expected progress")
		}
		if c.Phase() != PhaseIdle || c.Position() != target {
			t.Errorf("expected Idle(%d), got %v at %d", target, c.Phase(), c.Position())
		}
	})

	t.Run("SetItems during a shuffle", func(t *testing.T) {
		c := newController(3)
		c.SetItems([]models.Item{covered("a", 1, false, false)})
		c.Shuffle(epoch)

		c.SetItems(nil)
		if c.Shuffling() {
			t.Error("shuffle should stop when its target leaves the rack")
		}
	})

	t.Run("SetItems during a shuffle follows the picked item", func(t *testing.T) {
		old := covered("old", 5, false, false)
		c := newController(4)
		c.SetItems([]models.Item{old})
		if _, err := c.Shuffle(epoch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// a newer item gains a cover mid-spin and sorts ahead of the pick
		c.SetItems([]models.Item{old, covered("new", 1, false, false)})
		if !c.Shuffling() {
			t.Fatal("shuffle should keep running while its pick is on the rack")
		}
		if got := c.Position() % 2; got != 1 {
			t.Errorf("overshoot should face the pick's new index 1, got %d", got)
		}

		c.Tick(epoch.Add(time.Second))
		if c.Phase() != PhaseSnap || c.Position() != 0 {
			t.Errorf("snap frame should sit one past the pick, got phase %v position %d", c.Phase(), c.Position())
		}

		c.SetItems([]models.Item{old, covered("new", 1, false, false), covered("newest", 0, false, false)})
		if c.Position() != 0 {
			t.Errorf("snap frame should follow the pick to index 2, got position %d", c.Position())
		}

		c.Tick(epoch.Add(2 * time.Second))
		if c.Shuffling() {
			t.Fatal("shuffle should have settled")
		}
		if item, ok := c.Current(); !ok || item.ID != "old" {
			t.Errorf("expected to settle on the picked item, got %q", item.ID)
		}
	})
}

func TestShuffleNeverPicksListened(t *testing.T) {
	items := []models.Item{
		covered("heard-1", 1, true, true),
		covered("fresh-1", 2, false, false),
		covered("heard-2", 3, true, true),
		covered("fresh-2", 4, false, false),
		covered("heard-3", 5, true, true),
	}

	for seed := range uint64(50) {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			c := newController(seed)
			c.SetItems(items)

			now := epoch
			target, err := c.Shuffle(now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			c.Tick(now.Add(time.Hour))

			current, ok := c.Current()
			if !ok || current.Listened {
				t.Errorf("seed %d landed on %+v", seed, current)
			}
			if c.Shuffling() || c.Position() != target {
				t.Errorf("expected Idle(%d), got %v at %d", target, c.Phase(), c.Position())
			}
		})
	}
}
