// Package rack drives the carousel view of the shelf: covers mounted on a drum that can be stepped by hand or
// spun to a random unlistened pick.
//
// The controller runs on a virtual clock. Callers pass the current time to [Controller.Navigate],
// [Controller.Shuffle] and [Controller.Tick]; nothing here sleeps or starts goroutines.
package rack

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/shelf"
)

const (
	DefaultGestureInterval = 250 * time.Millisecond
	DefaultSpinDuration    = 1200 * time.Millisecond
	DefaultSnapDuration    = 20 * time.Millisecond
	DefaultSettleDuration  = 400 * time.Millisecond
)

// Unsettled is the position before the rack has been placed. Leaving it never animates.
const Unsettled = -1

// Phase is a step of the controller's state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOvershoot
	PhaseSnap
	PhaseSettle
)

func (p Phase) String() string {
	switch p {
	case PhaseOvershoot:
		return "overshoot"
	case PhaseSnap:
		return "snap"
	case PhaseSettle:
		return "settle"
	default:
		return "idle"
	}
}

// RackItems returns the items shown on the rack: covered items that are unlistened or flagged to hear again, in
// shelf order.
func RackItems(items []models.Item) []models.Item {
	ordered := shelf.Order(items)
	out := make([]models.Item, 0, len(ordered))
	for _, item := range ordered {
		if item.HasCover() && (!item.Listened || item.ListenAgain) {
			out = append(out, item)
		}
	}
	return out
}

// Options configures a [Controller]. Zero durations take the package defaults.
type Options struct {
	GestureInterval time.Duration
	SpinDuration    time.Duration
	SnapDuration    time.Duration
	SettleDuration  time.Duration
	Rand            *rand.Rand
	Logger          *log.Logger
}

// Controller holds the rack position and the shuffle sequence.
type Controller struct {
	mu       sync.Mutex
	items    []models.Item
	position int
	animate  bool
	phase    Phase
	target   int
	targetID string
	revs     int
	deadline time.Time
	gesture  time.Time

	gestureInterval time.Duration
	spin            time.Duration
	snap            time.Duration
	settle          time.Duration
	rng             *rand.Rand
	logger          *log.Logger
}

// New creates a controller with no items.
func New(opts Options) *Controller {
	c := &Controller{
		position:        Unsettled,
		gestureInterval: orDefault(opts.GestureInterval, DefaultGestureInterval),
		spin:            orDefault(opts.SpinDuration, DefaultSpinDuration),
		snap:            orDefault(opts.SnapDuration, DefaultSnapDuration),
		settle:          orDefault(opts.SettleDuration, DefaultSettleDuration),
		rng:             opts.Rand,
		logger:          opts.Logger,
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	c.logger = c.logger.With("component", "rack")
	return c
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// SetItems replaces the rack view with the rack subset of items. An unsettled or out of range position snaps into
// range without animation.
func (c *Controller) SetItems(items []models.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = RackItems(items)
	n := len(c.items)

	if c.phase != PhaseIdle {
		c.retarget()
	}
	if c.phase != PhaseIdle {
		return
	}

	switch {
	case n == 0:
		c.position, c.animate = Unsettled, false
	case c.position == Unsettled || c.position >= n:
		c.position, c.animate = min(max(c.position, 0), n-1), false
	}
}

// retarget finds the picked item in a rebuilt view and moves the drum with it. The shuffle stops when the pick
// has left the rack.
func (c *Controller) retarget() {
	n := len(c.items)
	idx := slices.IndexFunc(c.items, func(item models.Item) bool { return item.ID == c.targetID })
	if idx < 0 {
		c.logger.Debug("shuffle target left the rack", "item", c.targetID)
		c.phase = PhaseIdle
		c.targetID = ""
		c.position = Unsettled
		return
	}

	c.target = idx
	switch c.phase {
	case PhaseOvershoot:
		c.position = idx + c.revs*n
	case PhaseSnap:
		c.position = (idx + 1) % n
	case PhaseSettle:
		c.position = idx
	}
}

// Items returns the current rack view.
func (c *Controller) Items() []models.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Item(nil), c.items...)
}

// Navigate steps the rack by one position in the direction of delta. Input is ignored while shuffling, on an
// empty rack and within GestureInterval of the last accepted step. It reports whether the position moved.
func (c *Controller) Navigate(delta int, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	if c.phase != PhaseIdle || n == 0 || delta == 0 {
		return false
	}
	if !c.gesture.IsZero() && now.Sub(c.gesture) < c.gestureInterval {
		return false
	}

	step := 1
	if delta < 0 {
		step = -1
	}
	from := max(c.position, 0)
	next := min(max(from+step, 0), n-1)
	if next == c.position {
		return false
	}

	c.gesture = now
	c.position, c.animate = next, true
	return true
}

// Shuffle starts a spin to a random unlistened item and returns its index in the rack. The drum overshoots by
// two or three full revolutions before settling; call [Controller.Tick] to advance the sequence.
func (c *Controller) Shuffle(now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseIdle {
		return 0, shared.ErrShuffleBusy
	}

	var candidates []int
	for i, item := range c.items {
		if !item.Listened {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, shared.ErrNoCandidates
	}

	n := len(c.items)
	target := candidates[c.rng.IntN(len(candidates))]
	revs := 2 + c.rng.IntN(2)

	c.target, c.targetID, c.revs = target, c.items[target].ID, revs
	c.position, c.animate = target+revs*n, true
	c.phase = PhaseOvershoot
	c.deadline = now.Add(c.spin)

	c.logger.Debug("shuffle started", "target", target, "revolutions", revs, "item", c.items[target].ID)
	return target, nil
}

// Tick advances the shuffle sequence to now. Several phases may complete in one call. It reports whether
// anything changed.
func (c *Controller) Tick(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	for c.phase != PhaseIdle && !now.Before(c.deadline) {
		switch c.phase {
		case PhaseOvershoot:
			c.position, c.animate = (c.target+1)%len(c.items), false
			c.phase = PhaseSnap
			c.deadline = c.deadline.Add(c.snap)
		case PhaseSnap:
			c.position, c.animate = c.target, true
			c.phase = PhaseSettle
			c.deadline = c.deadline.Add(c.settle)
		case PhaseSettle:
			c.phase = PhaseIdle
			c.logger.Debug("shuffle settled", "position", c.position)
		}
		changed = true
	}
	return changed
}

// Position returns the drum index. While spinning it can exceed the rack length; take it modulo the length to
// find the facing item.
func (c *Controller) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Animate reports whether the move to the current position should be animated.
func (c *Controller) Animate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.animate
}

// Phase returns the current step of the state machine.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Shuffling reports whether a shuffle sequence is running.
func (c *Controller) Shuffling() bool {
	return c.Phase() != PhaseIdle
}

// Current returns the item facing the viewer.
func (c *Controller) Current() (models.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	if n == 0 || c.position == Unsettled {
		return models.Item{}, false
	}
	return c.items[c.position%n], true
}
