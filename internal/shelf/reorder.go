package shelf

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// DefaultHoverThrottle is the minimum gap between two applied hover moves.
const DefaultHoverThrottle = 100 * time.Millisecond

// ReorderState is the phase of a [ReorderSession].
type ReorderState int

const (
	ReorderIdle ReorderState = iota
	ReorderDragging
	ReorderCommitting
)

func (s ReorderState) String() string {
	switch s {
	case ReorderDragging:
		return "dragging"
	case ReorderCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// Point is a pointer or card position in host coordinates.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// IsZero reports whether p is the origin.
func (p Point) IsZero() bool { return p.X == 0 && p.Y == 0 }

// OrderSaver persists a reorder commit.
type OrderSaver interface {
	SaveOrder(ctx context.Context, updates []models.OrderUpdate) error
}

// ReorderSession drives one drag gesture over a [Store].
//
// Hover moves only touch the working order and the store's live preview. End always commits whatever the preview
// shows: there is no cancel.
type ReorderSession struct {
	mu       sync.Mutex
	store    *Store
	saver    OrderSaver
	logger   *log.Logger
	throttle time.Duration

	state     ReorderState
	grabbed   string
	origin    int
	offset    Point
	pointer   Point
	working   []string
	lastHover time.Time
}

// NewReorderSession creates an idle session. A non-positive throttle uses [DefaultHoverThrottle].
func NewReorderSession(store *Store, saver OrderSaver, throttle time.Duration, logger *log.Logger) *ReorderSession {
	if throttle <= 0 {
		throttle = DefaultHoverThrottle
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ReorderSession{
		store:    store,
		saver:    saver,
		throttle: throttle,
		logger:   logger.With("component", "reorder"),
	}
}

// Begin grabs id at origin. pointer and cardOrigin give the grab offset so the floating card tracks the cursor.
func (r *ReorderSession) Begin(id string, origin int, pointer, cardOrigin Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != ReorderIdle {
		return shared.ErrDragActive
	}

	items := r.store.Items()
	idx := indexOf(items, id)
	if idx < 0 {
		return shared.ErrItemNotFound
	}
	if origin != idx {
		r.logger.Debug("origin index out of date", "id", id, "origin", origin, "actual", idx)
	}

	r.working = make([]string, len(items))
	for i, item := range items {
		r.working[i] = item.ID
	}
	r.state = ReorderDragging
	r.grabbed = id
	r.origin = idx
	r.offset = pointer.Sub(cardOrigin)
	r.pointer = pointer
	r.lastHover = time.Time{}
	return nil
}

// Drag tracks the cursor. The zero point some platforms report as the final drag event is ignored.
func (r *ReorderSession) Drag(pointer Point) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != ReorderDragging || pointer.IsZero() {
		return
	}
	r.pointer = pointer
}

// Preview returns the top-left of the floating card.
func (r *ReorderSession) Preview() (Point, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != ReorderDragging {
		return Point{}, false
	}
	return r.pointer.Sub(r.offset), true
}

// Hover moves the grabbed item to target in the working order and previews it in the store.
// It reports whether the move was applied; moves inside the throttle window are dropped.
func (r *ReorderSession) Hover(target int, now time.Time) bool {
	r.mu.Lock()
	if r.state != ReorderDragging || len(r.working) == 0 {
		r.mu.Unlock()
		return false
	}

	target = max(0, min(target, len(r.working)-1))
	current := slices.Index(r.working, r.grabbed)
	if current < 0 || target == current {
		r.mu.Unlock()
		return false
	}
	if !r.lastHover.IsZero() && now.Sub(r.lastHover) < r.throttle {
		r.mu.Unlock()
		return false
	}

	r.working = slices.Delete(r.working, current, current+1)
	r.working = slices.Insert(r.working, target, r.grabbed)
	r.lastHover = now
	working := slices.Clone(r.working)
	r.mu.Unlock()

	// subscribers run inside Arrange and may read the session
	r.store.Arrange(working)
	return true
}

// End commits the working order: every item gets a dense manual order and the batch is persisted.
// Persistence failures are logged; the in-memory order stays authoritative.
func (r *ReorderSession) End(ctx context.Context) ([]models.OrderUpdate, error) {
	r.mu.Lock()
	if r.state != ReorderDragging {
		r.mu.Unlock()
		return nil, shared.ErrNotDragging
	}
	r.state = ReorderCommitting
	working := slices.Clone(r.working)
	grabbed := r.grabbed
	r.mu.Unlock()

	updates := r.store.AssignOrder(working)
	if r.saver != nil {
		if err := r.saver.SaveOrder(ctx, updates); err != nil {
			r.logger.Error("failed to persist order", "items", len(updates), "error", err)
		}
	}
	r.logger.Debug("reorder committed", "id", grabbed, "items", len(updates))

	r.mu.Lock()
	r.reset()
	r.mu.Unlock()
	return updates, nil
}

// State returns the current phase.
func (r *ReorderSession) State() ReorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Grabbed returns the id being dragged and its origin index.
func (r *ReorderSession) Grabbed() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.grabbed, r.origin
}

// Working returns the current working order.
func (r *ReorderSession) Working() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.working)
}

func (r *ReorderSession) reset() {
	r.state = ReorderIdle
	r.grabbed = ""
	r.origin = 0
	r.offset = Point{}
	r.pointer = Point{}
	r.working = nil
	r.lastHover = time.Time{}
}
