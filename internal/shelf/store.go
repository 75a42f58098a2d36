package shelf

import (
	"slices"
	"sync"

	"github.com/desertthunder/shelf/internal/models"
)

// Store is the in-memory collection in display order.
//
// Every mutation holds the lock, replaces the whole slice and notifies subscribers after the lock is released,
// so readers always see a complete, sorted snapshot.
type Store struct {
	mu          sync.RWMutex
	items       []models.Item
	subscribers []func([]models.Item)
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{}
}

// Load replaces the collection and applies the ordering policy.
func (s *Store) Load(items []models.Item) {
	s.commit(func([]models.Item) ([]models.Item, bool) { return Order(items), true })
}

// Items returns a copy of the collection in display order.
func (s *Store) Items() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Get returns the item with id.
func (s *Store) Get(id string) (models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.items, id); i >= 0 {
		return s.items[i], true
	}
	return models.Item{}, false
}

// Has reports whether id is still in the collection.
func (s *Store) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Add appends item and re-sorts.
func (s *Store) Add(item models.Item) {
	s.commit(func(cur []models.Item) ([]models.Item, bool) {
		return Order(append(slices.Clone(cur), item)), true
	})
}

// Remove drops id from the collection. It reports whether the item was present.
func (s *Store) Remove(id string) bool {
	var found bool
	s.commit(func(cur []models.Item) ([]models.Item, bool) {
		i := indexOf(cur, id)
		if i < 0 {
			return nil, false
		}
		found = true
		return slices.Delete(slices.Clone(cur), i, i+1), true
	})
	return found
}

// Update applies fn to the item with id and re-sorts. It returns false when the item is gone, in which case
// nothing changes.
func (s *Store) Update(id string, fn func(*models.Item)) bool {
	var found bool
	s.commit(func(cur []models.Item) ([]models.Item, bool) {
		i := indexOf(cur, id)
		if i < 0 {
			return nil, false
		}
		found = true
		next := slices.Clone(cur)
		fn(&next[i])
		return Order(next), true
	})
	return found
}

// Arrange reorders the collection to follow ids without sorting. Unknown ids are skipped and items missing from
// ids keep their relative order at the end. Used for the live drag preview.
func (s *Store) Arrange(ids []string) {
	s.commit(func(cur []models.Item) ([]models.Item, bool) {
		return arrange(cur, ids), true
	})
}

// AssignOrder arranges the collection by ids, gives every item a dense manual order matching its position and
// re-sorts. It returns the (id, order) pairs to persist.
func (s *Store) AssignOrder(ids []string) []models.OrderUpdate {
	var updates []models.OrderUpdate
	s.commit(func(cur []models.Item) ([]models.Item, bool) {
		next := arrange(cur, ids)
		updates = make([]models.OrderUpdate, len(next))
		for i := range next {
			next[i].Order = models.IntPtr(i)
			updates[i] = models.OrderUpdate{ID: next[i].ID, Order: i}
		}
		return Order(next), true
	})
	return updates
}

// Subscribe registers fn to receive a snapshot after every change.
func (s *Store) Subscribe(fn func([]models.Item)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// commit swaps in the slice returned by fn when fn reports a change.
func (s *Store) commit(fn func(cur []models.Item) ([]models.Item, bool)) {
	s.mu.Lock()
	next, changed := fn(s.items)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.items = next
	snapshot := slices.Clone(next)
	subscribers := slices.Clone(s.subscribers)
	s.mu.Unlock()

	for _, sub := range subscribers {
		sub(snapshot)
	}
}

func arrange(cur []models.Item, ids []string) []models.Item {
	next := make([]models.Item, 0, len(cur))
	used := make(map[string]bool, len(cur))
	for _, id := range ids {
		if used[id] {
			continue
		}
		if i := indexOf(cur, id); i >= 0 {
			next = append(next, cur[i])
			used[id] = true
		}
	}
	for _, item := range cur {
		if !used[item.ID] {
			next = append(next, item)
		}
	}
	return next
}

func indexOf(items []models.Item, id string) int {
	return slices.IndexFunc(items, func(item models.Item) bool { return item.ID == id })
}
