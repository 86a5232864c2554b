package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collection is an immutable snapshot of every item built by one load.
type Collection struct {
	items    []Item
	byID     map[int]int
	loadedAt time.Time
}

// NewCollection indexes items by ID. items must not be modified afterwards.
func NewCollection(items []Item, loadedAt time.Time) *Collection {
	byID := make(map[int]int, len(items))
	for i, it := range items {
		byID[it.ID] = i
	}
	return &Collection{items: items, byID: byID, loadedAt: loadedAt}
}

// Items returns all items in load order. The slice is shared; do not modify it.
func (c *Collection) Items() []Item { return c.items }

// Len returns the number of items.
func (c *Collection) Len() int { return len(c.items) }

// LoadedAt returns when the snapshot was built (zero for the empty snapshot).
func (c *Collection) LoadedAt() time.Time { return c.loadedAt }

// Get looks an item up by ID.
func (c *Collection) Get(id int) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// LoadState describes the loader's progress.
type LoadState string

const (
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateError   LoadState = "error"
)

// Store holds the current Collection. Readers take snapshots; only the
// Loader in this package can replace it, in one atomic swap.
type Store struct {
	current atomic.Pointer[Collection]

	mu    sync.RWMutex
	state LoadState
	err   error
}

// NewStore returns a store holding an empty collection.
func NewStore() *Store {
	s := &Store{state: StateLoading}
	s.current.Store(NewCollection(nil, time.Time{}))
	return s
}

// Snapshot returns the current collection. It is never nil.
func (s *Store) Snapshot() *Collection {
	return s.current.Load()
}

// Status returns the load state and the last load error, if any.
func (s *Store) Status() (LoadState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.err
}

func (s *Store) publish(c *Collection) {
	s.current.Store(c)
	s.mu.Lock()
	s.state = StateReady
	s.err = nil
	s.mu.Unlock()
}

// fail records err and leaves the current collection untouched.
func (s *Store) fail(err error) {
	s.mu.Lock()
	s.state = StateError
	s.err = err
	s.mu.Unlock()
}
