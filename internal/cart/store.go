package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mommamia-caters/api/internal/enum"
)

// ErrNotFound is returned when a cart ID has no live session.
var ErrNotFound = errors.New("cart not found")

// DefaultTTL is how long an idle cart survives before the sweeper drops it.
const DefaultTTL = 2 * time.Hour

// Store holds live cart sessions in memory. Sessions are intentionally
// unpersisted: an order in progress is lost on restart, matching the
// in-browser lifetime it replaces.
type Store struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*Cart
	ttl   time.Duration
	now   func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL overrides the idle lifetime of a cart.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

// WithClock overrides the time source. Used by tests to control expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty session store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		carts: make(map[uuid.UUID]*Cart),
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new cart session for one menu category.
func (s *Store) Create(menuCategory enum.MenuCategory) *Cart {
	c := New(menuCategory, s.now())
	s.mu.Lock()
	s.carts[c.ID()] = c
	s.mu.Unlock()
	return c
}

// Get returns the live cart for an ID.
func (s *Store) Get(id uuid.UUID) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// Exists reports whether a cart session is live.
func (s *Store) Exists(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.carts[id]
	return ok
}

// Delete removes a cart session.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.carts, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

// Sweep drops carts idle longer than the TTL and returns how many it removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.carts {
		if c.LastActive().Before(cutoff) {
			delete(s.carts, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired carts on the given interval until the context ends.
// This should be called as a goroutine: go store.Run(ctx, interval)
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
