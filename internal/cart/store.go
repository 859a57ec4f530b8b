package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Store keeps active carts in memory. A cart is exclusively owned by one
// operator session; the mutex only guards the map against concurrent
// sessions creating carts, not concurrent mutation of a single cart.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewStore constructs an empty cart store.
func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// Create registers a fresh empty cart and returns it.
func (s *Store) Create() *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	c := New(id)
	s.carts[id] = c
	return c
}

// Get returns the cart for the given id, or nil when unknown.
func (s *Store) Get(id string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[id]
}
