package lists

import (
	"sync"

	"github.com/pantrypal/pantrypal-api/list"
)

// Stores lazily creates and retains one list store per user so routes
// for different users never observe each other's local state
type Stores struct {
	mu      sync.Mutex
	factory func() *list.Store
	byUser  map[string]*list.Store
}

// NewStores creates a per-user store registry using the given factory
func NewStores(factory func() *list.Store) *Stores {
	return &Stores{
		factory: factory,
		byUser:  make(map[string]*list.Store),
	}
}

// ForUser returns the store for the user, creating it on first use
func (s *Stores) ForUser(userID string) *list.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.byUser[userID]; ok {
		return store
	}

	store := s.factory()
	s.byUser[userID] = store
	return store
}
