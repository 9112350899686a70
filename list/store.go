package list

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/types"
)

// remote is the unified set of write-through operations against the
// backing table slice, shared between the grocery list and wishlist
type remote interface {
	load(ctx context.Context, userID string) ([]types.ListItem, error)
	insert(ctx context.Context, item types.ListItem) (*types.ListItem, error)
	updateQuantity(ctx context.Context, id string, userID string, quantity string) (*types.ListItem, error)
	delete(ctx context.Context, id string, userID string) error
}

type groceryRemote struct {
	provider db.GroceryListProvider
}

func (r groceryRemote) load(ctx context.Context, userID string) ([]types.ListItem, error) {
	return r.provider.GetGroceryList(ctx, userID)
}

func (r groceryRemote) insert(ctx context.Context, item types.ListItem) (*types.ListItem, error) {
	return r.provider.InsertGroceryItem(ctx, item)
}

func (r groceryRemote) updateQuantity(ctx context.Context, id string, userID string, quantity string) (*types.ListItem, error) {
	return r.provider.UpdateGroceryItemQuantity(ctx, id, userID, quantity)
}

func (r groceryRemote) delete(ctx context.Context, id string, userID string) error {
	return r.provider.DeleteGroceryItem(ctx, id, userID)
}

type wishlistRemote struct {
	provider db.WishlistProvider
}

func (r wishlistRemote) load(ctx context.Context, userID string) ([]types.ListItem, error) {
	return r.provider.GetWishlist(ctx, userID)
}

func (r wishlistRemote) insert(ctx context.Context, item types.ListItem) (*types.ListItem, error) {
	return r.provider.InsertWishlistItem(ctx, item)
}

func (r wishlistRemote) updateQuantity(ctx context.Context, id string, userID string, quantity string) (*types.ListItem, error) {
	return r.provider.UpdateWishlistItemQuantity(ctx, id, userID, quantity)
}

func (r wishlistRemote) delete(ctx context.Context, id string, userID string) error {
	return r.provider.DeleteWishlistItem(ctx, id, userID)
}

// Store holds an in-memory ordered collection mirroring a remote
// per-user table slice. Every mutation writes through to the remote
// store first and reconciles local state from the response.
//
// The internal lock only guards the local collection; remote calls are
// issued outside of it, so concurrent mutations race last-write-wins
// the same way independent clients against the table would
type Store struct {
	mu       sync.Mutex
	remote   remote
	wishlist bool
	items    []types.ListItem
	loading  bool
	loaded   bool
}

// NewGroceryStore creates a list store backed by the user_ingredients
// table slice. Duplicate adds increment by the requested amount
func NewGroceryStore(provider db.GroceryListProvider) *Store {
	return &Store{
		remote: groceryRemote{provider},
	}
}

// NewWishlistStore creates a list store backed by the user_wishlist
// table slice. Duplicate adds increment by exactly one unit and
// inserts always use quantity "1", regardless of the requested amount
func NewWishlistStore(provider db.WishlistProvider) *Store {
	return &Store{
		remote:   wishlistRemote{provider},
		wishlist: true,
	}
}

// Items returns a copy of the local collection in its current order
func (s *Store) Items() []types.ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]types.ListItem, len(s.items))
	copy(items, s.items)
	return items
}

// IsLoading reports whether a Load is currently in flight
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

// FindByID looks up a local item by its server-assigned ID
func (s *Store) FindByID(id string) *types.ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == id {
			found := item
			return &found
		}
	}

	return nil
}

// FindByProductID looks up a local item by its (product_id, user_id)
// de-duplication key
func (s *Store) FindByProductID(productID string, userID string) *types.ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ProductID == productID && item.UserID == userID {
			found := item
			return &found
		}
	}

	return nil
}

// Load fetches all rows for the user and replaces the local collection
// wholesale. Malformed rows are skipped at the decode boundary rather
// than coerced. On error the prior local state is left untouched
func (s *Store) Load(ctx context.Context, userID string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	rows, err := s.remote.load(ctx, userID)
	if err != nil {
		return err
	}

	items := []types.ListItem{}
	for _, row := range rows {
		normalized, err := types.NormalizeListItem(row)
		if err != nil {
			log.Printf("skipping malformed list item row: %s\n", err)
			continue
		}
		items = append(items, normalized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.loaded = true
	return nil
}

// EnsureLoaded performs the initial fetch for a store that has never
// loaded, so mutations consult a populated mirror. Without it a fresh
// store would miss the de-duplication fold on items the user already
// owns remotely
func (s *Store) EnsureLoaded(ctx context.Context, userID string) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()

	if loaded {
		return nil
	}

	return s.Load(ctx, userID)
}

// Add inserts a new item for the user, or increments the quantity of
// the existing item sharing its (product_id, user_id) key.
// The grocery list increments by the requested quantity and inserts
// with it; the wishlist increments by one and inserts with "1",
// reloading the full list afterwards to pick up the catalog join
func (s *Store) Add(ctx context.Context, userID string, item types.ListItemCreate) error {
	if err := s.EnsureLoaded(ctx, userID); err != nil {
		return err
	}

	existing := s.FindByProductID(item.ProductID, userID)
	if existing != nil {
		existingQuantity, err := strconv.Atoi(existing.Quantity)
		if err != nil {
			return NewInvalidQuantityError(existing.Quantity)
		}

		increment := 1
		if !s.wishlist {
			increment, err = strconv.Atoi(defaultQuantity(item.Quantity))
			if err != nil {
				return NewInvalidQuantityError(item.Quantity)
			}
		}

		return s.UpdateQuantity(ctx, existing.ID, strconv.Itoa(existingQuantity+increment))
	}

	quantity := defaultQuantity(item.Quantity)
	if s.wishlist {
		quantity = "1"
	}

	row := types.ListItem{
		ID:          ksuid.New().String(),
		UserID:      userID,
		ProductID:   item.ProductID,
		Name:        item.Name,
		Category:    item.Category,
		Quantity:    quantity,
		Description: item.Description,
		Nutrition:   item.Nutrition,
		ImageURL:    item.ImageURL,
		CreatedAt:   time.Now().UTC(),
	}

	inserted, err := s.remote.insert(ctx, row)
	if err != nil {
		return err
	}

	if s.wishlist {
		// Reload so the new row carries the denormalized catalog details
		return s.Load(ctx, userID)
	}

	normalized, err := types.NormalizeListItem(*inserted)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, normalized)
	return nil
}

// UpdateQuantity parses the new quantity and writes it through scoped
// by both item ID and user ID. A quantity of zero or less removes the
// item instead. Only the matching local item is mutated on success;
// no full reload is issued
func (s *Store) UpdateQuantity(ctx context.Context, id string, newQuantity string) error {
	item := s.FindByID(id)
	if item == nil {
		return NewItemNotFoundError(id)
	}

	numericQuantity, err := strconv.Atoi(newQuantity)
	if err != nil {
		return NewInvalidQuantityError(newQuantity)
	}

	if numericQuantity <= 0 {
		// Driving the quantity to zero deletes the item
		return s.Remove(ctx, id)
	}

	quantity := strconv.Itoa(numericQuantity)
	_, err = s.remote.updateQuantity(ctx, id, item.UserID, quantity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			break
		}
	}
	return nil
}

// Remove deletes the item remotely, scoped by both item ID and the
// user ID recovered from the local collection, then filters it out
// of local state
func (s *Store) Remove(ctx context.Context, id string) error {
	item := s.FindByID(id)
	if item == nil {
		return NewItemNotFoundError(id)
	}

	err := s.remote.delete(ctx, id, item.UserID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := s.items[:0]
	for _, existing := range s.items {
		if existing.ID != id {
			filtered = append(filtered, existing)
		}
	}
	s.items = filtered
	return nil
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func defaultQuantity(quantity string) string {
	if quantity == "" {
		return "1"
	}

	return quantity
}
