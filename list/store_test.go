package list

import (
	"context"
	"testing"
	"time"

	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/types"
)

// fakeListProvider backs both the grocery list and wishlist provider
// interfaces with a single in-memory row slice
type fakeListProvider struct {
	rows []types.ListItem
}

func (f *fakeListProvider) find(id string, userID string) int {
	for i, row := range f.rows {
		if row.ID == id && row.UserID == userID {
			return i
		}
	}
	return -1
}

func (f *fakeListProvider) load(userID string) []types.ListItem {
	items := []types.ListItem{}
	for _, row := range f.rows {
		if row.UserID == userID {
			items = append(items, row)
		}
	}
	return items
}

func (f *fakeListProvider) insert(item types.ListItem) (*types.ListItem, error) {
	// Enforce the backing table's (user_id, product_id) unique index
	for _, row := range f.rows {
		if row.UserID == item.UserID && row.ProductID == item.ProductID {
			return nil, db.NewDuplicateIDError(item.ID)
		}
	}

	f.rows = append(f.rows, item)
	inserted := item
	return &inserted, nil
}

func (f *fakeListProvider) updateQuantity(id string, userID string, quantity string) (*types.ListItem, error) {
	i := f.find(id, userID)
	if i < 0 {
		return nil, db.NewNotFoundError(id)
	}

	f.rows[i].Quantity = quantity
	updated := f.rows[i]
	return &updated, nil
}

func (f *fakeListProvider) delete(id string, userID string) error {
	i := f.find(id, userID)
	if i < 0 {
		return db.NewNotFoundError(id)
	}

	f.rows = append(f.rows[:i], f.rows[i+1:]...)
	return nil
}

func (f *fakeListProvider) GetGroceryList(ctx context.Context, userID string) ([]types.ListItem, error) {
	return f.load(userID), nil
}

func (f *fakeListProvider) InsertGroceryItem(ctx context.Context, item types.ListItem) (*types.ListItem, error) {
	return f.insert(item)
}

func (f *fakeListProvider) UpdateGroceryItemQuantity(ctx context.Context, id string, userID string, quantity string) (*types.ListItem, error) {
	return f.updateQuantity(id, userID, quantity)
}

func (f *fakeListProvider) DeleteGroceryItem(ctx context.Context, id string, userID string) error {
	return f.delete(id, userID)
}

func (f *fakeListProvider) GetWishlist(ctx context.Context, userID string) ([]types.ListItem, error) {
	return f.load(userID), nil
}

func (f *fakeListProvider) InsertWishlistItem(ctx context.Context, item types.ListItem) (*types.ListItem, error) {
	return f.insert(item)
}

func (f *fakeListProvider) UpdateWishlistItemQuantity(ctx context.Context, id string, userID string, quantity string) (*types.ListItem, error) {
	return f.updateQuantity(id, userID, quantity)
}

func (f *fakeListProvider) DeleteWishlistItem(ctx context.Context, id string, userID string) error {
	return f.delete(id, userID)
}

func TestGroceryAddIncrementsDuplicate(t *testing.T) {
	provider := &fakeListProvider{}
	store := NewGroceryStore(provider)
	ctx := context.Background()

	create := types.ListItemCreate{
		ProductID: "prod-1",
		Name:      "Rice",
		Category:  "Grains",
		Quantity:  "2",
	}
	if err := store.Add(ctx, "user-1", create); err != nil {
		t.Fatalf("first add failed: %s", err)
	}

	create.Quantity = "3"
	if err := store.Add(ctx, "user-1", create); err != nil {
		t.Fatalf("second add failed: %s", err)
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item after duplicate add, got %d", len(items))
	}
	if items[0].Quantity != "5" {
		t.Errorf("expected quantity '5', got '%s'", items[0].Quantity)
	}
	if len(provider.rows) != 1 {
		t.Errorf("expected 1 remote row, got %d", len(provider.rows))
	}
	if provider.rows[0].Quantity != "5" {
		t.Errorf("expected remote quantity '5', got '%s'", provider.rows[0].Quantity)
	}
}

func TestGroceryAddColdStoreIncrementsExisting(t *testing.T) {
	// The remote table already holds a row for the product, but this
	// store has never loaded, as after a process restart
	provider := &fakeListProvider{
		rows: []types.ListItem{
			{ID: "a", UserID: "user-1", ProductID: "prod-1", Name: "Rice", Quantity: "2", CreatedAt: time.Now().UTC()},
		},
	}
	store := NewGroceryStore(provider)
	ctx := context.Background()

	create := types.ListItemCreate{ProductID: "prod-1", Name: "Rice", Quantity: "3"}
	if err := store.Add(ctx, "user-1", create); err != nil {
		t.Fatalf("cold add failed: %s", err)
	}

	if len(provider.rows) != 1 {
		t.Fatalf("expected the existing remote row to absorb the add, got %d rows", len(provider.rows))
	}
	if provider.rows[0].Quantity != "5" {
		t.Errorf("expected remote quantity '5', got '%s'", provider.rows[0].Quantity)
	}

	items := store.Items()
	if len(items) != 1 || items[0].Quantity != "5" {
		t.Errorf("expected a single local item with quantity '5', got %+v", items)
	}
}

func TestGroceryAddSeparateUsersDoNotCollide(t *testing.T) {
	provider := &fakeListProvider{}
	store := NewGroceryStore(provider)
	ctx := context.Background()

	create := types.ListItemCreate{ProductID: "prod-1", Name: "Rice", Quantity: "1"}
	if err := store.Add(ctx, "user-1", create); err != nil {
		t.Fatalf("add for user-1 failed: %s", err)
	}
	if err := store.Add(ctx, "user-2", create); err != nil {
		t.Fatalf("add for user-2 failed: %s", err)
	}

	if len(provider.rows) != 2 {
		t.Errorf("expected 2 remote rows for distinct users, got %d", len(provider.rows))
	}
}

func TestWishlistAddAlwaysInsertsOne(t *testing.T) {
	provider := &fakeListProvider{}
	store := NewWishlistStore(provider)
	ctx := context.Background()

	create := types.ListItemCreate{
		ProductID: "prod-1",
		Name:      "Beans",
		Quantity:  "4",
	}
	if err := store.Add(ctx, "user-1", create); err != nil {
		t.Fatalf("first add failed: %s", err)
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Quantity != "1" {
		t.Errorf("expected insert quantity '1' regardless of request, got '%s'", items[0].Quantity)
	}

	// A duplicate add increments by exactly one unit
	create.Quantity = "9"
	if err := store.Add(ctx, "user-1", create); err != nil {
		t.Fatalf("second add failed: %s", err)
	}

	items = store.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item after duplicate add, got %d", len(items))
	}
	if items[0].Quantity != "2" {
		t.Errorf("expected quantity '2' after duplicate add, got '%s'", items[0].Quantity)
	}
}

func TestUpdateQuantity(t *testing.T) {
	cases := []struct {
		name          string
		quantity      string
		wantRemoved   bool
		wantQuantity  string
		wantErrorType string
	}{
		{name: "positive updates in place", quantity: "3", wantQuantity: "3"},
		{name: "zero removes the item", quantity: "0", wantRemoved: true},
		{name: "negative removes the item", quantity: "-2", wantRemoved: true},
		{name: "non-numeric is rejected", quantity: "abc", wantErrorType: "invalid", wantQuantity: "1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &fakeListProvider{}
			store := NewGroceryStore(provider)
			ctx := context.Background()

			create := types.ListItemCreate{ProductID: "prod-1", Name: "Rice", Quantity: "1"}
			if err := store.Add(ctx, "user-1", create); err != nil {
				t.Fatalf("add failed: %s", err)
			}
			id := store.Items()[0].ID

			err := store.UpdateQuantity(ctx, id, tc.quantity)

			if tc.wantErrorType == "invalid" {
				if _, ok := err.(*InvalidQuantityError); !ok {
					t.Fatalf("expected InvalidQuantityError, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("update failed: %s", err)
			}

			items := store.Items()
			if tc.wantRemoved {
				if len(items) != 0 {
					t.Errorf("expected item to be removed, got %d items", len(items))
				}
				if len(provider.rows) != 0 {
					t.Errorf("expected remote row to be removed, got %d rows", len(provider.rows))
				}
				return
			}

			if len(items) != 1 {
				t.Fatalf("expected 1 item, got %d", len(items))
			}
			if items[0].Quantity != tc.wantQuantity {
				t.Errorf("expected quantity '%s', got '%s'", tc.wantQuantity, items[0].Quantity)
			}
		})
	}
}

func TestUpdateQuantityUnknownItem(t *testing.T) {
	store := NewGroceryStore(&fakeListProvider{})

	err := store.UpdateQuantity(context.Background(), "missing", "2")
	if _, ok := err.(*ItemNotFoundError); !ok {
		t.Fatalf("expected ItemNotFoundError, got %v", err)
	}
}

func TestRemoveUnknownItem(t *testing.T) {
	store := NewGroceryStore(&fakeListProvider{})

	err := store.Remove(context.Background(), "missing")
	if _, ok := err.(*ItemNotFoundError); !ok {
		t.Fatalf("expected ItemNotFoundError, got %v", err)
	}
}

func TestLoadNormalizesRows(t *testing.T) {
	now := time.Now().UTC()
	provider := &fakeListProvider{
		rows: []types.ListItem{
			{ID: "a", UserID: "user-1", ProductID: "prod-1", Name: "Rice", Quantity: "2", CreatedAt: now},
			// Missing product ID, skipped at the decode boundary
			{ID: "b", UserID: "user-1", Name: "Mystery", Quantity: "1", CreatedAt: now},
			// Empty quantity is defaulted rather than dropped
			{ID: "c", UserID: "user-1", ProductID: "prod-2", Name: "Beans", Quantity: "", CreatedAt: now},
		},
	}
	store := NewGroceryStore(provider)

	if err := store.Load(context.Background(), "user-1"); err != nil {
		t.Fatalf("load failed: %s", err)
	}

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items after normalization, got %d", len(items))
	}

	quantities := map[string]string{}
	for _, item := range items {
		quantities[item.ID] = item.Quantity
	}
	if quantities["a"] != "2" {
		t.Errorf("expected item 'a' quantity '2', got '%s'", quantities["a"])
	}
	if quantities["c"] != "1" {
		t.Errorf("expected item 'c' quantity defaulted to '1', got '%s'", quantities["c"])
	}
}
