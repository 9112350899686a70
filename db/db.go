package db

import (
	"context"

	"github.com/pantrypal/pantrypal-api/types"
)

// Provider represents a database provider implementation
type Provider interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	IngredientProvider
	GroceryListProvider
	WishlistProvider
	PreferencesProvider
	GroupProvider
}

// IngredientProvider provides read operations on the ingredient catalog
type IngredientProvider interface {
	GetIngredient(ctx context.Context, productID string) (*types.Ingredient, error)
	GetAllIngredients(ctx context.Context, filter types.IngredientFilter) ([]types.Ingredient, error)
	UpdateIngredient(ctx context.Context, productID string, update map[string]interface{}) (*types.Ingredient, error)
}

// GroceryListProvider provides CRUD operations on a user's grocery list slice.
// Updates and deletes are scoped by both item ID and user ID
type GroceryListProvider interface {
	GetGroceryList(ctx context.Context, userID string) ([]types.ListItem, error)
	InsertGroceryItem(ctx context.Context, item types.ListItem) (*types.ListItem, error)
	UpdateGroceryItemQuantity(ctx context.Context, id string, userID string, quantity string) (*types.ListItem, error)
	DeleteGroceryItem(ctx context.Context, id string, userID string) error
}

// WishlistProvider provides CRUD operations on a user's wishlist slice.
// Reads denormalize ingredient catalog details onto each row
type WishlistProvider interface {
	GetWishlist(ctx context.Context, userID string) ([]types.ListItem, error)
	InsertWishlistItem(ctx context.Context, item types.ListItem) (*types.ListItem, error)
	UpdateWishlistItemQuantity(ctx context.Context, id string, userID string, quantity string) (*types.ListItem, error)
	DeleteWishlistItem(ctx context.Context, id string, userID string) error
}

// PreferencesProvider provides operations on the per-user preference rows
type PreferencesProvider interface {
	GetPreferences(ctx context.Context, userID string) (*types.UserPreferences, error)
	SavePreferences(ctx context.Context, preferences types.UserPreferences) (*types.UserPreferences, error)
	UpdatePreferenceLocation(ctx context.Context, userID string, location string) error
}

// GroupProvider provides operations on groups and their memberships
type GroupProvider interface {
	GetGroup(ctx context.Context, id string) (*types.Group, error)
	CreateGroup(ctx context.Context, group types.Group) error
	CreateMembership(ctx context.Context, membership types.GroupMembership) error
	GetMembershipsForUser(ctx context.Context, userID string) ([]types.GroupMembership, error)
	GetGroupsForUser(ctx context.Context, userID string) ([]types.Group, error)
}
