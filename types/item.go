package types

import (
	"fmt"
	"time"
)

// Nutrition contains the per-serving nutritional facts attached to an
// ingredient or list item
type Nutrition struct {
	Calories float64 `json:"calories" bson:"calories"`
	ProteinG float64 `json:"protein_g" bson:"protein_g"`
	CarbsG   float64 `json:"carbs_g" bson:"carbs_g"`
	FatG     float64 `json:"fat_g" bson:"fat_g"`
}

// ListItem is the document stored for a single grocery list or wishlist
// entry, mirroring a per-user slice of the corresponding collection.
// Identity is the server-assigned ID; (ProductID, UserID) is the
// secondary key used for de-duplication
type ListItem struct {
	ID          string     `json:"id" bson:"id"`
	UserID      string     `json:"user_id" bson:"user_id"`
	ProductID   string     `json:"product_id" bson:"product_id"`
	Name        string     `json:"name" bson:"name"`
	Category    string     `json:"category" bson:"category"`
	Quantity    string     `json:"quantity" bson:"quantity"`
	Description *string    `json:"description" bson:"description"`
	Nutrition   *Nutrition `json:"nutrition" bson:"nutrition"`
	ImageURL    *string    `json:"image_url" bson:"image_url"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

// ListItemCreate is supplied by clients when adding to a list
// and converted into a ListItem
type ListItemCreate struct {
	ProductID   string     `json:"product_id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Quantity    string     `json:"quantity"`
	Description *string    `json:"description"`
	Nutrition   *Nutrition `json:"nutrition"`
	ImageURL    *string    `json:"image_url"`
}

// NormalizeListItem validates a list item row at the point it crosses
// from the remote store into local state. Rows missing their identity
// keys are rejected rather than coerced; a missing quantity defaults
// to "1"
func NormalizeListItem(item ListItem) (ListItem, error) {
	if item.ID == "" || item.UserID == "" || item.ProductID == "" {
		return ListItem{}, fmt.Errorf("list item row is missing identity fields (id='%s', user_id='%s', product_id='%s')",
			item.ID, item.UserID, item.ProductID)
	}

	if item.Quantity == "" {
		item.Quantity = "1"
	}

	return item, nil
}
