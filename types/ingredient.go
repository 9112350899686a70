package types

// Ingredient is a row in the read-only ingredient catalog
type Ingredient struct {
	ProductID   string     `json:"product_id" bson:"product_id"`
	Name        string     `json:"name" bson:"name"`
	Category    string     `json:"category" bson:"category"`
	Description *string    `json:"description" bson:"description"`
	Nutrition   *Nutrition `json:"nutrition" bson:"nutrition"`
	ImageURL    *string    `json:"image_url" bson:"image_url"`
}

// IngredientFilter narrows a catalog listing;
// zero values leave the corresponding dimension unfiltered
type IngredientFilter struct {
	Category string
	Limit    int64
	Offset   int64
}
