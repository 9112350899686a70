package catalog

import "fmt"

// CacheNotInitializedError is an error used to encode when the cache has not been initialized
type CacheNotInitializedError struct {
	Action string
}

// NewCacheNotInitializedError constructs a new CacheNotInitializedError
func NewCacheNotInitializedError(action string) *CacheNotInitializedError {
	return &CacheNotInitializedError{
		Action: action,
	}
}

func (e *CacheNotInitializedError) Error() string {
	return fmt.Sprintf("cannot %s: cache has not been initialized", e.Action)
}

// CategoryNotFoundError is an error used to encode when a category isn't found
type CategoryNotFoundError struct {
	Category string
}

// NewCategoryNotFoundError constructs a new CategoryNotFoundError
func NewCategoryNotFoundError(category string) *CategoryNotFoundError {
	return &CategoryNotFoundError{
		Category: category,
	}
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category '%s' not found in the ingredient catalog cache",
		e.Category)
}

// IngredientNotFoundError is an error used to encode when an ingredient isn't found
type IngredientNotFoundError struct {
	ProductID string
}

// NewIngredientNotFoundError constructs a new IngredientNotFoundError
func NewIngredientNotFoundError(productID string) *IngredientNotFoundError {
	return &IngredientNotFoundError{
		ProductID: productID,
	}
}

func (e *IngredientNotFoundError) Error() string {
	return fmt.Sprintf("ingredient with product ID '%s' not found in the ingredient catalog cache",
		e.ProductID)
}
