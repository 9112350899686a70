package catalog

import (
	"sort"
	"sync"

	"github.com/pantrypal/pantrypal-api/types"
)

// Cache holds an in-memory snapshot of the read-only ingredient
// catalog, grouped by category
type Cache struct {
	sync.Mutex
	loaded      bool
	categories  []string
	byCategory  map[string][]types.Ingredient
	byProductID map[string]types.Ingredient
}

// Load replaces the cache contents from the source slice,
// marking it as ready
func (c *Cache) Load(ingredients []types.Ingredient) {
	byCategory := make(map[string][]types.Ingredient)
	byProductID := make(map[string]types.Ingredient)
	for _, ingredient := range ingredients {
		byCategory[ingredient.Category] = append(byCategory[ingredient.Category], ingredient)
		byProductID[ingredient.ProductID] = ingredient
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	c.Lock()
	defer c.Unlock()

	c.loaded = true
	c.categories = categories
	c.byCategory = byCategory
	c.byProductID = byProductID
}

// Categories gets all category names in the catalog, sorted
func (c *Cache) Categories() ([]string, error) {
	c.Lock()
	defer c.Unlock()

	if !c.loaded {
		return nil, NewCacheNotInitializedError("list catalog categories")
	}

	return c.categories, nil
}

// All gets every ingredient in the catalog
func (c *Cache) All() ([]types.Ingredient, error) {
	c.Lock()
	defer c.Unlock()

	if !c.loaded {
		return nil, NewCacheNotInitializedError("list catalog ingredients")
	}

	ingredients := []types.Ingredient{}
	for _, category := range c.categories {
		ingredients = append(ingredients, c.byCategory[category]...)
	}

	return ingredients, nil
}

// ByCategory gets all ingredients in the given category
func (c *Cache) ByCategory(category string) ([]types.Ingredient, error) {
	c.Lock()
	defer c.Unlock()

	if !c.loaded {
		return nil, NewCacheNotInitializedError("list catalog ingredients by category")
	}

	if ingredients, ok := c.byCategory[category]; ok {
		result := make([]types.Ingredient, len(ingredients))
		copy(result, ingredients)
		return result, nil
	}

	return nil, NewCategoryNotFoundError(category)
}

// Get gets a single ingredient by its product ID
func (c *Cache) Get(productID string) (*types.Ingredient, error) {
	c.Lock()
	defer c.Unlock()

	if !c.loaded {
		return nil, NewCacheNotInitializedError("get catalog ingredient")
	}

	if ingredient, ok := c.byProductID[productID]; ok {
		return &ingredient, nil
	}

	return nil, NewIngredientNotFoundError(productID)
}
