package catalog

import (
	"reflect"
	"testing"

	"github.com/pantrypal/pantrypal-api/types"
)

func testIngredients() []types.Ingredient {
	return []types.Ingredient{
		{ProductID: "p1", Name: "Rice", Category: "Grains"},
		{ProductID: "p2", Name: "Beans", Category: "Canned"},
		{ProductID: "p3", Name: "Oats", Category: "Grains"},
	}
}

func TestCacheBeforeLoad(t *testing.T) {
	cache := &Cache{}

	if _, err := cache.Categories(); err == nil {
		t.Error("expected an error listing categories before load")
	}
	if _, err := cache.All(); err == nil {
		t.Error("expected an error listing ingredients before load")
	}
	if _, err := cache.Get("p1"); err == nil {
		t.Error("expected an error getting an ingredient before load")
	}
}

func TestCacheCategories(t *testing.T) {
	cache := &Cache{}
	cache.Load(testIngredients())

	categories, err := cache.Categories()
	if err != nil {
		t.Fatalf("categories failed: %s", err)
	}
	if !reflect.DeepEqual(categories, []string{"Canned", "Grains"}) {
		t.Errorf("expected sorted categories, got %v", categories)
	}
}

func TestCacheByCategory(t *testing.T) {
	cache := &Cache{}
	cache.Load(testIngredients())

	grains, err := cache.ByCategory("Grains")
	if err != nil {
		t.Fatalf("by category failed: %s", err)
	}
	if len(grains) != 2 {
		t.Errorf("expected 2 grains, got %d", len(grains))
	}

	_, err = cache.ByCategory("Dairy")
	if _, ok := err.(*CategoryNotFoundError); !ok {
		t.Errorf("expected CategoryNotFoundError for an unknown category, got %v", err)
	}
}

func TestCacheGet(t *testing.T) {
	cache := &Cache{}
	cache.Load(testIngredients())

	ingredient, err := cache.Get("p2")
	if err != nil {
		t.Fatalf("get failed: %s", err)
	}
	if ingredient.Name != "Beans" {
		t.Errorf("unexpected ingredient '%s'", ingredient.Name)
	}

	if _, err := cache.Get("missing"); err == nil {
		t.Error("expected an error for an unknown product ID")
	}
}

func TestCacheReload(t *testing.T) {
	cache := &Cache{}
	cache.Load(testIngredients())

	// A reload replaces the contents wholesale
	cache.Load([]types.Ingredient{
		{ProductID: "p9", Name: "Pasta", Category: "Grains"},
	})

	all, err := cache.All()
	if err != nil {
		t.Fatalf("all failed: %s", err)
	}
	if len(all) != 1 || all[0].ProductID != "p9" {
		t.Errorf("expected reloaded contents, got %v", all)
	}
}
