package ingredients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/pantrypal/pantrypal-api/auth"
	"github.com/pantrypal/pantrypal-api/catalog"
	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/types"
	"github.com/pantrypal/pantrypal-api/util"
)

// Routes creates a new Chi router with all of the routes for the
// ingredient catalog resource, at the root level
func Routes(database db.IngredientProvider, cache *catalog.Cache) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", GetAll(cache))
	router.Get("/categories", GetCategories(cache))
	router.Get("/{id}", GetSingle(cache))

	// Admin-only routes
	router.Group(func(r chi.Router) {
		// Ensure the user has access
		r.Use(auth.AdminAuthenticated)
		r.Patch("/{id}", Update(database))
	})
	return router
}

// GetAll gets all ingredients from the catalog cache, with optional
// search and category querystring params
func GetAll(cache *catalog.Cache) http.HandlerFunc {
	// Use a closure to inject the cache
	return func(w http.ResponseWriter, r *http.Request) {
		// See if we have search/category parameters,
		// which can be empty
		search := strings.ToLower(r.URL.Query().Get("search"))
		category := r.URL.Query().Get("category")

		var ingredients []types.Ingredient
		var err error
		if category != "" {
			ingredients, err = cache.ByCategory(category)
		} else {
			ingredients, err = cache.All()
		}
		if err != nil {
			util.Error(w, err)
			return
		}

		results := []types.Ingredient{}
		for _, ingredient := range ingredients {
			// Make sure the name passes a search if it was given
			if search != "" && !fuzzy.MatchNormalized(search, strings.ToLower(ingredient.Name)) {
				continue
			}

			results = append(results, ingredient)
		}

		total := len(results)
		results = paginate(results, r.URL.Query().Get("limit"),
			r.URL.Query().Get("offset"))

		// Return the list in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"ingredients": results,
			"total":       total,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// paginate applies optional limit/offset querystring values to the
// filtered results, ignoring values that do not parse
func paginate(results []types.Ingredient, limitRaw string, offsetRaw string) []types.Ingredient {
	if offsetRaw != "" {
		if offset, err := strconv.Atoi(offsetRaw); err == nil && offset > 0 {
			if offset >= len(results) {
				return []types.Ingredient{}
			}
			results = results[offset:]
		}
	}

	if limitRaw != "" {
		if limit, err := strconv.Atoi(limitRaw); err == nil && limit >= 0 && limit < len(results) {
			results = results[:limit]
		}
	}

	return results
}

// GetCategories gets the sorted list of category names in the catalog
func GetCategories(cache *catalog.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := cache.Categories()
		if err != nil {
			util.Error(w, err)
			return
		}

		jsonResponse, err := json.Marshal(map[string]interface{}{
			"categories": categories,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// GetSingle gets a single ingredient from the cache by its product ID
func GetSingle(cache *catalog.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		ingredient, err := cache.Get(id)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the single ingredient as the top-level JSON
		jsonResponse, err := json.Marshal(ingredient)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// Update applies a partial update to an ingredient's catalog row.
// The cache picks the change up on its next periodic refresh
func Update(database db.IngredientProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		partial := make(map[string]interface{})
		err := json.NewDecoder(r.Body).Decode(&partial)
		if err != nil {
			util.Error(w, err)
			return
		}

		updated, err := database.UpdateIngredient(r.Context(), id, partial)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the updated ingredient as the top-level JSON
		jsonResponse, err := json.Marshal(updated)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}
