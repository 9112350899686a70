package lists

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/pantrypal/pantrypal-api/auth"
	"github.com/pantrypal/pantrypal-api/types"
	"github.com/pantrypal/pantrypal-api/util"
)

// Routes creates a new Chi router with all of the routes for a single
// list resource (either the grocery list or the wishlist), at the root
// level. Both lists share the same surface; their divergent increment
// behavior lives in the store factory wired into the registry
func Routes(stores *Stores) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", Get(stores))
	router.Post("/items", AddItem(stores))
	router.Patch("/items/{id}", UpdateItemQuantity(stores))
	router.Delete("/items/{id}", RemoveItem(stores))
	return router
}

// Get loads the authenticated user's list from the database and
// returns the normalized items
func Get(stores *Stores) http.HandlerFunc {
	// Use a closure to inject the store registry
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		store := stores.ForUser(session.UserID)
		err := store.Load(r.Context(), session.UserID)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the list in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"items": store.Items(),
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

// AddItem adds an item to the authenticated user's list, folding
// duplicate adds into a quantity increment on the existing item
func AddItem(stores *Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		var create types.ListItemCreate
		err := json.NewDecoder(r.Body).Decode(&create)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		if create.ProductID == "" {
			util.ErrorWithCode(w, errors.New("item product_id cannot be empty"),
				http.StatusBadRequest)
			return
		}

		store := stores.ForUser(session.UserID)
		err = store.Add(r.Context(), session.UserID, create)
		if err != nil {
			util.Error(w, err)
			return
		}

		jsonResponse, err := json.Marshal(map[string]interface{}{
			"items": store.Items(),
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

type updateQuantityRequest struct {
	Quantity string `json:"quantity"`
}

// UpdateItemQuantity sets the quantity of a single list item.
// A quantity of zero or less removes the item instead
func UpdateItemQuantity(stores *Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		var update updateQuantityRequest
		err := json.NewDecoder(r.Body).Decode(&update)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		store := stores.ForUser(session.UserID)
		err = store.EnsureLoaded(r.Context(), session.UserID)
		if err != nil {
			util.Error(w, err)
			return
		}

		err = store.UpdateQuantity(r.Context(), id, update.Quantity)
		if err != nil {
			util.Error(w, err)
			return
		}

		jsonResponse, err := json.Marshal(map[string]interface{}{
			"items": store.Items(),
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

// RemoveItem deletes a single item from the authenticated user's list
func RemoveItem(stores *Stores) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		store := stores.ForUser(session.UserID)
		err := store.EnsureLoaded(r.Context(), session.UserID)
		if err != nil {
			util.Error(w, err)
			return
		}

		err = store.Remove(r.Context(), id)
		if err != nil {
			util.Error(w, err)
			return
		}

		jsonResponse, err := json.Marshal(map[string]interface{}{
			"items": store.Items(),
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
