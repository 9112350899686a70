package preferences

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/pantrypal/pantrypal-api/auth"
	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/types"
	"github.com/pantrypal/pantrypal-api/util"
)

// Routes creates a new Chi router with all of the routes for the
// user preferences resource, at the root level
func Routes(database db.PreferencesProvider) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", Get(database))
	router.Put("/", Save(database))
	router.Patch("/location", UpdateLocation(database))
	return router
}

// Get gets the authenticated user's preference row
func Get(database db.PreferencesProvider) http.HandlerFunc {
	// Use a closure to inject the database provider
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		preferences, err := database.GetPreferences(r.Context(), session.UserID)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the preferences as the top-level JSON
		jsonResponse, err := json.Marshal(preferences)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// Save upserts the authenticated user's whole preference row.
// The user ID always comes from the session, never the payload
func Save(database db.PreferencesProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		var preferences types.UserPreferences
		err := json.NewDecoder(r.Body).Decode(&preferences)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		preferences.UserID = session.UserID
		saved, err := database.SavePreferences(r.Context(), preferences)
		if err != nil {
			util.Error(w, err)
			return
		}

		jsonResponse, err := json.Marshal(saved)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

type updateLocationRequest struct {
	Location string `json:"location"`
}

// UpdateLocation patches only the location column of the preference
// row, leaving the rest of the stored values untouched
func UpdateLocation(database db.PreferencesProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		var update updateLocationRequest
		err := json.NewDecoder(r.Body).Decode(&update)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		if update.Location == "" {
			util.ErrorWithCode(w, errors.New("location cannot be empty"),
				http.StatusBadRequest)
			return
		}

		err = database.UpdatePreferenceLocation(r.Context(), session.UserID, update.Location)
		if err != nil {
			util.Error(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
