package groups

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/pantrypal/pantrypal-api/auth"
	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/groups"
	"github.com/pantrypal/pantrypal-api/util"
)

// Routes creates a new Chi router with all of the routes for the
// group resource, at the root level
func Routes(service *groups.Service, database db.GroupProvider) *chi.Mux {
	router := chi.NewRouter()
	router.Post("/", Create(service))
	router.Get("/mine", GetMine(database))
	router.Get("/{id}", GetSingle(database))
	router.Post("/{id}/join", Join(service))
	return router
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create creates a new group and adds the authenticated user as its
// first member
func Create(service *groups.Service) http.HandlerFunc {
	// Use a closure to inject the group service
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		var create createGroupRequest
		err := json.NewDecoder(r.Body).Decode(&create)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		create.Name = strings.TrimSpace(create.Name)
		if create.Name == "" {
			util.ErrorWithCode(w, errors.New("group name cannot be empty"),
				http.StatusBadRequest)
			return
		}

		var description *string
		if trimmed := strings.TrimSpace(create.Description); trimmed != "" {
			description = &trimmed
		}

		result, err := service.CreateGroupWithMembership(r.Context(), create.Name, description, session.UserID)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the group and membership as the top-level JSON
		jsonResponse, err := json.Marshal(result)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write(jsonResponse)
	}
}

// Join adds the authenticated user to an existing group, rejecting the
// request when the group does not exist or the user already belongs
// to one
func Join(service *groups.Service) http.HandlerFunc {
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

		result, err := service.JoinGroupWithValidation(r.Context(), id, session.UserID)
		if err != nil {
			util.Error(w, err)
			return
		}

		jsonResponse, err := json.Marshal(result)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// GetSingle gets a single group from the database by its ID
func GetSingle(database db.GroupProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			util.ErrorWithCode(w, errors.New("the URL parameter is empty"),
				http.StatusBadRequest)
			return
		}

		group, err := database.GetGroup(r.Context(), id)
		if err != nil {
			util.Error(w, err)
			return
		}

		jsonResponse, err := json.Marshal(group)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// GetMine gets the groups the authenticated user belongs to
func GetMine(database db.GroupProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		userGroups, err := database.GetGroupsForUser(r.Context(), session.UserID)
		if err != nil {
			util.Error(w, err)
			return
		}

		// Return the list in a JSON object
		jsonResponse, err := json.Marshal(map[string]interface{}{
			"groups": userGroups,
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
