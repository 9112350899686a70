package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"

	"github.com/pantrypal/pantrypal-api/auth"
	"github.com/pantrypal/pantrypal-api/types"
	"github.com/pantrypal/pantrypal-api/util"
)

// Routes creates a new Chi router with all of the routes for the auth flow
func Routes(jwtManager *auth.JWTManager) *chi.Mux {
	// Try to see how long issued tokens should live
	var tokenExpirationHours *int64 = nil
	if value, ok := os.LookupEnv("AUTH_JWT_TOKEN_EXPIRES_AFTER"); ok {
		valueInt, err := strconv.Atoi(value)
		if err == nil {
			valueInt64 := int64(valueInt)
			tokenExpirationHours = &valueInt64
		}
	}

	router := chi.NewRouter()

	// Public routes
	router.Group(func(r chi.Router) {
		r.Post("/login", Login(jwtManager, tokenExpirationHours))
	})

	// Protect the /session route and validate JWTs
	router.Group(func(r chi.Router) {
		// Seek, verify and validate JWT tokens,
		// sending appropriate status codes upon failure.
		r.Use(jwtManager.Authenticated())

		r.Get("/session", Session())
	})

	return router
}

// loginRequest is the identity asserted by the upstream auth provider
type loginRequest struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Login exchanges an upstream identity for a signed session token.
// Admin access is resolved from the configured allow-list
func Login(jwtManager *auth.JWTManager, tokenExpirationHours *int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var login loginRequest
		err := json.NewDecoder(r.Body).Decode(&login)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		login.UserID = strings.TrimSpace(login.UserID)
		if login.UserID == "" {
			util.ErrorWithCode(w, errors.New("login user_id cannot be empty"),
				http.StatusBadRequest)
			return
		}

		session := types.Session{
			UserID:       login.UserID,
			FirstName:    login.FirstName,
			LastName:     login.LastName,
			IssuedAt:     time.Now().UTC(),
			ExpiresAfter: tokenExpirationHours,
		}
		permissions := jwtManager.PermissionsForUser(login.UserID)

		token := jwtManager.IssueJWT(session, permissions)
		signed, err := jwtManager.SignToken(token)
		if err != nil {
			util.Error(w, err)
			return
		}

		jsonResponse, err := json.Marshal(map[string]interface{}{
			"token":   signed,
			"session": session,
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

// Session returns the session encoded in the presented token
func Session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		jsonResponse, err := json.Marshal(session)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}
