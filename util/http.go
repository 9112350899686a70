package util

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pantrypal/pantrypal-api/catalog"
	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/groups"
	"github.com/pantrypal/pantrypal-api/list"
	"github.com/pantrypal/pantrypal-api/maps"
	"github.com/pantrypal/pantrypal-api/types"
)

// ResponseCodeFromError resolves a status code from a typed error so
// that callers can surface failures instead of collapsing everything
// into internal server errors
func ResponseCodeFromError(err error) int {
	switch err.(type) {
	case *db.NotFoundError, *list.ItemNotFoundError,
		*groups.GroupNotFoundError, *catalog.CategoryNotFoundError,
		*catalog.IngredientNotFoundError:
		return http.StatusNotFound
	case *db.DuplicateIDError, *groups.AlreadyMemberError:
		return http.StatusConflict
	case *list.InvalidQuantityError:
		return http.StatusBadRequest
	case *catalog.CacheNotInitializedError:
		return http.StatusServiceUnavailable
	}

	switch maps.ErrorCode(err) {
	case maps.CodeNoSession:
		return http.StatusUnauthorized
	case maps.CodePermissionDenied:
		return http.StatusForbidden
	case maps.CodeNoPreferences, maps.CodeNoLocation:
		return http.StatusNotFound
	case maps.CodeGeocodingError, maps.CodeAPIKeyError, maps.CodeNetworkError:
		return http.StatusBadGateway
	case maps.CodeServerError:
		return http.StatusInternalServerError
	}

	return http.StatusInternalServerError
}

// Error creates a standardized error response
func Error(w http.ResponseWriter, originalError error) {
	ErrorWithCode(w, originalError, ResponseCodeFromError(originalError))
}

// ErrorWithCode creates a standardized error response with a status code
func ErrorWithCode(w http.ResponseWriter, originalError error, statusCode int) {
	response := types.ErrorResponse{
		Message: fmt.Sprint(originalError),
	}

	jsonResponse, err := json.Marshal(response)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(statusCode)
	w.Write(jsonResponse)
}
