package maps

import "fmt"

// Location error codes, mirroring the failure taxonomy of the
// location resolution flow
const (
	CodeNoSession        = "NO_SESSION"
	CodeNoPreferences    = "NO_PREFERENCES"
	CodeNoLocation       = "NO_LOCATION"
	CodeServerError      = "SERVER_ERROR"
	CodeNetworkError     = "NETWORK_ERROR"
	CodeGeocodingError   = "GEOCODING_ERROR"
	CodeAPIKeyError      = "API_KEY_ERROR"
	CodePermissionDenied = "PERMISSION_DENIED"
)

// LocationError is an error used to encode a failure while resolving
// a search origin, tagged with one of the location error codes
type LocationError struct {
	Code    string
	Message string
}

// NewLocationError constructs a new LocationError
func NewLocationError(code string, message string) *LocationError {
	return &LocationError{
		Code:    code,
		Message: message,
	}
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorCode extracts the location error code from an error,
// or returns the empty string if it isn't a LocationError
func ErrorCode(err error) string {
	if locationError, ok := err.(*LocationError); ok {
		return locationError.Code
	}

	return ""
}
