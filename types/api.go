package types

import "time"

// ErrorResponse is the generic error JSON shape returned by the API
type ErrorResponse struct {
	Message string `json:"message"`
}

// Session is the JSON shape that is used to track authenticated sessions
type Session struct {
	UserID       string    `json:"user_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAfter *int64    `json:"expires_after"`
}

// Permissions contains the struct that is encoded in each JWT
type Permissions struct {
	AdminAccess bool `json:"admin_access" bson:"admin_access"`
}
