package types

import "time"

// Group is the document stored for a pickup-sharing group
type Group struct {
	ID          string    `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Description *string   `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// GroupMembership links a user to a group.
// The join flow enforces that a user holds at most one membership
type GroupMembership struct {
	ID       string    `json:"id" bson:"id"`
	GroupID  string    `json:"group_id" bson:"group_id"`
	UserID   string    `json:"user_id" bson:"user_id"`
	JoinedAt time.Time `json:"joined_at" bson:"joined_at"`
}
