package groups

import "fmt"

// GroupNotFoundError is an error used to encode when the target group
// of a join does not exist
type GroupNotFoundError struct {
	GroupID string
}

// NewGroupNotFoundError constructs a new GroupNotFoundError
func NewGroupNotFoundError(groupID string) *GroupNotFoundError {
	return &GroupNotFoundError{
		GroupID: groupID,
	}
}

func (e *GroupNotFoundError) Error() string {
	return "Group not found"
}

// AlreadyMemberError is an error used to encode when a user attempts
// to join a group while already holding a membership.
// A user may belong to at most one group; that invariant is enforced
// by the join flow rather than the schema
type AlreadyMemberError struct {
	UserID string
}

// NewAlreadyMemberError constructs a new AlreadyMemberError
func NewAlreadyMemberError(userID string) *AlreadyMemberError {
	return &AlreadyMemberError{
		UserID: userID,
	}
}

func (e *AlreadyMemberError) Error() string {
	return "User is already a member of a group"
}

// ProfileCreationError is an error used to encode when the placeholder
// preferences row backing the group relation could not be created
type ProfileCreationError struct {
	UserID string
	Cause  error
}

// NewProfileCreationError constructs a new ProfileCreationError
func NewProfileCreationError(userID string, cause error) *ProfileCreationError {
	return &ProfileCreationError{
		UserID: userID,
		Cause:  cause,
	}
}

func (e *ProfileCreationError) Error() string {
	return fmt.Sprintf("Failed to create user profile: %s", e.Cause)
}
