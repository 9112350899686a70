package groups

import (
	"context"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/types"
)

// Service implements the group creation and join flows used during
// onboarding
type Service struct {
	groups      db.GroupProvider
	preferences db.PreferencesProvider
}

// NewService creates a new Service over the given providers
func NewService(groups db.GroupProvider, preferences db.PreferencesProvider) *Service {
	return &Service{
		groups:      groups,
		preferences: preferences,
	}
}

// Result bundles the group and membership produced by a successful
// create or join
type Result struct {
	Group      types.Group           `json:"group"`
	Membership types.GroupMembership `json:"membership"`
}

// EnsurePreferences makes sure a preferences row exists for the user
// so group relations have something to refer to, inserting a
// placeholder row if none exists. The placeholder values are replaced
// during onboarding
func (s *Service) EnsurePreferences(ctx context.Context, userID string) error {
	_, err := s.preferences.GetPreferences(ctx, userID)
	if err == nil {
		return nil
	}

	if _, ok := err.(*db.NotFoundError); !ok {
		return err
	}

	placeholder := types.UserPreferences{
		UserID:              userID,
		FirstName:           "Temp",
		LastName:            "User",
		Age:                 0,
		Location:            "",
		FamilySize:          types.FamilySize{},
		Allergies:           []string{},
		FoodsToAvoid:        []string{},
		OnboardingCompleted: false,
	}

	_, err = s.preferences.SavePreferences(ctx, placeholder)
	if err != nil {
		return NewProfileCreationError(userID, err)
	}

	return nil
}

// CreateGroupWithMembership creates a new group and automatically adds
// the creator as its first member. A nil description leaves the field
// unset
func (s *Service) CreateGroupWithMembership(ctx context.Context, name string, description *string, userID string) (*Result, error) {
	err := s.EnsurePreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	group := types.Group{
		ID:          ksuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	err = s.groups.CreateGroup(ctx, group)
	if err != nil {
		return nil, err
	}

	membership := types.GroupMembership{
		ID:       ksuid.New().String(),
		GroupID:  group.ID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	err = s.groups.CreateMembership(ctx, membership)
	if err != nil {
		return nil, err
	}

	return &Result{Group: group, Membership: membership}, nil
}

// JoinGroupWithValidation adds the user to an existing group after
// checking that the group exists and that the user holds no other
// membership
func (s *Service) JoinGroupWithValidation(ctx context.Context, groupID string, userID string) (*Result, error) {
	err := s.EnsurePreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		if _, ok := err.(*db.NotFoundError); ok {
			return nil, NewGroupNotFoundError(groupID)
		}

		return nil, err
	}

	existingMemberships, err := s.groups.GetMembershipsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(existingMemberships) > 0 {
		return nil, NewAlreadyMemberError(userID)
	}

	membership := types.GroupMembership{
		ID:       ksuid.New().String(),
		GroupID:  group.ID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	err = s.groups.CreateMembership(ctx, membership)
	if err != nil {
		return nil, err
	}

	return &Result{Group: *group, Membership: membership}, nil
}
