package groups

import (
	"context"
	"testing"

	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/types"
)

type fakeGroupProvider struct {
	groups      map[string]types.Group
	memberships []types.GroupMembership
}

func newFakeGroupProvider() *fakeGroupProvider {
	return &fakeGroupProvider{
		groups: map[string]types.Group{},
	}
}

func (f *fakeGroupProvider) GetGroup(ctx context.Context, id string) (*types.Group, error) {
	if group, ok := f.groups[id]; ok {
		found := group
		return &found, nil
	}
	return nil, db.NewNotFoundError(id)
}

func (f *fakeGroupProvider) CreateGroup(ctx context.Context, group types.Group) error {
	f.groups[group.ID] = group
	return nil
}

func (f *fakeGroupProvider) CreateMembership(ctx context.Context, membership types.GroupMembership) error {
	f.memberships = append(f.memberships, membership)
	return nil
}

func (f *fakeGroupProvider) GetMembershipsForUser(ctx context.Context, userID string) ([]types.GroupMembership, error) {
	memberships := []types.GroupMembership{}
	for _, membership := range f.memberships {
		if membership.UserID == userID {
			memberships = append(memberships, membership)
		}
	}
	return memberships, nil
}

func (f *fakeGroupProvider) GetGroupsForUser(ctx context.Context, userID string) ([]types.Group, error) {
	userGroups := []types.Group{}
	for _, membership := range f.memberships {
		if membership.UserID == userID {
			if group, ok := f.groups[membership.GroupID]; ok {
				userGroups = append(userGroups, group)
			}
		}
	}
	return userGroups, nil
}

type fakePreferencesProvider struct {
	rows map[string]types.UserPreferences
}

func newFakePreferencesProvider() *fakePreferencesProvider {
	return &fakePreferencesProvider{
		rows: map[string]types.UserPreferences{},
	}
}

func (f *fakePreferencesProvider) GetPreferences(ctx context.Context, userID string) (*types.UserPreferences, error) {
	if row, ok := f.rows[userID]; ok {
		found := row
		return &found, nil
	}
	return nil, db.NewNotFoundError(userID)
}

func (f *fakePreferencesProvider) SavePreferences(ctx context.Context, preferences types.UserPreferences) (*types.UserPreferences, error) {
	f.rows[preferences.UserID] = preferences
	saved := preferences
	return &saved, nil
}

func (f *fakePreferencesProvider) UpdatePreferenceLocation(ctx context.Context, userID string, location string) error {
	row, ok := f.rows[userID]
	if !ok {
		return db.NewNotFoundError(userID)
	}
	row.Location = location
	f.rows[userID] = row
	return nil
}

func TestCreateGroupWithMembership(t *testing.T) {
	groupProvider := newFakeGroupProvider()
	preferences := newFakePreferencesProvider()
	service := NewService(groupProvider, preferences)

	description := "Weekly pickups for the Smith household"
	result, err := service.CreateGroupWithMembership(context.Background(), "The Smiths", &description, "user-1")
	if err != nil {
		t.Fatalf("create failed: %s", err)
	}

	if result.Group.Name != "The Smiths" {
		t.Errorf("unexpected group name '%s'", result.Group.Name)
	}
	if result.Group.Description == nil || *result.Group.Description != description {
		t.Error("expected the description to be stored on the group")
	}
	if result.Membership.GroupID != result.Group.ID {
		t.Error("expected the membership to reference the created group")
	}
	if result.Membership.UserID != "user-1" {
		t.Errorf("unexpected membership user '%s'", result.Membership.UserID)
	}
	if len(groupProvider.memberships) != 1 {
		t.Errorf("expected 1 stored membership, got %d", len(groupProvider.memberships))
	}
}

func TestCreateGroupInsertsPlaceholderProfile(t *testing.T) {
	groupProvider := newFakeGroupProvider()
	preferences := newFakePreferencesProvider()
	service := NewService(groupProvider, preferences)

	_, err := service.CreateGroupWithMembership(context.Background(), "The Smiths", nil, "user-1")
	if err != nil {
		t.Fatalf("create failed: %s", err)
	}

	row, ok := preferences.rows["user-1"]
	if !ok {
		t.Fatal("expected a placeholder preference row to be created")
	}
	if row.FirstName != "Temp" || row.LastName != "User" {
		t.Errorf("unexpected placeholder name '%s %s'", row.FirstName, row.LastName)
	}
	if row.OnboardingCompleted {
		t.Error("expected the placeholder row to be incomplete")
	}
}

func TestEnsurePreferencesKeepsExistingRow(t *testing.T) {
	preferences := newFakePreferencesProvider()
	preferences.rows["user-1"] = types.UserPreferences{
		UserID:    "user-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	service := NewService(newFakeGroupProvider(), preferences)

	err := service.EnsurePreferences(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ensure failed: %s", err)
	}

	row := preferences.rows["user-1"]
	if row.FirstName != "Ada" {
		t.Errorf("expected the existing row to be left untouched, got '%s'", row.FirstName)
	}
}

func TestJoinGroupWithValidation(t *testing.T) {
	groupProvider := newFakeGroupProvider()
	groupProvider.groups["group-1"] = types.Group{ID: "group-1", Name: "The Smiths"}
	service := NewService(groupProvider, newFakePreferencesProvider())

	result, err := service.JoinGroupWithValidation(context.Background(), "group-1", "user-1")
	if err != nil {
		t.Fatalf("join failed: %s", err)
	}
	if result.Group.ID != "group-1" {
		t.Errorf("unexpected group '%s'", result.Group.ID)
	}
	if len(groupProvider.memberships) != 1 {
		t.Errorf("expected 1 membership, got %d", len(groupProvider.memberships))
	}
}

func TestJoinMissingGroup(t *testing.T) {
	service := NewService(newFakeGroupProvider(), newFakePreferencesProvider())

	_, err := service.JoinGroupWithValidation(context.Background(), "missing", "user-1")
	if _, ok := err.(*GroupNotFoundError); !ok {
		t.Fatalf("expected GroupNotFoundError, got %v", err)
	}
	if err.Error() != "Group not found" {
		t.Errorf("unexpected message '%s'", err.Error())
	}
}

func TestJoinWhileAlreadyMember(t *testing.T) {
	groupProvider := newFakeGroupProvider()
	groupProvider.groups["group-1"] = types.Group{ID: "group-1", Name: "The Smiths"}
	groupProvider.groups["group-2"] = types.Group{ID: "group-2", Name: "The Does"}
	groupProvider.memberships = []types.GroupMembership{
		{ID: "m-1", GroupID: "group-1", UserID: "user-1"},
	}
	service := NewService(groupProvider, newFakePreferencesProvider())

	_, err := service.JoinGroupWithValidation(context.Background(), "group-2", "user-1")
	if _, ok := err.(*AlreadyMemberError); !ok {
		t.Fatalf("expected AlreadyMemberError, got %v", err)
	}
	if err.Error() != "User is already a member of a group" {
		t.Errorf("unexpected message '%s'", err.Error())
	}

	// The failed join must not have inserted a membership
	if len(groupProvider.memberships) != 1 {
		t.Errorf("expected memberships to be unchanged, got %d", len(groupProvider.memberships))
	}
}
