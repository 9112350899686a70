package onboarding

import (
	"fmt"
	"strings"

	"github.com/pantrypal/pantrypal-api/types"
)

// Group type choices for the first onboarding step
const (
	GroupTypeCreate = "create"
	GroupTypeJoin   = "join"
)

var validAllergies = map[string]struct{}{
	"dairy-free":  {},
	"egg-free":    {},
	"gluten-free": {},
}

var validFoodsToAvoid = map[string]struct{}{
	"alcohol": {},
	"pork":    {},
	"fish":    {},
}

// Draft is the accumulating set of user preferences built up
// incrementally across the onboarding steps before a single persist.
// The allergy and foods-to-avoid collections have set semantics:
// adds are no-ops when the entry is present and removes are no-ops
// when it is absent
type Draft struct {
	GroupType           string           `json:"group_type"`
	GroupName           string           `json:"group_name"`
	GroupID             string           `json:"group_id"`
	Location            string           `json:"location"`
	FirstName           string           `json:"first_name"`
	LastName            string           `json:"last_name"`
	FamilySize          types.FamilySize `json:"family_size"`
	Age                 int              `json:"age"`
	Allergies           []string         `json:"allergies"`
	FoodsToAvoid        []string         `json:"foods_to_avoid"`
	OnboardingCompleted bool             `json:"onboarding_completed"`
}

// NewDraft creates an empty draft with zero/empty defaults
func NewDraft() *Draft {
	return &Draft{
		Allergies:    []string{},
		FoodsToAvoid: []string{},
	}
}

// SetGroupChoice records the group-type decision from the first step.
// GroupName is the name for a new group; groupID targets an existing
// group to join
func (d *Draft) SetGroupChoice(groupType string, groupName string, groupID string) error {
	if groupType != GroupTypeCreate && groupType != GroupTypeJoin {
		return fmt.Errorf("unknown group type '%s'", groupType)
	}

	d.GroupType = groupType
	d.GroupName = groupName
	d.GroupID = groupID
	return nil
}

// SetLocation records the free-text pickup address
func (d *Draft) SetLocation(location string) {
	d.Location = location
}

// SetName records the user's first and last name
func (d *Draft) SetName(first string, last string) {
	d.FirstName = first
	d.LastName = last
}

// SetFamilySize records the household breakdown;
// every bracket count must be non-negative
func (d *Draft) SetFamilySize(familySize types.FamilySize) error {
	if familySize.Adults < 0 || familySize.Teenagers < 0 ||
		familySize.Children < 0 || familySize.Infants < 0 {
		return fmt.Errorf("family size counts cannot be negative")
	}

	d.FamilySize = familySize
	return nil
}

// SetAge records the user's age
func (d *Draft) SetAge(age int) error {
	if age < 0 {
		return fmt.Errorf("age cannot be negative")
	}

	d.Age = age
	return nil
}

// AddAllergy adds an allergy to the set; no-op if already present
func (d *Draft) AddAllergy(allergy string) error {
	if _, ok := validAllergies[allergy]; !ok {
		return fmt.Errorf("unknown allergy '%s'", allergy)
	}

	if !contains(d.Allergies, allergy) {
		d.Allergies = append(d.Allergies, allergy)
	}
	return nil
}

// RemoveAllergy removes an allergy from the set; no-op if absent
func (d *Draft) RemoveAllergy(allergy string) {
	d.Allergies = remove(d.Allergies, allergy)
}

// AddFoodToAvoid adds a food to the avoid set; no-op if already present
func (d *Draft) AddFoodToAvoid(food string) error {
	if _, ok := validFoodsToAvoid[food]; !ok {
		return fmt.Errorf("unknown food to avoid '%s'", food)
	}

	if !contains(d.FoodsToAvoid, food) {
		d.FoodsToAvoid = append(d.FoodsToAvoid, food)
	}
	return nil
}

// RemoveFoodToAvoid removes a food from the avoid set; no-op if absent
func (d *Draft) RemoveFoodToAvoid(food string) {
	d.FoodsToAvoid = remove(d.FoodsToAvoid, food)
}

// FullName joins the trimmed first and last names
func (d *Draft) FullName() string {
	first := strings.TrimSpace(d.FirstName)
	last := strings.TrimSpace(d.LastName)
	if first == "" && last == "" {
		return ""
	}
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}

// TotalFamilySize sums the four household brackets
func (d *Draft) TotalFamilySize() int {
	return d.FamilySize.Total()
}

// Preferences builds the full preference row from the accumulated
// draft for the given user
func (d *Draft) Preferences(userID string) types.UserPreferences {
	return types.UserPreferences{
		UserID:              userID,
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		Age:                 d.Age,
		Location:            d.Location,
		FamilySize:          d.FamilySize,
		Allergies:           append([]string{}, d.Allergies...),
		FoodsToAvoid:        append([]string{}, d.FoodsToAvoid...),
		OnboardingCompleted: true,
	}
}

// snapshot returns a value copy with the selection slices detached so
// the copy cannot alias later draft mutations
func (d *Draft) snapshot() Draft {
	copied := *d
	copied.Allergies = append([]string{}, d.Allergies...)
	copied.FoodsToAvoid = append([]string{}, d.FoodsToAvoid...)
	return copied
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func remove(values []string, target string) []string {
	filtered := values[:0]
	for _, value := range values {
		if value != target {
			filtered = append(filtered, value)
		}
	}
	return filtered
}
