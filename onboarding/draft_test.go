package onboarding

import (
	"reflect"
	"testing"

	"github.com/pantrypal/pantrypal-api/types"
)

func TestSetGroupChoice(t *testing.T) {
	cases := []struct {
		name      string
		groupType string
		wantError bool
	}{
		{name: "create", groupType: GroupTypeCreate},
		{name: "join", groupType: GroupTypeJoin},
		{name: "unknown rejected", groupType: "merge", wantError: true},
		{name: "empty rejected", groupType: "", wantError: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := NewDraft()
			err := draft.SetGroupChoice(tc.groupType, "My Group", "group-1")
			if tc.wantError {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if draft.GroupType != tc.groupType {
				t.Errorf("expected group type '%s', got '%s'", tc.groupType, draft.GroupType)
			}
		})
	}
}

func TestAllergySetSemantics(t *testing.T) {
	draft := NewDraft()

	if err := draft.AddAllergy("dairy-free"); err != nil {
		t.Fatalf("add failed: %s", err)
	}
	if err := draft.AddAllergy("dairy-free"); err != nil {
		t.Fatalf("duplicate add failed: %s", err)
	}
	if !reflect.DeepEqual(draft.Allergies, []string{"dairy-free"}) {
		t.Errorf("expected duplicate add to be a no-op, got %v", draft.Allergies)
	}

	if err := draft.AddAllergy("peanut-free"); err == nil {
		t.Error("expected unknown allergy to be rejected")
	}

	draft.RemoveAllergy("dairy-free")
	draft.RemoveAllergy("dairy-free")
	if len(draft.Allergies) != 0 {
		t.Errorf("expected empty set after removal, got %v", draft.Allergies)
	}
}

func TestFoodsToAvoidSetSemantics(t *testing.T) {
	draft := NewDraft()

	for _, food := range []string{"alcohol", "pork", "fish"} {
		if err := draft.AddFoodToAvoid(food); err != nil {
			t.Fatalf("add '%s' failed: %s", food, err)
		}
	}
	if len(draft.FoodsToAvoid) != 3 {
		t.Fatalf("expected 3 foods, got %d", len(draft.FoodsToAvoid))
	}

	if err := draft.AddFoodToAvoid("shellfish"); err == nil {
		t.Error("expected unknown food to be rejected")
	}

	draft.RemoveFoodToAvoid("pork")
	if !reflect.DeepEqual(draft.FoodsToAvoid, []string{"alcohol", "fish"}) {
		t.Errorf("unexpected set after removal: %v", draft.FoodsToAvoid)
	}
}

func TestSetFamilySize(t *testing.T) {
	draft := NewDraft()

	err := draft.SetFamilySize(types.FamilySize{Adults: 2, Teenagers: 1, Children: 3, Infants: 1})
	if err != nil {
		t.Fatalf("set failed: %s", err)
	}
	if draft.TotalFamilySize() != 7 {
		t.Errorf("expected total 7, got %d", draft.TotalFamilySize())
	}

	err = draft.SetFamilySize(types.FamilySize{Adults: -1})
	if err == nil {
		t.Error("expected negative count to be rejected")
	}
	if draft.TotalFamilySize() != 7 {
		t.Errorf("expected rejected set to leave the draft untouched, got total %d", draft.TotalFamilySize())
	}
}

func TestSetAge(t *testing.T) {
	draft := NewDraft()

	if err := draft.SetAge(34); err != nil {
		t.Fatalf("set failed: %s", err)
	}
	if err := draft.SetAge(-1); err == nil {
		t.Error("expected negative age to be rejected")
	}
	if draft.Age != 34 {
		t.Errorf("expected age 34 retained, got %d", draft.Age)
	}
}

func TestFullName(t *testing.T) {
	cases := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{name: "both", first: "Ada", last: "Lovelace", want: "Ada Lovelace"},
		{name: "first only", first: "Ada", last: "", want: "Ada"},
		{name: "last only", first: "", last: "Lovelace", want: "Lovelace"},
		{name: "neither", first: "", last: "", want: ""},
		{name: "whitespace trimmed", first: "  Ada ", last: " Lovelace ", want: "Ada Lovelace"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := NewDraft()
			draft.SetName(tc.first, tc.last)
			if got := draft.FullName(); got != tc.want {
				t.Errorf("expected '%s', got '%s'", tc.want, got)
			}
		})
	}
}

func TestPreferencesSnapshot(t *testing.T) {
	draft := NewDraft()
	draft.SetName("Ada", "Lovelace")
	draft.SetLocation("123 Main St")
	if err := draft.SetAge(34); err != nil {
		t.Fatal(err)
	}
	if err := draft.AddAllergy("gluten-free"); err != nil {
		t.Fatal(err)
	}

	preferences := draft.Preferences("user-1")

	if preferences.UserID != "user-1" {
		t.Errorf("expected user ID 'user-1', got '%s'", preferences.UserID)
	}
	if !preferences.OnboardingCompleted {
		t.Error("expected the built row to be marked completed")
	}
	if draft.OnboardingCompleted {
		t.Error("building the row must not flip the draft's own flag")
	}

	// The snapshot must not alias the draft's slices
	preferences.Allergies[0] = "mutated"
	if draft.Allergies[0] != "gluten-free" {
		t.Error("expected the snapshot to copy the allergy slice")
	}
}
