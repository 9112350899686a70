package onboarding

import (
	"context"
	"fmt"
	"sync"

	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/groups"
)

// Step identifies one of the nine linear onboarding steps
type Step int

// The onboarding flow advances one step at a time with no skipping
// or branching
const (
	StepGroupType Step = iota
	StepLocation
	StepName
	StepFamilySize
	StepAge
	StepAllergies
	StepFoodsToAvoid
	StepReview
	StepSuccess
)

var stepNames = []string{
	"group-type",
	"location",
	"name",
	"family-size",
	"age",
	"allergies",
	"foods-to-avoid",
	"review",
	"success",
}

func (s Step) String() string {
	if s < StepGroupType || s > StepSuccess {
		return fmt.Sprintf("unknown(%d)", int(s))
	}
	return stepNames[s]
}

// Wizard is the strictly linear onboarding state machine for a single
// user. It mutates its draft per step and performs exactly one remote
// preference persist at the end; the only other remote side effect is
// the group create/join on leaving the first step.
//
// The internal lock serializes every operation, including the draft
// mutations issued through UpdateDraft, so one instance can back
// overlapping requests for the same user
type Wizard struct {
	mu          sync.Mutex
	userID      string
	draft       *Draft
	step        Step
	groups      *groups.Service
	preferences db.PreferencesProvider
	groupResult *groups.Result
}

// NewWizard creates a wizard at the first step with an empty draft
func NewWizard(userID string, groupService *groups.Service, preferences db.PreferencesProvider) *Wizard {
	return &Wizard{
		userID:      userID,
		draft:       NewDraft(),
		step:        StepGroupType,
		groups:      groupService,
		preferences: preferences,
	}
}

// Step returns the current step
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.step
}

// Draft returns a copy of the accumulating preference draft with the
// selection slices detached
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.draft.snapshot()
}

// UpdateDraft runs fn against the live draft and the step it applies
// to, serialized against every other wizard operation
func (w *Wizard) UpdateDraft(fn func(step Step, draft *Draft) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return fn(w.step, w.draft)
}

// GroupResult returns the group and membership created or joined at
// the first step, once that step has completed
func (w *Wizard) GroupResult() *groups.Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.groupResult
}

// Next advances the wizard by one step. Leaving the group-type step
// performs the group create or join side effect first and blocks
// advancement if it fails; the returned error carries the inline
// message to surface
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step >= StepSuccess {
		return fmt.Errorf("onboarding is already at the final step")
	}

	if w.step == StepGroupType && w.groupResult == nil {
		result, err := w.applyGroupChoice(ctx)
		if err != nil {
			return err
		}
		w.groupResult = result
	}

	w.step++
	return nil
}

// Back moves the wizard back one step.
// The second return value is false when the wizard is already at the
// first step, signalling the caller to exit the flow instead
func (w *Wizard) Back() (Step, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepGroupType {
		return w.step, false
	}

	w.step--
	return w.step, true
}

// Complete performs the single persist of the accumulated draft.
// The completion flag flips only after the remote write succeeds; on
// failure the wizard stays at the final step so the same action can
// simply be reissued
func (w *Wizard) Complete(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepSuccess {
		return fmt.Errorf("onboarding is at step '%s', not the final step", w.step)
	}

	preferences := w.draft.Preferences(w.userID)
	_, err := w.preferences.SavePreferences(ctx, preferences)
	if err != nil {
		return err
	}

	w.draft.OnboardingCompleted = true
	return nil
}

func (w *Wizard) applyGroupChoice(ctx context.Context) (*groups.Result, error) {
	switch w.draft.GroupType {
	case GroupTypeCreate:
		return w.groups.CreateGroupWithMembership(ctx, w.draft.GroupName, nil, w.userID)
	case GroupTypeJoin:
		return w.groups.JoinGroupWithValidation(ctx, w.draft.GroupID, w.userID)
	default:
		return nil, fmt.Errorf("a group choice is required before continuing")
	}
}
