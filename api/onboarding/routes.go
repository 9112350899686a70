package onboarding

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi"

	"github.com/pantrypal/pantrypal-api/auth"
	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/groups"
	"github.com/pantrypal/pantrypal-api/onboarding"
	"github.com/pantrypal/pantrypal-api/types"
	"github.com/pantrypal/pantrypal-api/util"
)

// Wizards lazily creates and retains one onboarding wizard per user so
// each user walks their own copy of the flow
type Wizards struct {
	mu          sync.Mutex
	groups      *groups.Service
	preferences db.PreferencesProvider
	byUser      map[string]*onboarding.Wizard
}

// NewWizards creates a per-user wizard registry over the given providers
func NewWizards(groupService *groups.Service, preferences db.PreferencesProvider) *Wizards {
	return &Wizards{
		groups:      groupService,
		preferences: preferences,
		byUser:      make(map[string]*onboarding.Wizard),
	}
}

// ForUser returns the wizard for the user, creating it on first use
func (w *Wizards) ForUser(userID string) *onboarding.Wizard {
	w.mu.Lock()
	defer w.mu.Unlock()

	if wizard, ok := w.byUser[userID]; ok {
		return wizard
	}

	wizard := onboarding.NewWizard(userID, w.groups, w.preferences)
	w.byUser[userID] = wizard
	return wizard
}

// Reset discards the user's wizard so the flow starts over
func (w *Wizards) Reset(userID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.byUser, userID)
}

// Routes creates a new Chi router with all of the routes for the
// onboarding flow, at the root level
func Routes(wizards *Wizards) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/state", GetState(wizards))
	router.Post("/next", Next(wizards))
	router.Post("/back", Back(wizards))
	router.Post("/complete", Complete(wizards))
	router.Post("/reset", Reset(wizards))
	return router
}

// nextRequest carries the values for the wizard's current step.
// Only the fields for that step are read; the rest are ignored
type nextRequest struct {
	GroupType    *string           `json:"group_type"`
	GroupName    string            `json:"group_name"`
	GroupID      string            `json:"group_id"`
	Location     *string           `json:"location"`
	FirstName    *string           `json:"first_name"`
	LastName     *string           `json:"last_name"`
	FamilySize   *types.FamilySize `json:"family_size"`
	Age          *int              `json:"age"`
	Allergies    []string          `json:"allergies"`
	FoodsToAvoid []string          `json:"foods_to_avoid"`
}

// GetState returns the wizard's current step and accumulated draft
func GetState(wizards *Wizards) http.HandlerFunc {
	// Use a closure to inject the wizard registry
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		writeState(w, wizards.ForUser(session.UserID))
	}
}

// Next applies the payload to the wizard's current step and advances
// it by one. Leaving the first step performs the group create or join
// and blocks advancement when it fails
func Next(wizards *Wizards) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		var payload nextRequest
		err := json.NewDecoder(r.Body).Decode(&payload)
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		wizard := wizards.ForUser(session.UserID)
		err = wizard.UpdateDraft(func(step onboarding.Step, draft *onboarding.Draft) error {
			return applyStep(step, draft, payload)
		})
		if err != nil {
			util.ErrorWithCode(w, err, http.StatusBadRequest)
			return
		}

		err = wizard.Next(r.Context())
		if err != nil {
			util.Error(w, err)
			return
		}

		writeState(w, wizard)
	}
}

// Back moves the wizard back one step; at the first step it reports
// exited=true instead so the client can leave the flow
func Back(wizards *Wizards) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		wizard := wizards.ForUser(session.UserID)
		step, moved := wizard.Back()

		jsonResponse, err := json.Marshal(map[string]interface{}{
			"step":   int(step),
			"name":   step.String(),
			"exited": !moved,
			"draft":  wizard.Draft(),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonResponse)
	}
}

// Complete persists the accumulated draft as the user's preference row
func Complete(wizards *Wizards) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		wizard := wizards.ForUser(session.UserID)
		err := wizard.Complete(r.Context())
		if err != nil {
			util.Error(w, err)
			return
		}

		writeState(w, wizard)
	}
}

// Reset discards all accumulated onboarding state for the user
func Reset(wizards *Wizards) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.SessionFromContext(r.Context())
		if session == nil {
			util.ErrorWithCode(w, errors.New("no session is attached to the request"),
				http.StatusUnauthorized)
			return
		}

		wizards.Reset(session.UserID)
		writeState(w, wizards.ForUser(session.UserID))
	}
}

// applyStep dispatches the payload to the draft mutation for the
// wizard's current step; it runs under the wizard's lock via
// UpdateDraft
func applyStep(step onboarding.Step, draft *onboarding.Draft, payload nextRequest) error {
	switch step {
	case onboarding.StepGroupType:
		if payload.GroupType == nil {
			return errors.New("a group choice is required at this step")
		}
		return draft.SetGroupChoice(*payload.GroupType, payload.GroupName, payload.GroupID)
	case onboarding.StepLocation:
		if payload.Location != nil {
			draft.SetLocation(*payload.Location)
		}
		return nil
	case onboarding.StepName:
		if payload.FirstName != nil || payload.LastName != nil {
			first := draft.FirstName
			last := draft.LastName
			if payload.FirstName != nil {
				first = *payload.FirstName
			}
			if payload.LastName != nil {
				last = *payload.LastName
			}
			draft.SetName(first, last)
		}
		return nil
	case onboarding.StepFamilySize:
		if payload.FamilySize != nil {
			return draft.SetFamilySize(*payload.FamilySize)
		}
		return nil
	case onboarding.StepAge:
		if payload.Age != nil {
			return draft.SetAge(*payload.Age)
		}
		return nil
	case onboarding.StepAllergies:
		return replaceSelections(payload.Allergies, draft.Allergies,
			draft.AddAllergy, draft.RemoveAllergy)
	case onboarding.StepFoodsToAvoid:
		return replaceSelections(payload.FoodsToAvoid, draft.FoodsToAvoid,
			draft.AddFoodToAvoid, draft.RemoveFoodToAvoid)
	default:
		// The review and success steps carry no payload
		return nil
	}
}

// replaceSelections reconciles a selection set against the submitted
// list, keeping the draft's validation in the loop for every addition
func replaceSelections(submitted []string, current []string,
	add func(string) error, remove func(string)) error {

	// The payload omitting the list means no change
	if submitted == nil {
		return nil
	}

	for _, value := range append([]string{}, current...) {
		remove(value)
	}

	for _, value := range submitted {
		if err := add(value); err != nil {
			return err
		}
	}

	return nil
}

// writeState sends the wizard's step, draft, and group outcome
func writeState(w http.ResponseWriter, wizard *onboarding.Wizard) {
	step := wizard.Step()

	jsonResponse, err := json.Marshal(map[string]interface{}{
		"step":  int(step),
		"name":  step.String(),
		"draft": wizard.Draft(),
		"group": wizard.GroupResult(),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonResponse)
}
