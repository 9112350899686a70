package types

// FamilySize breaks a household down by age bracket;
// each count is non-negative
type FamilySize struct {
	Adults    int `json:"adults" bson:"adults"`
	Teenagers int `json:"teenagers" bson:"teenagers"`
	Children  int `json:"children" bson:"children"`
	Infants   int `json:"infants" bson:"infants"`
}

// Total sums the four component brackets
func (f FamilySize) Total() int {
	return f.Adults + f.Teenagers + f.Children + f.Infants
}

// UserPreferences is the document stored for a user's profile and
// onboarding answers, keyed by UserID.
// Location is either a free-text address or a JSON-encoded
// {"lat":..,"lng":..} document once geocoding has resolved it
type UserPreferences struct {
	UserID              string     `json:"user_id" bson:"user_id"`
	FirstName           string     `json:"first_name" bson:"first_name"`
	LastName            string     `json:"last_name" bson:"last_name"`
	Age                 int        `json:"age" bson:"age"`
	Location            string     `json:"location" bson:"location"`
	FamilySize          FamilySize `json:"family_size" bson:"family_size"`
	Allergies           []string   `json:"allergies" bson:"allergies"`
	FoodsToAvoid        []string   `json:"foods_to_avoid" bson:"foods_to_avoid"`
	OnboardingCompleted bool       `json:"onboarding_completed" bson:"onboarding_completed"`
}
