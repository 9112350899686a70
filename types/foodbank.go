package types

// GeoCoordinates is the representation of a pair of GPS coordinates
// that contains latitude and longitude
type GeoCoordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// IsZero reports whether the coordinates are the unset origin value
func (g GeoCoordinates) IsZero() bool {
	return g.Lat == 0 && g.Lng == 0
}

// FoodBankGeometry wraps the coordinates of a food bank,
// matching the upstream places payload shape
type FoodBankGeometry struct {
	Location GeoCoordinates `json:"location"`
}

// FoodBank is a pickup-location entity returned by the matching search.
// Distance, when present, is a formatted miles value computed
// client-side rather than supplied by the search backend
type FoodBank struct {
	PlaceID        string           `json:"place_id"`
	Name           string           `json:"name"`
	Vicinity       string           `json:"vicinity"`
	Geometry       FoodBankGeometry `json:"geometry"`
	AvailableTimes []string         `json:"available_times"`
	Distance       string           `json:"distance,omitempty"`
}
