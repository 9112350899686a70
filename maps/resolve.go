package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/types"
)

// Pickup time slots attached to every search result until the search
// backend supplies real availability
var placeholderPickupTimes = []string{
	"7:30pm",
	"7:45pm",
	"8:00pm",
	"8:15pm",
}

// Resolver resolves an authoritative pickup search origin and matches
// nearby food banks against it
type Resolver struct {
	preferences db.PreferencesProvider
	client      *Client
	locator     Locator
}

// NewResolver creates a new Resolver over the given providers
func NewResolver(preferences db.PreferencesProvider, client *Client, locator Locator) *Resolver {
	return &Resolver{
		preferences: preferences,
		client:      client,
		locator:     locator,
	}
}

// ParseCoordinates attempts to read a stored location value as a
// JSON-encoded coordinate pair
func ParseCoordinates(location string) (types.GeoCoordinates, bool) {
	var parsed struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal([]byte(location), &parsed); err != nil {
		return types.GeoCoordinates{}, false
	}

	if parsed.Lat == nil || parsed.Lng == nil {
		return types.GeoCoordinates{}, false
	}

	return types.GeoCoordinates{Lat: *parsed.Lat, Lng: *parsed.Lng}, true
}

// ResolvePreferredLocation resolves the user's stored pickup location
// to coordinates. A stored coordinate pair is returned directly; a
// free-text address is geocoded once and the resolved coordinates are
// written back into the preference row so later calls skip the
// geocoder entirely
func (r *Resolver) ResolvePreferredLocation(ctx context.Context, session *types.Session) (types.GeoCoordinates, error) {
	if session == nil || session.UserID == "" {
		return types.GeoCoordinates{}, NewLocationError(CodeNoSession,
			"no authenticated session is available")
	}

	preferences, err := r.preferences.GetPreferences(ctx, session.UserID)
	if err != nil {
		return types.GeoCoordinates{}, NewLocationError(CodeServerError,
			fmt.Sprintf("could not read stored preferences: %s", err))
	}

	location := strings.TrimSpace(preferences.Location)
	if location == "" {
		return types.GeoCoordinates{}, NewLocationError(CodeNoPreferences,
			"no location is stored in the user's preferences")
	}

	// A previously resolved location is already a coordinate pair
	if coordinates, ok := ParseCoordinates(location); ok {
		return coordinates, nil
	}

	// Otherwise treat the stored value as a free-text address
	response, err := r.client.Geocode(ctx, location)
	if err != nil {
		return types.GeoCoordinates{}, NewLocationError(CodeGeocodingError,
			fmt.Sprintf("could not geocode stored address: %s", err))
	}

	if response.Status == "REQUEST_DENIED" {
		return types.GeoCoordinates{}, NewLocationError(CodeAPIKeyError,
			fmt.Sprintf("geocoding request was denied: %s", response.ErrorMessage))
	}

	if response.Status != "OK" || len(response.Results) == 0 {
		return types.GeoCoordinates{}, NewLocationError(CodeGeocodingError,
			fmt.Sprintf("geocoding returned status '%s' with %d results",
				response.Status, len(response.Results)))
	}

	coordinates := response.Results[0].Geometry.Location

	// Cache-on-read: persist the resolved coordinates so the address
	// is never geocoded twice
	encoded, err := json.Marshal(coordinates)
	if err != nil {
		return types.GeoCoordinates{}, NewLocationError(CodeNetworkError,
			fmt.Sprintf("could not encode resolved coordinates: %s", err))
	}
	err = r.preferences.UpdatePreferenceLocation(ctx, session.UserID, string(encoded))
	if err != nil {
		return types.GeoCoordinates{}, NewLocationError(CodeServerError,
			fmt.Sprintf("could not write back resolved coordinates: %s", err))
	}

	return coordinates, nil
}

// ResolveCurrentLocation resolves the device's current position via
// the configured locator
func (r *Resolver) ResolveCurrentLocation(ctx context.Context) (types.GeoCoordinates, error) {
	if r.locator == nil {
		return types.GeoCoordinates{}, NewLocationError(CodeNoLocation,
			"no device locator is configured")
	}

	return r.locator.CurrentLocation(ctx)
}

// SearchNearbyFoodBanks queries the food bank search around the given
// origin and maps the results into the FoodBank shape. When a current
// position is supplied, each result is annotated with its great-circle
// distance in miles from that position.
//
// Results are returned in upstream order; callers that treat the first
// entry as nearest are relying on the search backend presorting
func (r *Resolver) SearchNearbyFoodBanks(ctx context.Context, search types.GeoCoordinates, current *types.GeoCoordinates) ([]types.FoodBank, error) {
	if search.Lat == 0 || search.Lng == 0 {
		return nil, errors.New("Invalid location coordinates")
	}

	response, err := r.client.FoodBanks(ctx, search.Lat, search.Lng)
	if err != nil {
		return nil, errors.New("Failed to fetch food banks")
	}

	if response.Status == "REQUEST_DENIED" {
		return nil, errors.New("API request was denied")
	}

	if response.Status == "ZERO_RESULTS" || len(response.Results) == 0 {
		return nil, errors.New("No food banks found in your area")
	}

	foodBanks := []types.FoodBank{}
	for _, place := range response.Results {
		foodBank := types.FoodBank{
			PlaceID:        place.PlaceID,
			Name:           place.Name,
			Vicinity:       place.Vicinity,
			Geometry:       place.Geometry,
			AvailableTimes: placeholderPickupTimes,
		}

		if current != nil && !current.IsZero() {
			distance := Distance(current.Lat, current.Lng,
				place.Geometry.Location.Lat, place.Geometry.Location.Lng)
			foodBank.Distance = fmt.Sprintf("%.1f miles", distance)
		}

		foodBanks = append(foodBanks, foodBank)
	}

	return foodBanks, nil
}
