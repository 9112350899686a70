package maps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/types"
)

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

// testProxy serves canned geocoding and food bank responses while
// counting geocode calls
type testProxy struct {
	geocodeCalls  int
	geocodeStatus string
	foodBankCount int
}

func (p *testProxy) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/geocode", func(w http.ResponseWriter, r *http.Request) {
		p.geocodeCalls++
		status := p.geocodeStatus
		if status == "" {
			status = "OK"
		}

		response := map[string]interface{}{
			"status": status,
			"results": []map[string]interface{}{
				{
					"formatted_address": "123 Main St",
					"geometry": map[string]interface{}{
						"location": map[string]float64{"lat": 33.75, "lng": -84.39},
					},
				},
			},
		}
		if status != "OK" {
			response["results"] = []map[string]interface{}{}
			response["error_message"] = "denied by upstream"
		}

		json.NewEncoder(w).Encode(response)
	})
	mux.HandleFunc("/api/foodbanks", func(w http.ResponseWriter, r *http.Request) {
		results := []map[string]interface{}{}
		for i := 0; i < p.foodBankCount; i++ {
			results = append(results, map[string]interface{}{
				"place_id": "fb_1",
				"name":     "Hope Food Pantry",
				"vicinity": "nearby",
				"geometry": map[string]interface{}{
					"location": map[string]float64{"lat": 33.76, "lng": -84.40},
				},
			})
		}

		status := "OK"
		if p.foodBankCount == 0 {
			status = "ZERO_RESULTS"
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"results": results,
		})
	})
	return mux
}

func newTestResolver(t *testing.T, proxy *testProxy, preferences *fakePreferencesProvider) (*Resolver, func()) {
	t.Helper()
	server := httptest.NewServer(proxy.handler())
	client := &Client{
		baseURL: server.URL,
		client:  server.Client(),
	}
	return NewResolver(preferences, client, FixedLocator{}), server.Close
}

func session(userID string) *types.Session {
	return &types.Session{UserID: userID}
}

func TestResolvePreferredLocationRequiresSession(t *testing.T) {
	resolver, cleanup := newTestResolver(t, &testProxy{}, newFakePreferencesProvider())
	defer cleanup()

	_, err := resolver.ResolvePreferredLocation(context.Background(), nil)
	if ErrorCode(err) != CodeNoSession {
		t.Fatalf("expected %s, got %v", CodeNoSession, err)
	}
}

func TestResolvePreferredLocationRequiresStoredLocation(t *testing.T) {
	preferences := newFakePreferencesProvider()
	preferences.rows["user-1"] = types.UserPreferences{UserID: "user-1", Location: ""}

	resolver, cleanup := newTestResolver(t, &testProxy{}, preferences)
	defer cleanup()

	_, err := resolver.ResolvePreferredLocation(context.Background(), session("user-1"))
	if ErrorCode(err) != CodeNoPreferences {
		t.Fatalf("expected %s, got %v", CodeNoPreferences, err)
	}
}

func TestResolvePreferredLocationGeocodesOnceAndWritesBack(t *testing.T) {
	preferences := newFakePreferencesProvider()
	preferences.rows["user-1"] = types.UserPreferences{
		UserID:   "user-1",
		Location: "123 Main St, Atlanta",
	}

	proxy := &testProxy{}
	resolver, cleanup := newTestResolver(t, proxy, preferences)
	defer cleanup()

	coordinates, err := resolver.ResolvePreferredLocation(context.Background(), session("user-1"))
	if err != nil {
		t.Fatalf("resolve failed: %s", err)
	}
	if coordinates.Lat != 33.75 || coordinates.Lng != -84.39 {
		t.Errorf("unexpected coordinates: %+v", coordinates)
	}
	if proxy.geocodeCalls != 1 {
		t.Fatalf("expected 1 geocode call, got %d", proxy.geocodeCalls)
	}

	// The resolved coordinates must be written back as JSON
	stored := preferences.rows["user-1"].Location
	if !strings.Contains(stored, "33.75") || !strings.Contains(stored, "-84.39") {
		t.Errorf("expected coordinates written back, got '%s'", stored)
	}

	// A second resolve reads the stored pair and skips the geocoder
	coordinates, err = resolver.ResolvePreferredLocation(context.Background(), session("user-1"))
	if err != nil {
		t.Fatalf("second resolve failed: %s", err)
	}
	if coordinates.Lat != 33.75 || coordinates.Lng != -84.39 {
		t.Errorf("unexpected coordinates on second resolve: %+v", coordinates)
	}
	if proxy.geocodeCalls != 1 {
		t.Errorf("expected no additional geocode calls, got %d", proxy.geocodeCalls)
	}
}

func TestResolvePreferredLocationDeniedKey(t *testing.T) {
	preferences := newFakePreferencesProvider()
	preferences.rows["user-1"] = types.UserPreferences{
		UserID:   "user-1",
		Location: "123 Main St, Atlanta",
	}

	resolver, cleanup := newTestResolver(t, &testProxy{geocodeStatus: "REQUEST_DENIED"}, preferences)
	defer cleanup()

	_, err := resolver.ResolvePreferredLocation(context.Background(), session("user-1"))
	if ErrorCode(err) != CodeAPIKeyError {
		t.Fatalf("expected %s, got %v", CodeAPIKeyError, err)
	}
}

func TestParseCoordinates(t *testing.T) {
	cases := []struct {
		name     string
		location string
		wantOk   bool
		wantLat  float64
		wantLng  float64
	}{
		{name: "valid pair", location: `{"lat":33.75,"lng":-84.39}`, wantOk: true, wantLat: 33.75, wantLng: -84.39},
		{name: "free text", location: "123 Main St", wantOk: false},
		{name: "missing lng", location: `{"lat":33.75}`, wantOk: false},
		{name: "empty", location: "", wantOk: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			coordinates, ok := ParseCoordinates(tc.location)
			if ok != tc.wantOk {
				t.Fatalf("expected ok=%t, got %t", tc.wantOk, ok)
			}
			if ok && (coordinates.Lat != tc.wantLat || coordinates.Lng != tc.wantLng) {
				t.Errorf("unexpected coordinates: %+v", coordinates)
			}
		})
	}
}

func TestSearchNearbyFoodBanks(t *testing.T) {
	resolver, cleanup := newTestResolver(t, &testProxy{foodBankCount: 2}, newFakePreferencesProvider())
	defer cleanup()

	search := types.GeoCoordinates{Lat: 33.75, Lng: -84.39}
	current := &types.GeoCoordinates{Lat: 33.7, Lng: -84.3}

	foodBanks, err := resolver.SearchNearbyFoodBanks(context.Background(), search, current)
	if err != nil {
		t.Fatalf("search failed: %s", err)
	}
	if len(foodBanks) != 2 {
		t.Fatalf("expected 2 food banks, got %d", len(foodBanks))
	}

	for _, foodBank := range foodBanks {
		if len(foodBank.AvailableTimes) == 0 {
			t.Errorf("expected pickup times on '%s'", foodBank.Name)
		}
		if !strings.HasSuffix(foodBank.Distance, " miles") {
			t.Errorf("expected distance annotation, got '%s'", foodBank.Distance)
		}
	}
}

func TestSearchNearbyFoodBanksWithoutCurrentPosition(t *testing.T) {
	resolver, cleanup := newTestResolver(t, &testProxy{foodBankCount: 1}, newFakePreferencesProvider())
	defer cleanup()

	search := types.GeoCoordinates{Lat: 33.75, Lng: -84.39}
	foodBanks, err := resolver.SearchNearbyFoodBanks(context.Background(), search, nil)
	if err != nil {
		t.Fatalf("search failed: %s", err)
	}
	if foodBanks[0].Distance != "" {
		t.Errorf("expected no distance annotation, got '%s'", foodBanks[0].Distance)
	}
}

func TestSearchNearbyFoodBanksErrors(t *testing.T) {
	cases := []struct {
		name        string
		search      types.GeoCoordinates
		proxy       *testProxy
		wantMessage string
	}{
		{
			name:        "zero coordinates",
			search:      types.GeoCoordinates{},
			proxy:       &testProxy{foodBankCount: 1},
			wantMessage: "Invalid location coordinates",
		},
		{
			name:        "no results",
			search:      types.GeoCoordinates{Lat: 33.75, Lng: -84.39},
			proxy:       &testProxy{foodBankCount: 0},
			wantMessage: "No food banks found in your area",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolver, cleanup := newTestResolver(t, tc.proxy, newFakePreferencesProvider())
			defer cleanup()

			_, err := resolver.SearchNearbyFoodBanks(context.Background(), tc.search, nil)
			if err == nil || err.Error() != tc.wantMessage {
				t.Fatalf("expected '%s', got %v", tc.wantMessage, err)
			}
		})
	}
}

func TestFixedLocator(t *testing.T) {
	denied := FixedLocator{PermissionDenied: true}
	_, err := denied.CurrentLocation(context.Background())
	if ErrorCode(err) != CodePermissionDenied {
		t.Errorf("expected %s, got %v", CodePermissionDenied, err)
	}

	noFix := FixedLocator{}
	_, err = noFix.CurrentLocation(context.Background())
	if ErrorCode(err) != CodeNoLocation {
		t.Errorf("expected %s, got %v", CodeNoLocation, err)
	}

	fixed := FixedLocator{Coordinates: types.GeoCoordinates{Lat: 1, Lng: 2}}
	coordinates, err := fixed.CurrentLocation(context.Background())
	if err != nil {
		t.Fatalf("fixed locator failed: %s", err)
	}
	if coordinates.Lat != 1 || coordinates.Lng != 2 {
		t.Errorf("unexpected coordinates: %+v", coordinates)
	}
}
