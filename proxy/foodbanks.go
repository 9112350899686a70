package proxy

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
)

var foodBankNames = []string{
	"Second Harvest Food Bank",
	"Community Food Share",
	"Local Food Assistance Center",
	"Hope Food Pantry",
	"Neighborhood Food Bank",
}

var foodBankAvailableTimes = []string{
	"7:30pm",
	"7:45pm",
	"8:00pm",
	"8:15pm",
}

// Food banks are scattered within this many miles of the search origin
const foodBankRadiusMiles = 5.0

// Approximate length of one degree of latitude in miles
const milesPerDegree = 69.0

type foodBankLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type foodBankGeometry struct {
	Location foodBankLocation `json:"location"`
}

type foodBankResult struct {
	PlaceID        string           `json:"place_id"`
	Name           string           `json:"name"`
	Vicinity       string           `json:"vicinity"`
	Geometry       foodBankGeometry `json:"geometry"`
	AvailableTimes []string         `json:"available_times"`
}

// generateFoodBanks produces one mock food bank per known name,
// scattered randomly within the search radius and sorted nearest-first
// using the flat-earth degree approximation
func generateFoodBanks(lat float64, lng float64) []foodBankResult {
	radiusInDegrees := foodBankRadiusMiles / milesPerDegree

	results := make([]foodBankResult, 0, len(foodBankNames))
	for i, name := range foodBankNames {
		latOffset := (rand.Float64() - 0.5) * radiusInDegrees * 2
		lngOffset := (rand.Float64() - 0.5) * radiusInDegrees * 2

		distance := approximateDistanceMiles(lat, latOffset, lngOffset)

		results = append(results, foodBankResult{
			PlaceID:  fmt.Sprintf("fb_%d", i+1),
			Name:     name,
			Vicinity: fmt.Sprintf("%s miles from location", formatDistance(distance)),
			Geometry: foodBankGeometry{
				Location: foodBankLocation{
					Lat: lat + latOffset,
					Lng: lng + lngOffset,
				},
			},
			AvailableTimes: foodBankAvailableTimes,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		distI := approximateDistanceMiles(lat,
			results[i].Geometry.Location.Lat-lat, results[i].Geometry.Location.Lng-lng)
		distJ := approximateDistanceMiles(lat,
			results[j].Geometry.Location.Lat-lat, results[j].Geometry.Location.Lng-lng)
		return distI < distJ
	})

	return results
}

// approximateDistanceMiles converts a degree offset from the origin
// into miles, shrinking the longitude axis by the cosine of the
// origin's latitude
func approximateDistanceMiles(originLat float64, latOffset float64, lngOffset float64) float64 {
	latMiles := latOffset * milesPerDegree
	lngMiles := lngOffset * milesPerDegree * math.Cos(originLat*math.Pi/180)
	return math.Sqrt(latMiles*latMiles + lngMiles*lngMiles)
}

// formatDistance rounds to one decimal place without a trailing zero,
// so 2.0 renders as "2" and 2.35 renders as "2.4"
func formatDistance(distance float64) string {
	rounded := math.Round(distance*10) / 10
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// FoodBanks serves the mock food bank search results around the given
// coordinates
func (s *Server) FoodBanks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		latValue := r.URL.Query().Get("lat")
		lngValue := r.URL.Query().Get("lng")
		if latValue == "" || lngValue == "" {
			respondError(w, http.StatusBadRequest, "Latitude and longitude are required")
			return
		}

		lat, latErr := strconv.ParseFloat(latValue, 64)
		lng, lngErr := strconv.ParseFloat(lngValue, 64)
		if latErr != nil || lngErr != nil {
			respondError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}

		s.logger.Info().Float64("lat", lat).Float64("lng", lng).
			Msg("received request for food banks")

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "OK",
			"results": generateFoodBanks(lat, lng),
		})
	}
}
