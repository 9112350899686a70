package maps

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		name      string
		lat1      float64
		lon1      float64
		lat2      float64
		lon2      float64
		wantMiles float64
		tolerance float64
	}{
		{name: "same point", lat1: 33.749, lon1: -84.388, lat2: 33.749, lon2: -84.388, wantMiles: 0, tolerance: 0.0001},
		{name: "one degree of latitude", lat1: 33.0, lon1: -84.0, lat2: 34.0, lon2: -84.0, wantMiles: 69.0, tolerance: 0.5},
		{name: "atlanta to athens", lat1: 33.749, lon1: -84.388, lat2: 33.9519, lon2: -83.3576, wantMiles: 61.0, tolerance: 2.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Distance(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.wantMiles) > tc.tolerance {
				t.Errorf("expected %.2f miles (±%.2f), got %.2f", tc.wantMiles, tc.tolerance, got)
			}
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	forward := Distance(33.749, -84.388, 40.7128, -74.006)
	backward := Distance(40.7128, -74.006, 33.749, -84.388)

	if math.Abs(forward-backward) > 0.0001 {
		t.Errorf("expected symmetric distances, got %.4f and %.4f", forward, backward)
	}
}
