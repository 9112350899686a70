package maps

import "math"

// Radius of the earth in miles
const earthRadiusMiles = 3959

// Distance computes the great-circle distance in miles between two
// points using the haversine formula
func Distance(lat1 float64, lon1 float64, lat2 float64, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
