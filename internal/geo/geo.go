// internal/geo/geo.go
//
// Pure great-circle distance helper.
//
// The check-in API stores a caller-supplied distance_from_site for audit
// and display; this helper exists so callers (and the test suite) can
// derive that scalar server-side.  It takes no part in any lifecycle
// decision.
package geo

import "math"

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000.0

// DistanceMeters returns the haversine distance between two WGS-84
// coordinate pairs, in meters.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ValidCoordinates reports whether lat and lng fall inside the WGS-84
// envelope.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
