package spatial

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	EarthRadiusKm     = 6371.0    // Earth's mean radius in kilometers
)

// DistanceKm returns the great-circle distance between two points in kilometers
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// ValidLatLon reports whether the coordinates are inside the usual degree ranges
func ValidLatLon(lat, lon float64) bool {
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}

// FormatKm renders a distance for display: whole meters below 1 km,
// otherwise kilometers with one decimal. Non-finite input gives "".
func FormatKm(km float64) string {
	if math.IsInf(km, 0) || math.IsNaN(km) {
		return ""
	}
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}
