package models

// Drop point types
const (
	DropPointRecycle = "recycle"
	DropPointHazard  = "hazard"
	DropPointEWaste  = "e-waste"
	DropPointOrganic = "organic"
)

// DropPoint is a collection point for recyclables or hazardous waste
type DropPoint struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Type    string  `json:"type"`
	Address string  `json:"address,omitempty"`
	Note    string  `json:"note,omitempty"`
}

// NearbyDropPoint is a drop point with its distance from the caller
type NearbyDropPoint struct {
	DropPoint
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Distance   string   `json:"distance,omitempty"` // formatted, e.g. "850 m" or "2.4 km"
}

// DropPointFilter represents query parameters for nearby drop points
type DropPointFilter struct {
	Lat      *float64 `form:"lat"`
	Lon      *float64 `form:"lon"`
	Type     string   `form:"type"`
	Query    string   `form:"q"`         // case-insensitive match on name or address
	RadiusKm float64  `form:"radius_km"` // 0 means no radius limit
	Limit    int      `form:"limit"`
}
