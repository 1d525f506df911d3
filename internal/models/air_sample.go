package models

// AirSample is the newest hourly pollutant reading for a location
type AirSample struct {
	Time     string   `json:"timeISO"`
	PM25     *float64 `json:"pm25,omitempty"` // µg/m³
	O3       *float64 `json:"o3,omitempty"`   // µg/m³
	Provider string   `json:"provider"`
}

// CoordinateQuery is the query string accepted by location endpoints
type CoordinateQuery struct {
	Lat *float64 `form:"lat" binding:"required"`
	Lon *float64 `form:"lon" binding:"required"`
}
