package aqi

import (
	"math"
)

// Pollutant identifies which reading produced an index
type Pollutant string

const (
	PM25 Pollutant = "pm2_5"
	O3   Pollutant = "o3"
)

// Source tells whether a result came from a live sample or the coordinate fallback
type Source string

const (
	SourceLive Source = "live"
	SourceMock Source = "mock"
)

// breakpoint maps a concentration band [CLow, CHigh] to an index band [ILow, IHigh]
type breakpoint struct {
	CLow, CHigh float64
	ILow, IHigh int
}

// PM2.5 24h breakpoints, µg/m³
var pm25Table = []breakpoint{
	{0, 12, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// Ozone table in µg/m³. Approximate: the values are not converted from the
// ppb table, keep them as they are.
var o3Table = []breakpoint{
	{0, 100, 0, 50},
	{101, 160, 51, 100},
	{161, 215, 101, 150},
	{216, 265, 151, 200},
	{266, 800, 201, 300},
}

// interpolate walks the table and returns the sub-index for c.
// A value in the gap between two bands is placed in the upper band.
func interpolate(table []breakpoint, c float64) int {
	if c < 0 || math.IsNaN(c) {
		c = 0
	}
	for _, b := range table {
		if c <= b.CHigh {
			v := float64(b.IHigh-b.ILow)/(b.CHigh-b.CLow)*(c-b.CLow) + float64(b.ILow)
			return int(math.Round(v))
		}
	}
	return table[len(table)-1].IHigh
}

// FromPM25 converts a PM2.5 concentration to its AQI sub-index (0..500)
func FromPM25(c float64) int {
	return interpolate(pm25Table, c)
}

// FromO3Approx converts an ozone concentration to its approximate AQI sub-index (0..300)
func FromO3Approx(c float64) int {
	return interpolate(o3Table, c)
}

// Readings holds optional pollutant concentrations
type Readings struct {
	PM25 *float64 `json:"pm25,omitempty"`
	O3   *float64 `json:"o3,omitempty"`
}

// Result is the user-facing index for one location and time
type Result struct {
	AQI      int       `json:"aqi"`
	Dominant Pollutant `json:"dominant_pollutant,omitempty"`
	Category Category  `json:"category"`
	Label    string    `json:"label"`
	Color    string    `json:"color"`
	Advisory string    `json:"advisory"`
	PM25     *float64  `json:"pm25,omitempty"`
	O3       *float64  `json:"o3,omitempty"`
	Source   Source    `json:"source"`
}

func newResult(index int, dominant Pollutant, r Readings, src Source) Result {
	band := CategoryOf(index)
	return Result{
		AQI:      index,
		Dominant: dominant,
		Category: band.Category,
		Label:    band.Label,
		Color:    band.Color,
		Advisory: band.Advisory,
		PM25:     r.PM25,
		O3:       r.O3,
		Source:   src,
	}
}

// Overall picks the worse of the present sub-indices.
// ok is false when neither pollutant is present; callers must treat that as
// insufficient data, not as a zero reading.
func Overall(r Readings) (res Result, ok bool) {
	best := -1
	var dominant Pollutant

	if r.PM25 != nil {
		best = FromPM25(*r.PM25)
		dominant = PM25
	}
	if r.O3 != nil {
		if v := FromO3Approx(*r.O3); v > best {
			best = v
			dominant = O3
		}
	}
	if best < 0 {
		return Result{}, false
	}
	return newResult(best, dominant, r, SourceLive), true
}

// MockFromCoords derives a stable pseudo-random index in [30,180] from coordinates.
// Used as the offline fallback; same input always yields the same index.
func MockFromCoords(lat, lon float64) Result {
	seed := math.Mod(math.Abs(math.Sin(lat*12.9898+lon*78.233)), 1)
	index := int(math.Round(30 + seed*150))
	return newResult(index, "", Readings{}, SourceMock)
}
