package aqi

// Category is the health band an index falls into
type Category string

const (
	Good      Category = "good"
	Moderate  Category = "moderate"
	Poor      Category = "poor"
	Bad       Category = "bad"
	VeryBad   Category = "very_bad"
	Hazardous Category = "hazardous"
)

// Band describes how a category is shown to the user
type Band struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	Advisory string   `json:"advisory"`
}

// upper bounds are inclusive
var bands = []struct {
	max  int
	band Band
}{
	{50, Band{Good, "Good", "#2ECC71", "Air quality is clean."}},
	{100, Band{Moderate, "Moderate", "#F1C40F", "Sensitive groups should take care."}},
	{150, Band{Poor, "Unhealthy for sensitive groups", "#E67E22", "Limit strenuous outdoor activity."}},
	{200, Band{Bad, "Unhealthy", "#E74C3C", "Wear a mask when going outside."}},
	{300, Band{VeryBad, "Very unhealthy", "#8E44AD", "Avoid going outside if possible."}},
}

var hazardous = Band{Hazardous, "Hazardous", "#7E0023", "Stay indoors, close windows and filter the air."}

// CategoryOf returns the band for an index. Boundary values belong to the better band.
func CategoryOf(index int) Band {
	for _, b := range bands {
		if index <= b.max {
			return b.band
		}
	}
	return hazardous
}
