package models

// Theme modes
const (
	ThemeModeLight = "light"
	ThemeModeDark  = "dark"
)

// ThemeSettings is the persisted theme choice of one user
type ThemeSettings struct {
	Mode    string `json:"mode"`
	Primary string `json:"primary"`
}

// ThemePalette is the full color set derived from ThemeSettings
type ThemePalette struct {
	Bg        string `json:"bg"`
	BgSoft    string `json:"bgSoft"`
	Card      string `json:"card"`
	Text      string `json:"text"`
	Subtext   string `json:"subtext"`
	Outline   string `json:"outline"`
	Primary   string `json:"primary"`
	OnPrimary string `json:"onPrimary"`
	Success   string `json:"success"`
	Warning   string `json:"warning"`
	Danger    string `json:"danger"`
	Info      string `json:"info"`
	Link      string `json:"link"`
}

// ThemeResponse bundles settings and the derived palette
type ThemeResponse struct {
	Settings ThemeSettings `json:"settings"`
	Colors   ThemePalette  `json:"colors"`
}

// ThemeUpdate is the body accepted by PUT /theme
type ThemeUpdate struct {
	Mode    *string `json:"mode"`
	Primary *string `json:"primary"`
}
