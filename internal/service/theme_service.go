package service

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/jengzang/greenguardian-backend-go/internal/apperr"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/jengzang/greenguardian-backend-go/internal/repository"
)

// Default theme settings
const (
	DefaultThemeMode    = models.ThemeModeLight
	DefaultThemePrimary = "#16A34A"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

var lightBase = models.ThemePalette{
	Bg:      "#F6FAF7",
	BgSoft:  "#F0F6F2",
	Card:    "#FFFFFF",
	Text:    "#0B3D2E",
	Subtext: "#667085",
	Outline: "#E6EDE8",
}

var darkBase = models.ThemePalette{
	Bg:      "#0C1A12",
	BgSoft:  "#11281C",
	Card:    "#0F2418",
	Text:    "#EAF6EF",
	Subtext: "#AAC7B7",
	Outline: "#1E3A2C",
}

// ThemeService stores per-user theme settings and derives the color palette
type ThemeService struct {
	prefs *repository.PreferenceRepository
	mu    sync.Mutex
}

// NewThemeService creates a new theme service
func NewThemeService(prefs *repository.PreferenceRepository) *ThemeService {
	return &ThemeService{prefs: prefs}
}

// DefaultThemeSettings returns the settings used when none are stored
func DefaultThemeSettings() models.ThemeSettings {
	return models.ThemeSettings{Mode: DefaultThemeMode, Primary: DefaultThemePrimary}
}

// Palette derives the full color set from settings
func Palette(s models.ThemeSettings) models.ThemePalette {
	p := lightBase
	p.OnPrimary = "#FFFFFF"
	if s.Mode == models.ThemeModeDark {
		p = darkBase
		p.OnPrimary = "#0C1A12"
	}
	p.Primary = s.Primary
	p.Success = "#16A34A"
	p.Warning = "#F59E0B"
	p.Danger = "#E11D48"
	p.Info = "#0EA5E9"
	p.Link = s.Primary
	return p
}

// Get returns the settings of uid with their palette. Missing or unusable
// stored settings fall back to the defaults.
func (s *ThemeService) Get(ctx context.Context, uid string) (models.ThemeResponse, error) {
	settings, ok, err := s.prefs.Theme(ctx, uid)
	if err != nil {
		return models.ThemeResponse{}, err
	}
	if !ok {
		settings = DefaultThemeSettings()
	}
	return models.ThemeResponse{Settings: settings, Colors: Palette(settings)}, nil
}

// SetMode changes the light/dark mode of uid
func (s *ThemeService) SetMode(ctx context.Context, uid, mode string) (models.ThemeResponse, error) {
	return s.Update(ctx, uid, models.ThemeUpdate{Mode: &mode})
}

// SetPrimary changes the primary color of uid
func (s *ThemeService) SetPrimary(ctx context.Context, uid, hex string) (models.ThemeResponse, error) {
	return s.Update(ctx, uid, models.ThemeUpdate{Primary: &hex})
}

// Update applies the non-nil fields of u and persists the result
func (s *ThemeService) Update(ctx context.Context, uid string, u models.ThemeUpdate) (models.ThemeResponse, error) {
	const op = "theme.update"

	if u.Mode != nil && *u.Mode != models.ThemeModeLight && *u.Mode != models.ThemeModeDark {
		return models.ThemeResponse{}, apperr.Validation(op, "mode must be light or dark, got %q", *u.Mode)
	}
	if u.Primary != nil && !hexColorPattern.MatchString(*u.Primary) {
		return models.ThemeResponse{}, apperr.Validation(op, "primary must be a #RGB or #RRGGBB color, got %q", *u.Primary)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx, uid)
	if err != nil {
		return models.ThemeResponse{}, err
	}
	settings := current.Settings
	if u.Mode != nil {
		settings.Mode = *u.Mode
	}
	if u.Primary != nil {
		settings.Primary = strings.ToUpper(*u.Primary)
	}

	if err := s.prefs.SaveTheme(ctx, uid, settings); err != nil {
		return models.ThemeResponse{}, err
	}
	return models.ThemeResponse{Settings: settings, Colors: Palette(settings)}, nil
}
