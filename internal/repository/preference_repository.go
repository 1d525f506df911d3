package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jengzang/greenguardian-backend-go/internal/kv"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
)

const (
	favoritesKeyPrefix = "knowledge:favorites:v1:"
	themeKeyPrefix     = "theme:settings:"
)

// PreferenceRepository persists small per-user values: knowledge favorites
// and theme settings
type PreferenceRepository struct {
	store kv.Store
}

// NewPreferenceRepository creates a preference repository
func NewPreferenceRepository(store kv.Store) *PreferenceRepository {
	return &PreferenceRepository{store: store}
}

// Favorites returns the favorite article ids of uid. A corrupt value reads as empty.
func (r *PreferenceRepository) Favorites(ctx context.Context, uid string) (map[string]bool, error) {
	raw, ok, err := r.store.GetItem(ctx, favoritesKeyPrefix+uid)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	if !ok {
		return set, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return set, nil
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// SaveFavorites stores the favorite set as a sorted JSON array
func (r *PreferenceRepository) SaveFavorites(ctx context.Context, uid string, set map[string]bool) error {
	ids := make([]string, 0, len(set))
	for id, on := range set {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	return r.store.SetItem(ctx, favoritesKeyPrefix+uid, string(data))
}

// Theme returns the stored settings of uid; ok is false when none are
// stored or the stored value is unusable
func (r *PreferenceRepository) Theme(ctx context.Context, uid string) (models.ThemeSettings, bool, error) {
	raw, ok, err := r.store.GetItem(ctx, themeKeyPrefix+uid)
	if err != nil || !ok {
		return models.ThemeSettings{}, false, err
	}

	var s models.ThemeSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.Mode == "" || s.Primary == "" {
		return models.ThemeSettings{}, false, nil
	}
	return s, true, nil
}

// SaveTheme stores the settings of uid
func (r *PreferenceRepository) SaveTheme(ctx context.Context, uid string, s models.ThemeSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode theme settings: %w", err)
	}
	return r.store.SetItem(ctx, themeKeyPrefix+uid, string(data))
}
