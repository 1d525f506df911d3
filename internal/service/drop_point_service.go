package service

import (
	"sort"
	"strings"

	"github.com/jengzang/greenguardian-backend-go/internal/apperr"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/jengzang/greenguardian-backend-go/internal/spatial"
)

// Limits for drop point queries
const (
	DefaultDropPointLimit = 20
	MaxDropPointLimit     = 100
)

// Collection points around Ho Chi Minh City
var dropPointsHCM = []models.DropPoint{
	{
		ID: "hcm-1", Name: "Ben Nghe Ward Office recycling point",
		Lat: 10.7776, Lon: 106.7019, Type: models.DropPointRecycle,
		Address: "136 Le Thanh Ton, District 1", Note: "Open 8:00-17:00",
	},
	{
		ID: "hcm-2", Name: "Co.opMart Cong Quynh battery take-back",
		Lat: 10.7703, Lon: 106.6852, Type: models.DropPointHazard,
		Address: "189C Cong Quynh, District 1", Note: "Batteries, fluorescent lamps",
	},
	{
		ID: "hcm-3", Name: "Phu My Hung urban area e-waste",
		Lat: 10.7327, Lon: 106.7173, Type: models.DropPointEWaste,
		Address: "Ton Dat Tien Street, District 7", Note: "Small electronics",
	},
	{
		ID: "hcm-4", Name: "Le Van Tam Park organic collection",
		Lat: 10.7901, Lon: 106.6951, Type: models.DropPointOrganic,
		Address: "Hai Ba Trung, District 1", Note: "Organic waste collected in the morning",
	},
	{
		ID: "hcm-5", Name: "Ward 25 Binh Thanh recycling point",
		Lat: 10.8089, Lon: 106.7075, Type: models.DropPointRecycle,
		Address: "Nguyen Gia Tri, Binh Thanh District",
	},
	{
		ID: "hcm-6", Name: "VNU-HCM e-waste collection",
		Lat: 10.8737, Lon: 106.8032, Type: models.DropPointEWaste,
		Address: "VNU-HCM urban area, Thu Duc",
	},
}

// DropPointService answers nearby collection point queries over a static catalog
type DropPointService struct {
	points []models.DropPoint
}

// NewDropPointService creates a drop point service over the built-in catalog
func NewDropPointService() *DropPointService {
	return &DropPointService{points: dropPointsHCM}
}

// Search filters the catalog by type and text query. With coordinates the
// result carries distances, is sorted nearest first and may be limited to a
// radius; without them the catalog order is kept.
func (s *DropPointService) Search(f models.DropPointFilter) ([]models.NearbyDropPoint, error) {
	const op = "droppoints.search"

	if f.Type != "" && !validDropPointType(f.Type) {
		return nil, apperr.Validation(op, "unknown drop point type %q", f.Type)
	}
	if (f.Lat == nil) != (f.Lon == nil) {
		return nil, apperr.Validation(op, "lat and lon must be given together")
	}
	located := f.Lat != nil
	if located && !spatial.ValidLatLon(*f.Lat, *f.Lon) {
		return nil, apperr.Validation(op, "coordinates out of range")
	}
	if f.RadiusKm < 0 {
		return nil, apperr.Validation(op, "radius_km must not be negative")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultDropPointLimit
	}
	if limit > MaxDropPointLimit {
		limit = MaxDropPointLimit
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]models.NearbyDropPoint, 0, len(s.points))
	for _, p := range s.points {
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Address), q) {
			continue
		}

		n := models.NearbyDropPoint{DropPoint: p}
		if located {
			km := spatial.DistanceKm(*f.Lat, *f.Lon, p.Lat, p.Lon)
			if f.RadiusKm > 0 && km > f.RadiusKm {
				continue
			}
			n.DistanceKm = &km
			n.Distance = spatial.FormatKm(km)
		}
		out = append(out, n)
	}

	if located {
		sort.SliceStable(out, func(i, j int) bool {
			return *out[i].DistanceKm < *out[j].DistanceKm
		})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Nearest returns up to limit points of the given type (any when empty),
// closest first
func (s *DropPointService) Nearest(lat, lon float64, limit int, typ string) ([]models.NearbyDropPoint, error) {
	return s.Search(models.DropPointFilter{Lat: &lat, Lon: &lon, Limit: limit, Type: typ})
}

func validDropPointType(t string) bool {
	switch t {
	case models.DropPointRecycle, models.DropPointHazard, models.DropPointEWaste, models.DropPointOrganic:
		return true
	}
	return false
}
