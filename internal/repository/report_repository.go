package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jengzang/greenguardian-backend-go/internal/kv"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"go.uber.org/zap"
)

// ReportsKey is the key-value entry holding the report index
const ReportsKey = "reports:v1"

// ReportRepository stores the whole report index as one JSON array
type ReportRepository struct {
	store kv.Store
	now   func() time.Time
	log   *zap.Logger
}

// NewReportRepository creates a report repository
func NewReportRepository(store kv.Store, log *zap.Logger) *ReportRepository {
	return &ReportRepository{store: store, now: time.Now, log: log}
}

// WithClock replaces the time source used for defaulted createdAt values
func (r *ReportRepository) WithClock(now func() time.Time) *ReportRepository {
	r.now = now
	return r
}

// loadRaw returns the stored array as untyped values.
// A missing or corrupt index reads as empty.
func (r *ReportRepository) loadRaw(ctx context.Context) ([]interface{}, error) {
	raw, ok, err := r.store.GetItem(ctx, ReportsKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var items []interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		r.log.Warn("Report index is not a JSON array, treating as empty", zap.Error(err))
		return nil, nil
	}
	return items, nil
}

// Save replaces the stored index
func (r *ReportRepository) Save(ctx context.Context, reports []models.Report) error {
	if reports == nil {
		reports = []models.Report{}
	}
	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	return r.store.SetItem(ctx, ReportsKey, string(data))
}

// EnsureSchema back-fills uid and status on legacy rows and rewrites the
// index when any row needed it
func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	raw, err := r.loadRaw(ctx)
	if err != nil {
		return err
	}

	changed := false
	normalized := make([]models.Report, 0, len(raw))
	for _, item := range raw {
		rep, ok := NormalizeReport(item, models.GuestUID, r.now())
		if !ok {
			continue
		}
		if m, isMap := item.(map[string]interface{}); isMap && (!nonEmptyString(m["uid"]) || !nonEmptyString(m["status"])) {
			changed = true
		}
		normalized = append(normalized, rep)
	}

	if !changed {
		return nil
	}
	r.log.Info("Back-filled legacy report rows", zap.Int("count", len(normalized)))
	return r.Save(ctx, normalized)
}

// List returns every valid report, newest first. Legacy rows are
// normalized in memory; the index itself is only rewritten by EnsureSchema.
func (r *ReportRepository) List(ctx context.Context) ([]models.Report, error) {
	raw, err := r.loadRaw(ctx)
	if err != nil {
		return nil, err
	}

	reports := NormalizeAll(raw, models.GuestUID, r.now())
	SortByIDDesc(reports)
	return reports, nil
}

// NormalizeAll normalizes every item, silently dropping the invalid ones
func NormalizeAll(items []interface{}, defaultUID string, now time.Time) []models.Report {
	reports := make([]models.Report, 0, len(items))
	for _, item := range items {
		if rep, ok := NormalizeReport(item, defaultUID, now); ok {
			reports = append(reports, rep)
		}
	}
	return reports
}

// NormalizeReport accepts an arbitrary decoded JSON value as a report.
// id, description and category must be strings and photoUri a non-empty
// string; uid, createdAt and status are defaulted; non-numeric coordinates
// are dropped. Category is not checked against the known set.
func NormalizeReport(item interface{}, defaultUID string, now time.Time) (models.Report, bool) {
	m, ok := item.(map[string]interface{})
	if !ok {
		return models.Report{}, false
	}

	id, ok := m["id"].(string)
	if !ok {
		return models.Report{}, false
	}
	description, ok := m["description"].(string)
	if !ok {
		return models.Report{}, false
	}
	category, ok := m["category"].(string)
	if !ok {
		return models.Report{}, false
	}
	photo, _ := m["photoUri"].(string)
	if photo == "" {
		return models.Report{}, false
	}

	uid, _ := m["uid"].(string)
	if uid == "" {
		uid = defaultUID
	}
	createdAt, ok := m["createdAt"].(string)
	if !ok {
		createdAt = now.UTC().Format(time.RFC3339Nano)
	}
	status, _ := m["status"].(string)
	if status == "" {
		status = models.ReportStatusPending
	}

	return models.Report{
		ID:          id,
		UID:         uid,
		Description: description,
		Category:    category,
		PhotoURI:    photo,
		Latitude:    number(m["latitude"]),
		Longitude:   number(m["longitude"]),
		CreatedAt:   createdAt,
		Status:      status,
	}, true
}

func number(v interface{}) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func nonEmptyString(v interface{}) bool {
	s, ok := v.(string)
	return ok && s != ""
}

// SortByIDDesc orders reports newest first. Numeric ids compare as numbers;
// non-numeric ids sort after numeric ones, in descending string order.
func SortByIDDesc(reports []models.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, aErr := strconv.ParseInt(reports[i].ID, 10, 64)
		b, bErr := strconv.ParseInt(reports[j].ID, 10, 64)
		switch {
		case aErr == nil && bErr == nil:
			return a > b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return reports[i].ID > reports[j].ID
		}
	})
}
