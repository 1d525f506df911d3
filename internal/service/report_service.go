package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jengzang/greenguardian-backend-go/internal/apperr"
	"github.com/jengzang/greenguardian-backend-go/internal/blob"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/jengzang/greenguardian-backend-go/internal/repository"
	"go.uber.org/zap"
)

var photoExtPattern = regexp.MustCompile(`\.(\w+)(?:\?|$)`)

// ReportService handles report business logic on top of the report index
// and the blob store holding photos and exports
type ReportService struct {
	repo  *repository.ReportRepository
	blobs blob.Store
	log   *zap.Logger
	now   func() time.Time

	// mu serializes read-modify-write cycles on the index
	mu      sync.Mutex
	pending sync.WaitGroup
}

// NewReportService creates a new report service
func NewReportService(repo *repository.ReportRepository, blobs blob.Store, log *zap.Logger) *ReportService {
	return &ReportService{
		repo:  repo,
		blobs: blobs,
		log:   log,
		now:   time.Now,
	}
}

// WithClock replaces the time source used for ids, timestamps and export names
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// Wait blocks until background photo cleanups have finished
func (s *ReportService) Wait() {
	s.pending.Wait()
}

// EnsureSchema back-fills legacy rows in the index. It runs under the
// mutation lock so it cannot race a concurrent write.
func (s *ReportService) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.EnsureSchema(ctx)
}

// List returns every report, newest first
func (s *ReportService) List(ctx context.Context) ([]models.Report, error) {
	return s.repo.List(ctx)
}

// ListByOwner returns the reports created by uid, newest first
func (s *ReportService) ListByOwner(ctx context.Context, uid string) ([]models.Report, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.Report, 0)
	for _, r := range all {
		if r.UID == uid {
			mine = append(mine, r)
		}
	}
	return mine, nil
}

// Get returns a report by id
func (s *ReportService) Get(ctx context.Context, id string) (models.Report, bool, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return models.Report{}, false, err
	}
	for _, r := range all {
		if r.ID == id {
			return r, true, nil
		}
	}
	return models.Report{}, false, nil
}

// Create copies the photo into the store and prepends a new pending report.
// The index is only written after the photo copy succeeded.
func (s *ReportService) Create(ctx context.Context, uid string, draft models.ReportDraft, photoSrc string) (models.Report, error) {
	const op = "reports.create"

	if strings.TrimSpace(photoSrc) == "" {
		return models.Report{}, apperr.Validation(op, "photo is required")
	}
	category, err := checkCategory(op, draft.Category)
	if err != nil {
		return models.Report{}, err
	}
	if err := checkCoords(op, draft.Latitude, draft.Longitude); err != nil {
		return models.Report{}, err
	}
	if uid == "" {
		uid = models.GuestUID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.List(ctx)
	if err != nil {
		return models.Report{}, err
	}

	now := s.now()
	id := nextID(now, all)

	photo, err := s.blobs.CopyFrom(ctx, photoSrc, photoName(id, photoSrc))
	if err != nil {
		return models.Report{}, err
	}

	report := models.Report{
		ID:          id,
		UID:         uid,
		Description: strings.TrimSpace(draft.Description),
		Category:    category,
		PhotoURI:    photo,
		Latitude:    draft.Latitude,
		Longitude:   draft.Longitude,
		CreatedAt:   now.UTC().Format(time.RFC3339Nano),
		Status:      models.ReportStatusPending,
	}

	if err := s.repo.Save(ctx, append([]models.Report{report}, all...)); err != nil {
		s.discard(photo)
		return models.Report{}, err
	}

	s.log.Info("Report created",
		zap.String("id", report.ID),
		zap.String("uid", report.UID),
		zap.String("category", report.Category))
	return report, nil
}

// Update merges patch into the report with the given id. A new photo source
// is copied in before the old blob is removed. uid "" skips the owner check.
func (s *ReportService) Update(ctx context.Context, uid, id string, patch models.ReportPatch) (models.Report, error) {
	const op = "reports.update"

	if patch.Category != nil {
		category, err := checkCategory(op, *patch.Category)
		if err != nil {
			return models.Report{}, err
		}
		patch.Category = &category
	}
	if patch.Status != nil && !validStatus(*patch.Status) {
		return models.Report{}, apperr.Validation(op, "unknown status %q", *patch.Status)
	}
	if err := checkCoords(op, patch.Latitude, patch.Longitude); err != nil {
		return models.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.List(ctx)
	if err != nil {
		return models.Report{}, err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return models.Report{}, apperr.NotFound(op, "report %s not found", id)
	}
	current := all[idx]
	if uid != "" && current.UID != uid {
		return models.Report{}, apperr.Forbidden(op, "report %s belongs to another user", id)
	}

	next := current
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		next.Category = *patch.Category
	}
	if patch.Latitude != nil {
		next.Latitude = patch.Latitude
	}
	if patch.Longitude != nil {
		next.Longitude = patch.Longitude
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}

	var stale string
	if patch.PhotoURI != "" && patch.PhotoURI != current.PhotoURI {
		photo, err := s.blobs.CopyFrom(ctx, patch.PhotoURI, photoName(id, patch.PhotoURI))
		if err != nil {
			return models.Report{}, err
		}
		if photo != current.PhotoURI && ownsPhoto(id, current.PhotoURI) {
			stale = current.PhotoURI
		}
		next.PhotoURI = photo
	}

	all[idx] = next
	if err := s.repo.Save(ctx, all); err != nil {
		if next.PhotoURI != current.PhotoURI {
			s.discard(next.PhotoURI)
		}
		return models.Report{}, err
	}
	if stale != "" {
		s.discard(stale)
	}

	s.log.Info("Report updated", zap.String("id", id))
	return next, nil
}

// Delete removes the report from the index, then drops its photo in the
// background. A missing id is not an error.
func (s *ReportService) Delete(ctx context.Context, uid, id string) error {
	const op = "reports.delete"

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return nil
	}
	victim := all[idx]
	if uid != "" && victim.UID != uid {
		return apperr.Forbidden(op, "report %s belongs to another user", id)
	}

	rest := append(all[:idx:idx], all[idx+1:]...)
	if err := s.repo.Save(ctx, rest); err != nil {
		return err
	}

	if ownsPhoto(id, victim.PhotoURI) {
		s.discard(victim.PhotoURI)
	}
	s.log.Info("Report deleted", zap.String("id", id))
	return nil
}

// discard deletes a blob without blocking the caller; failures are only logged
func (s *ReportService) discard(blobPath string) {
	if blobPath == "" {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.blobs.Delete(ctx, blobPath); err != nil {
			s.log.Warn("Failed to delete photo", zap.String("path", blobPath), zap.Error(err))
		}
	}()
}

// ExportToFile writes every report as an indented JSON array to
// exports/reports-YYYYMMDD-HHMMSS.json
func (s *ReportService) ExportToFile(ctx context.Context) (models.ExportResult, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return models.ExportResult{}, err
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return models.ExportResult{}, fmt.Errorf("failed to encode export: %w", err)
	}

	name := fmt.Sprintf("exports/reports-%s.json", s.now().Format("20060102-150405"))
	blobPath, err := s.blobs.Write(ctx, name, data)
	if err != nil {
		return models.ExportResult{}, err
	}

	s.log.Info("Reports exported", zap.String("path", blobPath), zap.Int("count", len(all)))
	return models.ExportResult{Path: blobPath, Count: len(all)}, nil
}

// ImportFromFile merges a previously exported file read from the blob store
func (s *ReportService) ImportFromFile(ctx context.Context, uid, blobPath string) (models.ImportResult, error) {
	data, err := s.blobs.Read(ctx, blobPath)
	if err != nil {
		return models.ImportResult{}, err
	}
	return s.importBytes(ctx, uid, data)
}

// Import merges a JSON array of reports read from r. Rows without a uid are
// attributed to uid, or to guest when uid is "". Incoming rows overwrite
// stored rows with the same id, except that a non-system caller (uid != "")
// cannot overwrite a row owned by someone else: such rows are skipped.
func (s *ReportService) Import(ctx context.Context, uid string, r io.Reader) (models.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.ImportResult{}, apperr.Storage("reports.import", err)
	}
	return s.importBytes(ctx, uid, data)
}

func (s *ReportService) importBytes(ctx context.Context, uid string, data []byte) (models.ImportResult, error) {
	const op = "reports.import"

	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return models.ImportResult{}, apperr.Format(op, err, "import file is not valid JSON")
	}
	items, ok := parsed.([]interface{})
	if !ok {
		return models.ImportResult{}, apperr.Format(op, nil, "import file must contain a JSON array")
	}
	owner := uid
	if owner == "" {
		owner = models.GuestUID
	}
	incoming := repository.NormalizeAll(items, owner, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := s.repo.List(ctx)
	if err != nil {
		return models.ImportResult{}, err
	}
	pos := make(map[string]int, len(merged))
	for i, r := range merged {
		pos[r.ID] = i
	}

	added, skipped := 0, 0
	for _, r := range incoming {
		if i, exists := pos[r.ID]; exists {
			if uid != "" && merged[i].UID != uid {
				skipped++
				continue
			}
			merged[i] = r
			continue
		}
		pos[r.ID] = len(merged)
		merged = append(merged, r)
		added++
	}

	repository.SortByIDDesc(merged)
	if err := s.repo.Save(ctx, merged); err != nil {
		return models.ImportResult{}, err
	}

	s.log.Info("Reports imported",
		zap.Int("incoming", len(incoming)),
		zap.Int("added", added),
		zap.Int("skipped", skipped),
		zap.Int("total", len(merged)))
	return models.ImportResult{Added: added, Skipped: skipped, Total: len(merged)}, nil
}

// nextID derives an id from the clock, bumped past the largest numeric id
// already stored so ids stay unique and increasing
func nextID(now time.Time, existing []models.Report) string {
	id := now.UnixMilli()
	for _, r := range existing {
		if n, err := strconv.ParseInt(r.ID, 10, 64); err == nil && n >= id {
			id = n + 1
		}
	}
	return strconv.FormatInt(id, 10)
}

func photoName(id, src string) string {
	ext := "jpg"
	if m := photoExtPattern.FindStringSubmatch(src); m != nil {
		ext = strings.ToLower(m[1])
	}
	return fmt.Sprintf("reports/%s.%s", id, ext)
}

// ownsPhoto reports whether p is the blob this service stores for report id,
// i.e. ".../reports/<id>.<ext>". Paths carried in from imports that point
// elsewhere are never deleted.
func ownsPhoto(id, p string) bool {
	if p == "" {
		return false
	}
	dir, file := path.Split(filepath.ToSlash(p))
	return path.Base(dir) == "reports" && strings.TrimSuffix(file, path.Ext(file)) == id
}

func indexOf(reports []models.Report, id string) int {
	for i, r := range reports {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func checkCategory(op, category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return models.ReportCategoryOther, nil
	}
	for _, c := range models.ReportCategories {
		if c == category {
			return category, nil
		}
	}
	return "", apperr.Validation(op, "unknown category %q", category)
}

func validStatus(status string) bool {
	switch status {
	case models.ReportStatusPending, models.ReportStatusReviewed, models.ReportStatusResolved:
		return true
	}
	return false
}

func checkCoords(op string, lat, lon *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return apperr.Validation(op, "latitude %v out of range", *lat)
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return apperr.Validation(op, "longitude %v out of range", *lon)
	}
	return nil
}
