package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jengzang/greenguardian-backend-go/internal/apperr"
	"github.com/jengzang/greenguardian-backend-go/internal/blob"
	"github.com/jengzang/greenguardian-backend-go/internal/kv"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/jengzang/greenguardian-backend-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reportFixture struct {
	svc   *ReportService
	store *kv.MemoryStore
	blobs *blob.LocalStore
	dir   string
	clock time.Time
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	dir := t.TempDir()
	blobs, err := blob.NewLocalStore(filepath.Join(dir, "data"))
	require.NoError(t, err)

	f := &reportFixture{
		store: kv.NewMemoryStore(),
		blobs: blobs,
		dir:   dir,
		clock: time.Date(2025, 3, 1, 8, 30, 15, 0, time.UTC),
	}
	now := func() time.Time { return f.clock }
	repo := repository.NewReportRepository(f.store, zap.NewNop()).WithClock(now)
	f.svc = NewReportService(repo, blobs, zap.NewNop()).WithClock(now)
	return f
}

// photo writes a source image outside the blob root
func (f *reportFixture) photo(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(p, []byte("img:"+name), 0644))
	return p
}

func ptr(v float64) *float64 { return &v }

func str(v string) *string { return &v }

func TestCreate_RequiresPhoto(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.Create(context.Background(), "u-1", models.ReportDraft{Description: "x", Category: "trash"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_CopiesPhotoAndKeepsCoordsAbsent(t *testing.T) {
	f := newReportFixture(t)
	src := f.photo(t, "IMG_0001.PNG")

	rep, err := f.svc.Create(context.Background(), "", models.ReportDraft{Description: " plastic on the beach ", Category: "trash"}, src)
	require.NoError(t, err)

	assert.Equal(t, "1740817815000", rep.ID)
	assert.Equal(t, models.GuestUID, rep.UID)
	assert.Equal(t, "plastic on the beach", rep.Description)
	assert.Equal(t, models.ReportStatusPending, rep.Status)
	assert.Nil(t, rep.Latitude)
	assert.Nil(t, rep.Longitude)
	assert.Equal(t, filepath.Join(f.blobs.Root(), "reports", "1740817815000.png"), rep.PhotoURI)

	data, err := os.ReadFile(rep.PhotoURI)
	require.NoError(t, err)
	assert.Equal(t, "img:IMG_0001.PNG", string(data))
}

func TestCreate_DefaultsAndValidation(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	src := f.photo(t, "a.jpg")

	rep, err := f.svc.Create(ctx, "u-1", models.ReportDraft{Description: "d"}, src)
	require.NoError(t, err)
	assert.Equal(t, models.ReportCategoryOther, rep.Category)

	_, err = f.svc.Create(ctx, "u-1", models.ReportDraft{Category: "noise"}, src)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.svc.Create(ctx, "u-1", models.ReportDraft{Latitude: ptr(91)}, src)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreate_MissingSourceLeavesIndexUntouched(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.Create(context.Background(), "u-1", models.ReportDraft{Category: "smoke"}, filepath.Join(f.dir, "missing.jpg"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrStorage))

	_, ok, err := f.store.GetItem(context.Background(), repository.ReportsKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreate_NewestFirstWithUniqueIDs(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	src := f.photo(t, "a.jpg")

	var ids []string
	for i := 0; i < 3; i++ {
		rep, err := f.svc.Create(ctx, "u-1", models.ReportDraft{Category: "water"}, src)
		require.NoError(t, err)
		ids = append(ids, rep.ID)
	}
	assert.Equal(t, []string{"1740817815000", "1740817815001", "1740817815002"}, ids)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)
}

func TestListByOwnerAndGet(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	src := f.photo(t, "a.jpg")

	a, err := f.svc.Create(ctx, "u-1", models.ReportDraft{}, src)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "u-2", models.ReportDraft{}, src)
	require.NoError(t, err)

	mine, err := f.svc.ListByOwner(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.ID, mine[0].ID)

	got, ok, err := f.svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a, got)

	_, ok, err = f.svc.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdate_MergesFields(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	rep, err := f.svc.Create(ctx, "u-1", models.ReportDraft{Description: "old", Category: "trash"}, f.photo(t, "a.jpg"))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, "u-1", rep.ID, models.ReportPatch{
		Description: str("new"),
		Status:      str(models.ReportStatusReviewed),
		Latitude:    ptr(10.77),
		Longitude:   ptr(106.70),
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Description)
	assert.Equal(t, "trash", updated.Category)
	assert.Equal(t, models.ReportStatusReviewed, updated.Status)
	require.NotNil(t, updated.Latitude)
	assert.Equal(t, 10.77, *updated.Latitude)
	assert.Equal(t, rep.PhotoURI, updated.PhotoURI)

	got, _, err := f.svc.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdate_ReplacesPhoto(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	rep, err := f.svc.Create(ctx, "u-1", models.ReportDraft{}, f.photo(t, "a.jpg"))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, "u-1", rep.ID, models.ReportPatch{PhotoURI: f.photo(t, "b.webp")})
	require.NoError(t, err)
	f.svc.Wait()

	assert.True(t, strings.HasSuffix(updated.PhotoURI, rep.ID+".webp"))
	assert.FileExists(t, updated.PhotoURI)
	assert.NoFileExists(t, rep.PhotoURI)
}

func TestUpdate_SameExtensionKeepsNewPhoto(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	rep, err := f.svc.Create(ctx, "u-1", models.ReportDraft{}, f.photo(t, "a.jpg"))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, "u-1", rep.ID, models.ReportPatch{PhotoURI: f.photo(t, "b.jpg")})
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, rep.PhotoURI, updated.PhotoURI)
	data, err := os.ReadFile(updated.PhotoURI)
	require.NoError(t, err)
	assert.Equal(t, "img:b.jpg", string(data))
}

func TestUpdate_Errors(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	rep, err := f.svc.Create(ctx, "u-1", models.ReportDraft{}, f.photo(t, "a.jpg"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "u-1", "404", models.ReportPatch{Description: str("x")})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = f.svc.Update(ctx, "u-2", rep.ID, models.ReportPatch{Description: str("x")})
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = f.svc.Update(ctx, "u-1", rep.ID, models.ReportPatch{Status: str("closed")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.svc.Update(ctx, "", rep.ID, models.ReportPatch{Description: str("by system")})
	assert.NoError(t, err)
}

func TestDelete_RemovesReportAndPhoto(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	rep, err := f.svc.Create(ctx, "u-1", models.ReportDraft{}, f.photo(t, "a.jpg"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "u-1", rep.ID))
	f.svc.Wait()

	_, ok, err := f.svc.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoFileExists(t, rep.PhotoURI)

	assert.NoError(t, f.svc.Delete(ctx, "u-1", rep.ID), "deleting a missing id is a no-op")
}

func TestDelete_ForbiddenForOtherUser(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	rep, err := f.svc.Create(ctx, "u-1", models.ReportDraft{}, f.photo(t, "a.jpg"))
	require.NoError(t, err)

	err = f.svc.Delete(ctx, "u-2", rep.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, ok, err := f.svc.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestImport_MergesByID(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SetItem(ctx, repository.ReportsKey, `[
		{"id":"1","uid":"u-1","description":"A","category":"trash","photoUri":"a.jpg","createdAt":"2024-01-01T00:00:00Z","status":"pending"},
		{"id":"2","uid":"u-1","description":"B","category":"trash","photoUri":"b.jpg","createdAt":"2024-01-01T00:00:00Z","status":"pending"}
	]`))

	res, err := f.svc.Import(ctx, "u-1", strings.NewReader(`[
		{"id":"2","uid":"u-1","description":"B2","category":"water","photoUri":"b2.jpg","createdAt":"2024-02-01T00:00:00Z","status":"resolved"},
		{"id":"3","description":"C","category":"smoke","photoUri":"c.jpg"},
		{"id":"4","description":"no photo","category":"smoke"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Added: 1, Total: 3}, res)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "B2", list[1].Description)
	assert.Equal(t, "u-1", list[0].UID, "rows without uid go to the importer")
}

func TestImport_CannotTakeOverAnotherUsersReport(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	victim, err := f.svc.Create(ctx, "victim", models.ReportDraft{Description: "mine", Category: "trash"}, f.photo(t, "a.jpg"))
	require.NoError(t, err)

	res, err := f.svc.Import(ctx, "attacker", strings.NewReader(`[
		{"id":"`+victim.ID+`","uid":"attacker","description":"taken","category":"trash","photoUri":"x.jpg"},
		{"id":"7","description":"new","category":"smoke","photoUri":"y.jpg"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Added: 1, Skipped: 1, Total: 2}, res)

	got, ok, err := f.svc.Get(ctx, victim.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, victim, got, "the stored row is left alone")

	err = f.svc.Delete(ctx, "attacker", victim.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	f.svc.Wait()
	assert.FileExists(t, victim.PhotoURI)

	res, err = f.svc.Import(ctx, "", strings.NewReader(`[
		{"id":"`+victim.ID+`","uid":"victim","description":"restored","category":"trash","photoUri":"`+victim.PhotoURI+`"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Skipped, "system imports keep last-writer-wins")
	got, _, err = f.svc.Get(ctx, victim.ID)
	require.NoError(t, err)
	assert.Equal(t, "restored", got.Description)
}

func TestDelete_LeavesForeignPhotoPathsAlone(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	owner, err := f.svc.Create(ctx, "u-1", models.ReportDraft{}, f.photo(t, "a.jpg"))
	require.NoError(t, err)

	outside := filepath.Join(f.dir, "victim.db")
	require.NoError(t, os.WriteFile(outside, []byte("db"), 0644))
	sibling := filepath.Join(f.dir, "other.txt")
	require.NoError(t, os.WriteFile(sibling, []byte("txt"), 0644))
	lookalike := filepath.Join(f.dir, "reports", "12.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(lookalike), 0755))
	require.NoError(t, os.WriteFile(lookalike, []byte("jpg"), 0644))

	rows := map[string]string{
		"9":  outside,
		"10": "../other.txt",
		"11": owner.PhotoURI,
		"12": "../reports/12.jpg",
	}
	for id, photo := range rows {
		body, err := json.Marshal([]map[string]string{{
			"id": id, "uid": "attacker", "description": "d", "category": "trash", "photoUri": photo,
		}})
		require.NoError(t, err)
		_, err = f.svc.Import(ctx, "attacker", bytes.NewReader(body))
		require.NoError(t, err)
	}

	for id := range rows {
		require.NoError(t, f.svc.Delete(ctx, "attacker", id))
	}
	f.svc.Wait()

	assert.FileExists(t, outside)
	assert.FileExists(t, sibling)
	assert.FileExists(t, lookalike, "named like a photo but outside the store")
	assert.FileExists(t, owner.PhotoURI, "another report's photo is not this row's blob")
	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "index removal still happens")
	assert.Equal(t, owner.ID, list[0].ID)
}

func TestUpdate_ForeignPhotoPathIsNotDeleted(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	outside := filepath.Join(f.dir, "victim.db")
	require.NoError(t, os.WriteFile(outside, []byte("db"), 0644))

	_, err := f.svc.Import(ctx, "attacker", strings.NewReader(
		`[{"id":"9","uid":"attacker","description":"d","category":"trash","photoUri":"`+outside+`"}]`))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, "attacker", "9", models.ReportPatch{PhotoURI: f.photo(t, "b.png")})
	require.NoError(t, err)
	f.svc.Wait()

	assert.FileExists(t, outside)
	assert.Equal(t, filepath.Join(f.blobs.Root(), "reports", "9.png"), updated.PhotoURI)
}

// failingStore accepts reads but fails every write once armed
type failingStore struct {
	*kv.MemoryStore
	failWrites bool
}

func (s *failingStore) SetItem(ctx context.Context, key, value string) error {
	if s.failWrites {
		return apperr.Storage("kv.set", errors.New("disk full"))
	}
	return s.MemoryStore.SetItem(ctx, key, value)
}

func TestUpdate_SaveFailureDiscardsNewPhoto(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	store := &failingStore{MemoryStore: kv.NewMemoryStore()}
	now := func() time.Time { return f.clock }
	svc := NewReportService(repository.NewReportRepository(store, zap.NewNop()).WithClock(now), f.blobs, zap.NewNop()).WithClock(now)

	rep, err := svc.Create(ctx, "u-1", models.ReportDraft{}, f.photo(t, "a.jpg"))
	require.NoError(t, err)

	store.failWrites = true
	_, err = svc.Update(ctx, "u-1", rep.ID, models.ReportPatch{PhotoURI: f.photo(t, "b.webp")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrStorage))
	svc.Wait()

	assert.FileExists(t, rep.PhotoURI, "the stored photo stays")
	assert.NoFileExists(t, filepath.Join(f.blobs.Root(), "reports", rep.ID+".webp"))
}

func TestEnsureSchema_BackfillsUnderLock(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	legacy := `[{"id":"1","description":"old","category":"trash","photoUri":"a.jpg"}]`
	require.NoError(t, f.store.SetItem(ctx, repository.ReportsKey, legacy))

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.GuestUID, list[0].UID)
	raw, _, err := f.store.GetItem(ctx, repository.ReportsKey)
	require.NoError(t, err)
	assert.Equal(t, legacy, raw, "reads do not rewrite the index")

	require.NoError(t, f.svc.EnsureSchema(ctx))
	raw, _, err = f.store.GetItem(ctx, repository.ReportsKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"status":"pending"`)
	assert.Contains(t, raw, `"uid":"guest"`)
}

func TestOwnsPhoto(t *testing.T) {
	assert.True(t, ownsPhoto("9", "/srv/data/reports/9.jpg"))
	assert.True(t, ownsPhoto("9", "s3://greenguardian/reports/9.webp"))
	assert.False(t, ownsPhoto("9", "/srv/data/reports/10.jpg"))
	assert.False(t, ownsPhoto("9", "/srv/data/9.jpg"))
	assert.False(t, ownsPhoto("9", "/tmp/victim.db"))
	assert.False(t, ownsPhoto("9", ""))
}

func TestImport_MalformedLeavesStoreUnchanged(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "u-1", models.ReportDraft{}, f.photo(t, "a.jpg"))
	require.NoError(t, err)
	before, _, err := f.store.GetItem(ctx, repository.ReportsKey)
	require.NoError(t, err)

	for _, body := range []string{`not json`, `{"id":"1"}`, `"str"`} {
		_, err := f.svc.Import(ctx, "u-1", strings.NewReader(body))
		require.Error(t, err, body)
		assert.True(t, errors.Is(err, apperr.ErrFormat), body)
	}

	after, _, err := f.store.GetItem(ctx, repository.ReportsKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newReportFixture(t)
	ctx := context.Background()
	_, err := src.svc.Create(ctx, "u-1", models.ReportDraft{Description: "a", Category: "trash", Latitude: ptr(10.8), Longitude: ptr(106.6)}, src.photo(t, "a.jpg"))
	require.NoError(t, err)
	_, err = src.svc.Create(ctx, "u-2", models.ReportDraft{Description: "b", Category: "smoke"}, src.photo(t, "b.jpg"))
	require.NoError(t, err)

	exported, err := src.svc.ExportToFile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, exported.Count)
	assert.Equal(t, filepath.Join(src.blobs.Root(), "exports", "reports-20250301-083015.json"), exported.Path)

	data, err := os.ReadFile(exported.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"), "export is indented with two spaces")

	dst := newReportFixture(t)
	_, err = dst.blobs.Write(ctx, "exports/incoming.json", data)
	require.NoError(t, err)
	res, err := dst.svc.ImportFromFile(ctx, "someone-else", "exports/incoming.json")
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Added: 2, Total: 2}, res)

	want, err := src.svc.List(ctx)
	require.NoError(t, err)
	got, err := dst.svc.List(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImportFromFile_RefusesPathsOutsideStore(t *testing.T) {
	f := newReportFixture(t)
	outside := filepath.Join(f.dir, "elsewhere.json")
	require.NoError(t, os.WriteFile(outside, []byte(`[]`), 0644))

	_, err := f.svc.ImportFromFile(context.Background(), "u-1", outside)
	assert.ErrorIs(t, err, blob.ErrOutsideStore)
}

func TestExport_EmptyStore(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	exported, err := f.svc.ExportToFile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, exported.Count)

	res, err := f.svc.ImportFromFile(ctx, "u-1", exported.Path)
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Added: 0, Total: 0}, res)
}

func TestPhotoName(t *testing.T) {
	cases := map[string]string{
		"/tmp/a.JPEG":                      "reports/1.jpeg",
		"file:///tmp/cache/b.png?ts=17000": "reports/1.png",
		"/tmp/noext":                       "reports/1.jpg",
		"content://media/42":               "reports/1.jpg",
	}
	for src, want := range cases {
		assert.Equal(t, want, photoName("1", src), src)
	}
}
