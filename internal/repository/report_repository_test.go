package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jengzang/greenguardian-backend-go/internal/kv"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func decode(t *testing.T, s string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestNormalizeReport_Defaults(t *testing.T) {
	rep, ok := NormalizeReport(decode(t, `{
		"id":"1700000000000","description":"smoke near market",
		"category":"smoke","photoUri":"/data/reports/1700000000000.jpg"}`), "u-1", fixedNow)
	require.True(t, ok)
	assert.Equal(t, "u-1", rep.UID)
	assert.Equal(t, models.ReportStatusPending, rep.Status)
	assert.Equal(t, "2025-03-01T08:00:00Z", rep.CreatedAt)
	assert.Nil(t, rep.Latitude)
	assert.Nil(t, rep.Longitude)
}

func TestNormalizeReport_KeepsFields(t *testing.T) {
	rep, ok := NormalizeReport(decode(t, `{
		"id":"5","uid":"u-9","description":"d","category":"whatever",
		"photoUri":"p.jpg","latitude":10.5,"longitude":"106.7",
		"createdAt":"2024-01-01T00:00:00Z","status":"resolved"}`), "u-1", fixedNow)
	require.True(t, ok)
	assert.Equal(t, "u-9", rep.UID)
	assert.Equal(t, "whatever", rep.Category, "category is not restricted")
	require.NotNil(t, rep.Latitude)
	assert.Equal(t, 10.5, *rep.Latitude)
	assert.Nil(t, rep.Longitude, "string coordinate is dropped")
	assert.Equal(t, "2024-01-01T00:00:00Z", rep.CreatedAt)
	assert.Equal(t, models.ReportStatusResolved, rep.Status)
}

func TestNormalizeReport_Rejects(t *testing.T) {
	cases := map[string]string{
		"not an object":    `"hello"`,
		"null":             `null`,
		"numeric id":       `{"id":5,"description":"d","category":"c","photoUri":"p"}`,
		"missing desc":     `{"id":"5","category":"c","photoUri":"p"}`,
		"missing category": `{"id":"5","description":"d","photoUri":"p"}`,
		"empty photo":      `{"id":"5","description":"d","category":"c","photoUri":""}`,
		"missing photo":    `{"id":"5","description":"d","category":"c"}`,
		"non-string photo": `{"id":"5","description":"d","category":"c","photoUri":1}`,
	}
	for name, raw := range cases {
		_, ok := NormalizeReport(decode(t, raw), models.GuestUID, fixedNow)
		assert.False(t, ok, name)
	}
}

func TestSortByIDDesc(t *testing.T) {
	reports := []models.Report{{ID: "9"}, {ID: "legacy-a"}, {ID: "1700000000001"}, {ID: "10"}, {ID: "legacy-b"}}
	SortByIDDesc(reports)

	var ids []string
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"1700000000001", "10", "9", "legacy-b", "legacy-a"}, ids)
}

func TestReportRepository_ListSkipsMalformedAndBackfills(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.SetItem(ctx, ReportsKey, `[
		{"id":"1","description":"old","category":"trash","photoUri":"a.jpg"},
		{"id":"3","uid":"u-1","description":"new","category":"water","photoUri":"c.jpg","status":"reviewed"},
		{"id":"2","description":"no photo","category":"trash"},
		42
	]`))

	repo := NewReportRepository(store, zap.NewNop()).WithClock(func() time.Time { return fixedNow })
	before, _, err := store.GetItem(ctx, ReportsKey)
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "3", list[0].ID)
	assert.Equal(t, "1", list[1].ID)
	assert.Equal(t, models.GuestUID, list[1].UID)

	after, _, err := store.GetItem(ctx, ReportsKey)
	require.NoError(t, err)
	assert.Equal(t, before, after, "listing never writes the index")

	require.NoError(t, repo.EnsureSchema(ctx))
	raw, _, err := store.GetItem(ctx, ReportsKey)
	require.NoError(t, err)
	var stored []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 2, "back-fill rewrites the index with valid rows only")
	for _, row := range stored {
		assert.NotEmpty(t, row["uid"])
		assert.NotEmpty(t, row["status"])
	}
}

func TestReportRepository_CorruptIndexReadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.SetItem(ctx, ReportsKey, `{"oops":true}`))

	list, err := NewReportRepository(store, zap.NewNop()).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReportRepository_SaveEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, NewReportRepository(store, zap.NewNop()).Save(ctx, nil))

	raw, ok, err := store.GetItem(ctx, ReportsKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
}
