package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gg.db")

	conn, err := Open(Config{Path: path}, zap.NewNop())
	require.NoError(t, err)

	var versions []int
	require.NoError(t, conn.Select(&versions, "SELECT version FROM migrations ORDER BY version"))
	assert.Equal(t, []int{1, 2}, versions)
	require.NoError(t, conn.Close())

	conn, err = Open(Config{Path: path}, zap.NewNop())
	require.NoError(t, err)
	defer conn.Close()

	var count int
	require.NoError(t, conn.Get(&count, "SELECT COUNT(*) FROM migrations"))
	assert.Equal(t, 2, count)
}

func TestLoadMigrations_Sorted(t *testing.T) {
	conn, err := Open(Config{Path: filepath.Join(t.TempDir(), "gg.db")}, zap.NewNop())
	require.NoError(t, err)
	defer conn.Close()

	migrations, err := NewMigrationManager(conn, zap.NewNop()).LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001_kv_items", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Version)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	conn, err := Open(Config{Path: filepath.Join(t.TempDir(), "gg.db")}, zap.NewNop())
	require.NoError(t, err)
	defer conn.Close()

	boom := errors.New("boom")
	err = Transaction(conn, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO kv_items (key, value) VALUES ('a', '1')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, conn.Get(&count, "SELECT COUNT(*) FROM kv_items"))
	assert.Equal(t, 0, count)

	require.NoError(t, Transaction(conn, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO kv_items (key, value) VALUES ('a', '1')`)
		return err
	}))
	require.NoError(t, conn.Get(&count, "SELECT COUNT(*) FROM kv_items"))
	assert.Equal(t, 1, count)
}
