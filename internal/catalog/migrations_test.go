package catalog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(DriverName, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestApplyMigrations_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))

	for _, table := range []string{"schema_version", "builds", "notes", "parts", "diagnostics"} {
		assert.True(t, tableExists(t, db, table), "table %s missing", table)
	}

	var version string
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))
	require.NoError(t, ApplyMigrations(ctx, db))

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-applying must not duplicate version rows")
}

func TestRollbackMigration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, db))
	require.NoError(t, RollbackMigration(ctx, db))

	for _, table := range []string{"builds", "notes", "parts", "diagnostics"} {
		assert.False(t, tableExists(t, db, table), "table %s should be dropped", table)
	}
}

func TestRollbackMigration_NothingToRollback(t *testing.T) {
	db := openTestDB(t)

	err := RollbackMigration(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no migrations to rollback")
}
