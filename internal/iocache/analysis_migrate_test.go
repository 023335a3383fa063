package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/gitspark/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAnalysis_NoneBackend(t *testing.T) {
	err := MigrateAnalysis(schema.NoneBackend, "", -1)
	assert.EqualError(t, err, "migrations are not supported for NoneBackend")
}

func TestMigrateAnalysis_UnsupportedBackend(t *testing.T) {
	err := MigrateAnalysis(schema.DatabaseBackend("oracle"), "", -1)
	assert.Error(t, err)
}

func TestMigrateAnalysis_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, -1))
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, -1), "second run is a no-op")
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, 1))
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, 0))
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, 2))

	// The migrated schema must accept what the store writes.
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	id, err := store.BeginAnalysis("migrated", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordFileStats(id, []schema.FileStatsRecord{{FilePath: "x.go", Language: "Go", RiskBand: "low"}}))
}

func TestMigrateAnalysis_DownDropsTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "down.db")
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, -1))
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, 0))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name LIKE 'gitspark_%' AND name != ?`, migrationsTable).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMigrationDir(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		dir, err := migrationDir(backend)
		require.NoError(t, err)

		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 4, "%s should ship an up and down file per version", backend)
	}
}
