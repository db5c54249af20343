package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMigratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openMigratedDB(t)

	// Run migrations a second time — should succeed without error.
	err := Migrate(db)
	require.NoError(t, err)

	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openMigratedDB(t)

	expected := []string{"projects", "schedule_items", "item_links", "dependencies"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openMigratedDB(t)

	expected := []string{
		"idx_schedule_items_project",
		"idx_schedule_items_parent",
		"idx_dependencies_project",
		"idx_dependencies_source",
		"idx_dependencies_target",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_SelfDependencyRejectedBySchema(t *testing.T) {
	db := openMigratedDB(t)

	_, err := db.Exec(`INSERT INTO projects (id, name, created_at, updated_at)
		VALUES ('p1', 'Loft Build-Out', '2026-01-01', '2026-01-01')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO schedule_items (id, project_id, name, kind, start_date, end_date, created_at, updated_at)
		VALUES ('i1', 'p1', 'Veneer panels', 'task', '2026-01-02', '2026-01-05', '2026-01-01', '2026-01-01')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO dependencies (id, project_id, source_id, target_id, type, lag_days, created_at, updated_at)
		VALUES ('d1', 'p1', 'i1', 'i1', 0, 0, '2026-01-01', '2026-01-01')`)
	assert.Error(t, err, "schema CHECK should reject self-referencing dependency")
}

func TestMigrate_ForeignKeysEnforced(t *testing.T) {
	db := openMigratedDB(t)

	_, err := db.Exec(`INSERT INTO schedule_items (id, project_id, name, kind, start_date, end_date, created_at, updated_at)
		VALUES ('i1', 'missing', 'Orphan', 'task', '2026-01-02', '2026-01-05', '2026-01-01', '2026-01-01')`)
	assert.Error(t, err, "insert with unknown project_id should fail")
}
