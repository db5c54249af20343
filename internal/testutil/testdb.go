package testutil

import (
	"database/sql"
	"testing"

	"github.com/atelierworks/timberline/internal/db"
)

// NewTestDB opens an in-memory SQLite database with the full schema applied
// and closes it when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestUoW wraps a test database in a real UnitOfWork.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
