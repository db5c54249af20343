package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/atelierworks/timberline/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`INSERT INTO projects (id, name, created_at, updated_at)
		VALUES ('p1', 'Showroom Refit', '2026-01-01', '2026-01-01')`)
	require.NoError(t, err)

	return db.NewSQLiteUnitOfWork(database)
}

func countItems(t *testing.T, uow *db.SQLiteUnitOfWork) int {
	t.Helper()
	var n int
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedule_items`).Scan(&n)
	})
	require.NoError(t, err)
	return n
}

func insertItem(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO schedule_items
		(id, project_id, name, kind, start_date, end_date, created_at, updated_at)
		VALUES (?, 'p1', 'Cabinet run', 'task', '2026-01-02', '2026-01-05', '2026-01-01', '2026-01-01')`, id)
	return err
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertItem(ctx, tx, "i1")
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countItems(t, uow))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertItem(ctx, tx, "i1"); err != nil {
			return err
		}
		return fmt.Errorf("simulated failure")
	})
	require.Error(t, err)

	assert.Equal(t, 0, countItems(t, uow), "insert should be rolled back")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			if err := insertItem(ctx, tx, "i1"); err != nil {
				return err
			}
			panic("boom")
		})
	})

	assert.Equal(t, 0, countItems(t, uow), "insert should be rolled back after panic")
}
