package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atelierworks/timberline/internal/db"
)

// BreakOnWrite returns a UnitOfWork whose transactions fail on the nth
// ExecContext call with the given error. Reads pass through untouched.
// Rollback tests use it to break multi-write operations such as
// delete-with-reparent or a full sibling reorder partway through.
//
// Writes are counted from 1 within each transaction.
func BreakOnWrite(database *sql.DB, nth int, err error) db.UnitOfWork {
	return &breakingUoW{db: database, nth: nth, err: err}
}

type breakingUoW struct {
	db  *sql.DB
	nth int
	err error
}

func (u *breakingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if fnErr := fn(ctx, &brokenTx{DBTX: tx, nth: u.nth, err: u.err}); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type brokenTx struct {
	db.DBTX
	writes int
	nth    int
	err    error
}

func (t *brokenTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.writes++
	if t.writes == t.nth {
		return nil, t.err
	}
	return t.DBTX.ExecContext(ctx, query, args...)
}
