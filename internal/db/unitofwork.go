package db

import (
	"context"
	"database/sql"
	"fmt"
)

// UnitOfWork runs a function inside a single transaction. The callback gets a
// DBTX backed by the open *sql.Tx, so callers build tx-scoped repositories
// from it and every write in the callback commits or rolls back together.
// Multi-table operations (delete-with-reparent, sibling reorders, whole-file
// imports) go through this.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(database *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: database}
}

// WithinTx commits when fn returns nil and rolls back otherwise. A panic in
// fn rolls back before re-panicking.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if fnErr := fn(ctx, tx); fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed (%v) after: %w", rbErr, fnErr)
		}
		return fnErr
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
