package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atelierworks/timberline/internal/db"
	"github.com/atelierworks/timberline/internal/domain"
)

// dependencyColumns is the canonical SELECT column list for dependencies.
const dependencyColumns = `id, project_id, source_id, target_id, type, lag_days, created_at, updated_at`

// SQLiteDependencyRepo implements DependencyRepo against SQLite.
type SQLiteDependencyRepo struct {
	db db.DBTX
}

// NewSQLiteDependencyRepo creates a new SQLiteDependencyRepo.
func NewSQLiteDependencyRepo(conn db.DBTX) *SQLiteDependencyRepo {
	return &SQLiteDependencyRepo{db: conn}
}

func (r *SQLiteDependencyRepo) Create(ctx context.Context, d *domain.Dependency) error {
	query := `INSERT INTO dependencies (` + dependencyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.ProjectID, d.SourceID, d.TargetID, int(d.Type), d.LagDays,
		d.CreatedAt.Format(time.RFC3339), d.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting dependency: %w", err)
	}
	return nil
}

func (r *SQLiteDependencyRepo) GetByID(ctx context.Context, id string) (*domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE id = ?`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("loading dependency: %w", err)
	}
	defer rows.Close()
	deps, err := r.scanDependencies(rows)
	if err != nil {
		return nil, err
	}
	if len(deps) == 0 {
		return nil, fmt.Errorf("dependency not found: %s", id)
	}
	return deps[0], nil
}

func (r *SQLiteDependencyRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE project_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies: %w", err)
	}
	defer rows.Close()
	return r.scanDependencies(rows)
}

func (r *SQLiteDependencyRepo) ListByItem(ctx context.Context, itemID string) ([]*domain.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies
		WHERE source_id = ? OR target_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, itemID, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies for item: %w", err)
	}
	defer rows.Close()
	return r.scanDependencies(rows)
}

func (r *SQLiteDependencyRepo) Update(ctx context.Context, d *domain.Dependency) error {
	query := `UPDATE dependencies SET type = ?, lag_days = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		int(d.Type), d.LagDays, d.UpdatedAt.Format(time.RFC3339), d.ID)
	if err != nil {
		return fmt.Errorf("updating dependency: %w", err)
	}
	return requireRowAffected(res, "dependency", d.ID)
}

func (r *SQLiteDependencyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dependencies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting dependency: %w", err)
	}
	return requireRowAffected(res, "dependency", id)
}

func (r *SQLiteDependencyRepo) DeleteByItem(ctx context.Context, itemID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM dependencies WHERE source_id = ? OR target_id = ?`, itemID, itemID)
	if err != nil {
		return fmt.Errorf("deleting dependencies for item: %w", err)
	}
	return nil
}

// scanDependencies scans multiple dependency rows from *sql.Rows.
func (r *SQLiteDependencyRepo) scanDependencies(rows *sql.Rows) ([]*domain.Dependency, error) {
	var deps []*domain.Dependency
	for rows.Next() {
		var d domain.Dependency
		var typ int
		var createdAt, updatedAt string
		err := rows.Scan(&d.ID, &d.ProjectID, &d.SourceID, &d.TargetID, &typ, &d.LagDays, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning dependency: %w", err)
		}
		d.Type = domain.DependencyType(typ)
		if d.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if d.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		deps = append(deps, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dependencies: %w", err)
	}
	return deps, nil
}
