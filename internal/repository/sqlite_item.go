package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atelierworks/timberline/internal/db"
	"github.com/atelierworks/timberline/internal/domain"
)

// itemColumns is the canonical SELECT column list for schedule_items.
const itemColumns = `id, project_id, external_id, name, kind, phase_key,
		start_date, end_date, parent_id, hierarchy_level, sort_order,
		progress_override, completed, priority, editable, color,
		created_at, updated_at`

// SQLiteScheduleItemRepo implements ScheduleItemRepo against SQLite.
type SQLiteScheduleItemRepo struct {
	db db.DBTX
}

// NewSQLiteScheduleItemRepo creates a new SQLiteScheduleItemRepo.
func NewSQLiteScheduleItemRepo(conn db.DBTX) *SQLiteScheduleItemRepo {
	return &SQLiteScheduleItemRepo{db: conn}
}

func (r *SQLiteScheduleItemRepo) Create(ctx context.Context, item *domain.ScheduleItem) error {
	query := `INSERT INTO schedule_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var phaseKey interface{}
	if item.PhaseKey != nil {
		phaseKey = string(*item.PhaseKey)
	}
	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.ProjectID,
		nullableStrToValue(item.ExternalID),
		item.Name,
		string(item.Kind),
		phaseKey,
		item.StartDate.Format(dateLayout),
		item.EndDate.Format(dateLayout),
		nullableStrToValue(item.ParentID),
		item.HierarchyLevel,
		item.SortOrder,
		nullableIntToValue(item.ProgressOverride),
		boolToInt(item.Completed),
		int(item.Priority),
		boolToInt(item.Editable),
		item.Color,
		item.CreatedAt.Format(time.RFC3339),
		item.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting schedule item: %w", err)
	}
	if len(item.LinkedIDs) > 0 {
		links := make([]domain.Measurement, 0, len(item.LinkedIDs))
		for _, id := range item.LinkedIDs {
			links = append(links, domain.Measurement{ID: id})
		}
		return r.ReplaceLinks(ctx, item.ID, links)
	}
	return nil
}

func (r *SQLiteScheduleItemRepo) GetByID(ctx context.Context, id string) (*domain.ScheduleItem, error) {
	query := `SELECT ` + itemColumns + ` FROM schedule_items WHERE id = ?`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("loading schedule item: %w", err)
	}
	defer rows.Close()
	items, err := r.scanItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("schedule item not found: %s", id)
	}
	item := items[0]
	item.LinkedIDs, err = r.linkedIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *SQLiteScheduleItemRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.ScheduleItem, error) {
	query := `SELECT ` + itemColumns + ` FROM schedule_items
		WHERE project_id = ? ORDER BY hierarchy_level, sort_order, name`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing schedule items: %w", err)
	}
	defer rows.Close()
	items, err := r.scanItems(rows)
	if err != nil {
		return nil, err
	}
	if err := r.populateLinks(ctx, projectID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLiteScheduleItemRepo) ListChildren(ctx context.Context, parentID string) ([]*domain.ScheduleItem, error) {
	query := `SELECT ` + itemColumns + ` FROM schedule_items
		WHERE parent_id = ? ORDER BY sort_order, name`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing children: %w", err)
	}
	defer rows.Close()
	return r.scanItems(rows)
}

func (r *SQLiteScheduleItemRepo) Update(ctx context.Context, item *domain.ScheduleItem) error {
	query := `UPDATE schedule_items SET
		external_id = ?, name = ?, start_date = ?, end_date = ?,
		parent_id = ?, hierarchy_level = ?, sort_order = ?,
		progress_override = ?, completed = ?, priority = ?, editable = ?,
		color = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableStrToValue(item.ExternalID),
		item.Name,
		item.StartDate.Format(dateLayout),
		item.EndDate.Format(dateLayout),
		nullableStrToValue(item.ParentID),
		item.HierarchyLevel,
		item.SortOrder,
		nullableIntToValue(item.ProgressOverride),
		boolToInt(item.Completed),
		int(item.Priority),
		boolToInt(item.Editable),
		item.Color,
		item.UpdatedAt.Format(time.RFC3339),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating schedule item: %w", err)
	}
	return requireRowAffected(res, "schedule item", item.ID)
}

func (r *SQLiteScheduleItemRepo) UpdateParent(ctx context.Context, id string, parentID *string, level int) error {
	query := `UPDATE schedule_items SET parent_id = ?, hierarchy_level = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableStrToValue(parentID), level, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("reparenting schedule item: %w", err)
	}
	return requireRowAffected(res, "schedule item", id)
}

func (r *SQLiteScheduleItemRepo) UpdateSortOrders(ctx context.Context, orderedIDs []string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for i, id := range orderedIDs {
		res, err := r.db.ExecContext(ctx,
			`UPDATE schedule_items SET sort_order = ?, updated_at = ? WHERE id = ?`,
			i+1, now, id)
		if err != nil {
			return fmt.Errorf("assigning sort order: %w", err)
		}
		if err := requireRowAffected(res, "schedule item", id); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteScheduleItemRepo) ReplaceLinks(ctx context.Context, itemID string, links []domain.Measurement) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM item_links WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("clearing item links: %w", err)
	}
	for _, l := range links {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO item_links (item_id, measurement_id, completion_pct, description) VALUES (?, ?, ?, ?)`,
			itemID, l.ID, l.CompletionPct, l.Description)
		if err != nil {
			return fmt.Errorf("inserting item link: %w", err)
		}
	}
	return nil
}

// ListLinks returns the linked measurement rows for every item of a
// project, keyed by item id.
func (r *SQLiteScheduleItemRepo) ListLinks(ctx context.Context, projectID string) (map[string][]domain.Measurement, error) {
	query := `SELECT l.item_id, l.measurement_id, l.completion_pct, l.description
		FROM item_links l
		JOIN schedule_items i ON l.item_id = i.id
		WHERE i.project_id = ?
		ORDER BY l.item_id, l.measurement_id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing item links: %w", err)
	}
	defer rows.Close()

	links := make(map[string][]domain.Measurement)
	for rows.Next() {
		var itemID string
		var m domain.Measurement
		if err := rows.Scan(&itemID, &m.ID, &m.CompletionPct, &m.Description); err != nil {
			return nil, fmt.Errorf("scanning item link: %w", err)
		}
		links[itemID] = append(links[itemID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item links: %w", err)
	}
	return links, nil
}

func (r *SQLiteScheduleItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting schedule item: %w", err)
	}
	return requireRowAffected(res, "schedule item", id)
}

func (r *SQLiteScheduleItemRepo) linkedIDs(ctx context.Context, itemID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT measurement_id FROM item_links WHERE item_id = ? ORDER BY measurement_id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("loading linked ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning linked id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteScheduleItemRepo) populateLinks(ctx context.Context, projectID string, items []*domain.ScheduleItem) error {
	links, err := r.ListLinks(ctx, projectID)
	if err != nil {
		return err
	}
	for _, item := range items {
		for _, m := range links[item.ID] {
			item.LinkedIDs = append(item.LinkedIDs, m.ID)
		}
	}
	return nil
}

// scanItems scans schedule item rows from *sql.Rows.
func (r *SQLiteScheduleItemRepo) scanItems(rows *sql.Rows) ([]*domain.ScheduleItem, error) {
	var items []*domain.ScheduleItem
	for rows.Next() {
		var item domain.ScheduleItem
		var externalID, phaseKey, parentID sql.NullString
		var progressOverride sql.NullInt64
		var kind, startDate, endDate, createdAt, updatedAt string
		var completed, priority, editable int
		err := rows.Scan(
			&item.ID, &item.ProjectID, &externalID, &item.Name, &kind, &phaseKey,
			&startDate, &endDate, &parentID, &item.HierarchyLevel, &item.SortOrder,
			&progressOverride, &completed, &priority, &editable, &item.Color,
			&createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning schedule item: %w", err)
		}
		item.Kind = domain.ItemKind(kind)
		item.ExternalID = nullableStr(externalID)
		item.ParentID = nullableStr(parentID)
		if phaseKey.Valid && phaseKey.String != "" {
			pk := domain.PhaseKey(phaseKey.String)
			item.PhaseKey = &pk
		}
		if progressOverride.Valid {
			v := int(progressOverride.Int64)
			item.ProgressOverride = &v
		}
		if item.StartDate, err = parseDate(startDate); err != nil {
			return nil, fmt.Errorf("parsing start date: %w", err)
		}
		if item.EndDate, err = parseDate(endDate); err != nil {
			return nil, fmt.Errorf("parsing end date: %w", err)
		}
		item.Completed = intToBool(completed)
		item.Priority = domain.Priority(priority)
		item.Editable = intToBool(editable)
		if item.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if item.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule items: %w", err)
	}
	return items, nil
}
