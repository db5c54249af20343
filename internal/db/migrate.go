package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema statements. Every statement is IF NOT EXISTS, so
// re-running the full list on an existing database is a no-op.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		client_name TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'active'
		            CHECK(status IN ('active','archived')),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS schedule_items (
		id                TEXT PRIMARY KEY,
		project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		external_id       TEXT,
		name              TEXT NOT NULL,
		kind              TEXT NOT NULL
		                  CHECK(kind IN ('phase','task','milestone')),
		phase_key         TEXT
		                  CHECK(phase_key IS NULL OR phase_key IN
		                        ('design','production','shipping','installation')),
		start_date        TEXT NOT NULL,
		end_date          TEXT NOT NULL,
		parent_id         TEXT REFERENCES schedule_items(id),
		hierarchy_level   INTEGER NOT NULL DEFAULT 0,
		sort_order        INTEGER NOT NULL DEFAULT 0,
		progress_override INTEGER
		                  CHECK(progress_override IS NULL OR
		                        (progress_override >= 0 AND progress_override <= 100)),
		completed         INTEGER NOT NULL DEFAULT 0,
		priority          INTEGER NOT NULL DEFAULT 2
		                  CHECK(priority BETWEEN 1 AND 4),
		editable          INTEGER NOT NULL DEFAULT 1,
		color             TEXT NOT NULL DEFAULT '',
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_schedule_items_project ON schedule_items(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_items_parent ON schedule_items(parent_id)`,

	`CREATE TABLE IF NOT EXISTS item_links (
		item_id        TEXT NOT NULL REFERENCES schedule_items(id) ON DELETE CASCADE,
		measurement_id TEXT NOT NULL,
		completion_pct INTEGER NOT NULL DEFAULT 0
		               CHECK(completion_pct >= 0 AND completion_pct <= 100),
		description    TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (item_id, measurement_id)
	)`,

	`CREATE TABLE IF NOT EXISTS dependencies (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		source_id  TEXT NOT NULL REFERENCES schedule_items(id) ON DELETE CASCADE,
		target_id  TEXT NOT NULL REFERENCES schedule_items(id) ON DELETE CASCADE,
		type       INTEGER NOT NULL DEFAULT 0 CHECK(type BETWEEN 0 AND 3),
		lag_days   INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (source_id != target_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_dependencies_project ON dependencies(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dependencies_source ON dependencies(source_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dependencies_target ON dependencies(target_id)`,
}
