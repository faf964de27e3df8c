package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema contains the DDL for all tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		policy       TEXT NOT NULL,
		cpus         INTEGER NOT NULL,
		duration_ns  INTEGER NOT NULL,
		ticks        INTEGER NOT NULL,
		busy_ns      INTEGER NOT NULL,
		idle_ns      INTEGER NOT NULL,
		fairness     REAL NOT NULL,
		global_vtime INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS task_stats (
		run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		task_id     INTEGER NOT NULL,
		name        TEXT NOT NULL,
		weight      INTEGER NOT NULL,
		runtime_ns  INTEGER NOT NULL,
		wait_ns     INTEGER NOT NULL,
		dispatches  INTEGER NOT NULL,
		wakeups     INTEGER NOT NULL,
		vtime       INTEGER NOT NULL,
		share       REAL NOT NULL,
		PRIMARY KEY (run_id, task_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
