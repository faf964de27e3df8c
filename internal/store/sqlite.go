// Package store persists simulation run summaries in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dsqsched/internal/logging"
	"dsqsched/internal/sched"
	"dsqsched/internal/sim"

	_ "modernc.org/sqlite"
)

// Run is a stored report plus its identity.
type Run struct {
	ID        string
	CreatedAt time.Time
	Report    sim.Report
}

// SQLiteStore keeps run reports in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// one connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logging.Component(logger, "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// SaveRun stores r under a new run ID and returns the ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, r *sim.Report) (string, error) {
	id := "run_" + uuid.New().String()
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, policy, cpus, duration_ns, ticks, busy_ns, idle_ns, fairness, global_vtime, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.Policy, r.CPUs, int64(r.DurationNS), r.Ticks, int64(r.BusyNS), int64(r.IdleNS),
		r.Fairness, int64(r.GlobalVTime), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, ts := range r.Tasks {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO task_stats (run_id, task_id, name, weight, runtime_ns, wait_ns, dispatches, wakeups, vtime, share)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, int64(ts.ID), ts.Name, ts.Weight, int64(ts.RuntimeNS), int64(ts.WaitNS),
			ts.Dispatches, ts.Wakeups, int64(ts.VTime), ts.Share,
		)
		if err != nil {
			return "", fmt.Errorf("insert task %d: %w", ts.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// GetRun loads a run with its task stats. It returns nil, nil if not found.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, policy, cpus, duration_ns, ticks, busy_ns, idle_ns, fairness, global_vtime, created_at
		 FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id, name, weight, runtime_ns, wait_ns, dispatches, wakeups, vtime, share
		 FROM task_stats WHERE run_id = ? ORDER BY task_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts sim.TaskStats
		var taskID, runtime, wait, vtime int64
		if err := rows.Scan(&taskID, &ts.Name, &ts.Weight, &runtime, &wait,
			&ts.Dispatches, &ts.Wakeups, &vtime, &ts.Share); err != nil {
			return nil, err
		}
		ts.ID = sched.TaskID(taskID)
		ts.RuntimeNS = uint64(runtime)
		ts.WaitNS = uint64(wait)
		ts.VTime = uint64(vtime)
		run.Report.Tasks = append(run.Report.Tasks, ts)
	}
	return run, rows.Err()
}

// ListRuns returns the most recent runs without task stats, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	s.logger.Debug("sql", "op", "select", "table", "runs", "limit", limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, policy, cpus, duration_ns, ticks, busy_ns, idle_ns, fairness, global_vtime, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var duration, busy, idle, vtime int64
	var createdAt string
	err := row.Scan(&run.ID, &run.Report.Policy, &run.Report.CPUs, &duration, &run.Report.Ticks,
		&busy, &idle, &run.Report.Fairness, &vtime, &createdAt)
	if err != nil {
		return nil, err
	}
	run.Report.DurationNS = uint64(duration)
	run.Report.BusyNS = uint64(busy)
	run.Report.IdleNS = uint64(idle)
	run.Report.GlobalVTime = uint64(vtime)
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &run, nil
}
