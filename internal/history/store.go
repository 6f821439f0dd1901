// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists batch run outcomes in a SQLite ledger so
// that past runs can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/texttopo/pkg/types"
)

const dbFile = "texttopo.db"

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database under dir, creating the
// schema if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			skipped INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			path TEXT NOT NULL,
			status TEXT NOT NULL,
			kind TEXT,
			message TEXT,
			output_path TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun writes one batch report to the ledger and returns the run
// row ID.
func (s *Store) RecordRun(ctx context.Context, root string, started, finished time.Time, r *types.Report) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (root, started_at, finished_at, succeeded, failed, skipped)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		root,
		started.UTC().Format(time.RFC3339Nano),
		finished.UTC().Format(time.RFC3339Nano),
		r.Succeeded, r.Failed, r.Skipped,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (run_id, path, status, kind, message, output_path)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range r.Paths() {
		o := r.Outcomes[p]
		if _, err := stmt.ExecContext(ctx,
			runID, o.Path, string(o.Status), string(o.Kind), o.Message, o.OutputPath,
		); err != nil {
			return 0, fmt.Errorf("inserting outcome %s: %w", o.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RunSummary is one row of the run ledger.
type RunSummary struct {
	ID        int64
	Root      string
	StartedAt time.Time
	Succeeded int
	Failed    int
	Skipped   int
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, started_at, succeeded, failed, skipped
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			started string
		)
		if err := rows.Scan(&r.ID, &r.Root, &started, &r.Succeeded, &r.Failed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Outcomes returns the per-file outcomes recorded for one run, sorted
// by path.
func (s *Store) Outcomes(ctx context.Context, runID int64) ([]types.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, status, kind, message, output_path
		 FROM outcomes WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []types.Outcome
	for rows.Next() {
		var (
			o            types.Outcome
			status, kind string
		)
		if err := rows.Scan(&o.Path, &status, &kind, &o.Message, &o.OutputPath); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Status = types.OutcomeStatus(status)
		o.Kind = types.FailureKind(kind)
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
