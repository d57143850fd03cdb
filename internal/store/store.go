// Package store persists lint-run history: every recorded validation
// run of a rules file, with the diagnostics it produced. The CLI
// writes a run per `validate --db` invocation and reads history back
// for `history`.
//
// Storage is SQLite with WAL mode so concurrent readers never block a
// writer.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for lint-run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// Idempotent - safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run is one recorded validation run.
type Run struct {
	ID              string    `json:"id"`
	Game            string    `json:"game"`
	Source          string    `json:"source"`
	RuleCount       int       `json:"rule_count"`
	DiagnosticCount int       `json:"diagnostic_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// RuleDiagnostic attributes one diagnostic to the rule that produced it.
type RuleDiagnostic struct {
	RuleName string `json:"rule_name"`
	Code     string `json:"code"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

// NewRunID generates a time-sortable UUIDv7 run identifier.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RecordRun inserts a run and its diagnostics in one transaction.
// Run.ID must be set (use NewRunID); Run.CreatedAt defaults to now.
func (s *Store) RecordRun(ctx context.Context, run Run, diags []RuleDiagnostic) error {
	if run.ID == "" {
		return fmt.Errorf("record run: missing run ID")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, game, source, rule_count, diagnostic_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Game, run.Source, run.RuleCount, len(diags), run.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	for _, d := range diags {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO diagnostics (run_id, rule_name, code, path, message)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, d.RuleName, d.Code, d.Path, d.Message)
		if err != nil {
			return fmt.Errorf("record diagnostic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game, source, rule_count, diagnostic_count, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.ID, &run.Game, &run.Source, &run.RuleCount, &run.DiagnosticCount, &createdAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("list runs: bad created_at %q: %w", createdAt, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run by ID, or sql.ErrNoRows.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, game, source, rule_count, diagnostic_count, created_at
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Game, &run.Source, &run.RuleCount, &run.DiagnosticCount, &createdAt)
	if err != nil {
		return Run{}, err
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("get run: bad created_at %q: %w", createdAt, err)
	}
	return run, nil
}

// DiagnosticsForRun returns a run's diagnostics in insertion order.
func (s *Store) DiagnosticsForRun(ctx context.Context, runID string) ([]RuleDiagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_name, code, path, message
		FROM diagnostics
		WHERE run_id = ?
		ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("diagnostics for run: %w", err)
	}
	defer rows.Close()

	var diags []RuleDiagnostic
	for rows.Next() {
		var rd RuleDiagnostic
		if err := rows.Scan(&rd.RuleName, &rd.Code, &rd.Path, &rd.Message); err != nil {
			return nil, fmt.Errorf("diagnostics for run: %w", err)
		}
		diags = append(diags, rd)
	}
	return diags, rows.Err()
}
