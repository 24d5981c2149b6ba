// Package history persists validation and changelog runs in SQLite so
// past verdicts stay queryable across sessions and CI runs.
//
// The store is best-effort infrastructure: callers treat a nil store as
// "history disabled" and validators keep working without it.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/decree-tools/decree/internal/report"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Run is one recorded validation or changelog run.
type Run struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Target     string `json:"target"`
	Verdict    string `json:"verdict"`
	Violations int    `json:"violations"`
	CreatedAt  string `json:"created_at"`
}

// ViolationRow is a stored violation joined with its run.
type ViolationRow struct {
	RunID     string `json:"run_id"`
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Rule      string `json:"rule"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// Stats holds aggregate history statistics.
type Stats struct {
	TotalRuns       int `json:"total_runs"`
	TotalViolations int `json:"total_violations"`
	FailedRuns      int `json:"failed_runs"`
}

// Config holds history store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig stores history under ~/.decree.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".decree")}
}

// Store is the run history engine backed by SQLite + FTS5.
type Store struct {
	db *sql.DB
}

// New creates a Store, creating the data directory if needed, opening
// SQLite with WAL mode, and running migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "history.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id              TEXT PRIMARY KEY,
			kind            TEXT NOT NULL,
			target          TEXT NOT NULL,
			verdict         TEXT NOT NULL,
			violation_count INTEGER NOT NULL DEFAULT 0,
			created_at      TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_runs_kind    ON runs(kind);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS violations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			path       TEXT NOT NULL,
			rule       TEXT NOT NULL,
			message    TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);

		CREATE INDEX IF NOT EXISTS idx_violations_run  ON violations(run_id);
		CREATE INDEX IF NOT EXISTS idx_violations_rule ON violations(rule);

		CREATE VIRTUAL TABLE IF NOT EXISTS violations_fts USING fts5(
			path,
			rule,
			message,
			content='violations',
			content_rowid='id'
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// RecordRun persists a completed report under a fresh run id. target
// describes what was checked (a directory, a ref range, "stdin").
func (s *Store) RecordRun(rep *report.Report, target string) (string, error) {
	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("history: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO runs (id, kind, target, verdict, violation_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, rep.Kind, target, rep.Verdict(), len(rep.Violations), now,
	)
	if err != nil {
		return "", fmt.Errorf("history: insert run: %w", err)
	}

	for _, v := range rep.Violations {
		res, err := tx.Exec(
			`INSERT INTO violations (run_id, path, rule, message, created_at) VALUES (?, ?, ?, ?, ?)`,
			runID, v.Path, v.Rule, v.Message, now,
		)
		if err != nil {
			return "", fmt.Errorf("history: insert violation: %w", err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return "", fmt.Errorf("history: violation rowid: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO violations_fts (rowid, path, rule, message) VALUES (?, ?, ?, ?)`,
			rowID, v.Path, v.Rule, v.Message,
		)
		if err != nil {
			return "", fmt.Errorf("history: index violation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("history: commit: %w", err)
	}
	return runID, nil
}

// RecentRuns returns the newest runs, optionally filtered by kind.
func (s *Store) RecentRuns(kind string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, kind, target, verdict, violation_count, created_at FROM runs`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Kind, &r.Target, &r.Verdict, &r.Violations, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunViolations returns the stored violations for one run.
func (s *Store) RunViolations(runID string) ([]ViolationRow, error) {
	rows, err := s.db.Query(
		`SELECT v.run_id, r.kind, v.path, v.rule, v.message, v.created_at
		 FROM violations v JOIN runs r ON r.id = v.run_id
		 WHERE v.run_id = ? ORDER BY v.id`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: query violations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanViolations(rows)
}

// SearchViolations runs an FTS5 match over stored violation text.
func (s *Store) SearchViolations(query string, limit int) ([]ViolationRow, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("history: empty search query")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT v.run_id, r.kind, v.path, v.rule, v.message, v.created_at
		 FROM violations_fts f
		 JOIN violations v ON v.id = f.rowid
		 JOIN runs r ON r.id = v.run_id
		 WHERE violations_fts MATCH ?
		 ORDER BY rank LIMIT ?`, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("history: search violations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanViolations(rows)
}

// Stats returns aggregate counts over all recorded history.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	row := s.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM runs),
		(SELECT COUNT(*) FROM violations),
		(SELECT COUNT(*) FROM runs WHERE verdict = 'fail')`)
	if err := row.Scan(&st.TotalRuns, &st.TotalViolations, &st.FailedRuns); err != nil {
		return Stats{}, fmt.Errorf("history: stats: %w", err)
	}
	return st, nil
}

func scanViolations(rows *sql.Rows) ([]ViolationRow, error) {
	var out []ViolationRow
	for rows.Next() {
		var v ViolationRow
		if err := rows.Scan(&v.RunID, &v.Kind, &v.Path, &v.Rule, &v.Message, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan violation: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ftsQuery quotes each term so user input with FTS5 operators ("--since",
// paths with slashes) cannot break the MATCH expression.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
