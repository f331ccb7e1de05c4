// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records conversion runs in a SQLite database so that URLs
// still needing manual review can be listed across runs. The database is
// write-only from the pipeline's point of view: it never decides whether a
// URL is fetched.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/linknotes/internal/pipeline"
	"github.com/pdiddy/linknotes/pkg/types"
)

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// Run describes one conversion run.
type Run struct {
	ID        int64
	StartedAt time.Time
	CSVPath   string
	OutDir    string
	Total     int
	Counts    map[types.Outcome]int
}

// Attempt is the latest recorded outcome for a URL.
type Attempt struct {
	URL     string
	Outcome types.Outcome
	Path    string
	Error   string
	RunID   int64
	RunAt   time.Time
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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
			started_at TEXT NOT NULL,
			csv_path TEXT,
			out_dir TEXT,
			total INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			line INTEGER,
			outcome TEXT NOT NULL,
			path TEXT,
			title TEXT,
			source_url TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_url ON attempts(url)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_run_id ON attempts(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a finished batch as a new run and returns its ID.
func (s *Store) Record(ctx context.Context, startedAt time.Time, csvPath, outDir string, result pipeline.BatchResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, csv_path, out_dir, total) VALUES (?, ?, ?, ?)`,
		startedAt.UTC().Format(time.RFC3339Nano), csvPath, outDir, result.Total)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO attempts (run_id, url, line, outcome, path, title, source_url, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range result.Items {
		if _, err := stmt.ExecContext(ctx, runID, it.URL, it.Line, string(it.Outcome),
			it.Path, it.Title, it.SourceURL, it.Error); err != nil {
			return 0, fmt.Errorf("inserting attempt for %s: %w", it.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}
