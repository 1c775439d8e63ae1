// Package history persists build and publish records in a local SQLite
// database so past runs can be inspected from the CLI.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one build (and optional publish) run.
type Record struct {
	ID        int64
	BuildID   string
	StartedAt time.Time
	Duration  time.Duration
	Posts     int
	Pages     int
	Outcome   string
	Trigger   string // manual, watch, schedule
	Commit    string // publish commit hash, empty when not published
	Error     string // failure message, empty on success
}

// Store wraps the SQLite database holding build history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the history database at dbPath. Use
// ":memory:" for an in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		posts INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		trigger_kind TEXT NOT NULL DEFAULT 'manual',
		commit_hash TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores one record.
func (s *Store) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started_at, duration_ms, posts, pages, outcome, trigger_kind, commit_hash, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BuildID, r.StartedAt.Unix(), r.Duration.Milliseconds(), r.Posts, r.Pages,
		r.Outcome, orDefault(r.Trigger, "manual"), r.Commit, r.Error,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, build_id, started_at, duration_ms, posts, pages, outcome, trigger_kind, commit_hash, error
		 FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ByBuildID returns all records for one build identifier.
func (s *Store) ByBuildID(ctx context.Context, buildID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, build_id, started_at, duration_ms, posts, pages, outcome, trigger_kind, commit_hash, error
		 FROM builds WHERE build_id = ? ORDER BY id`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var startedUnix, durationMS int64
		if err := rows.Scan(&r.ID, &r.BuildID, &startedUnix, &durationMS,
			&r.Posts, &r.Pages, &r.Outcome, &r.Trigger, &r.Commit, &r.Error); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		r.StartedAt = time.Unix(startedUnix, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
