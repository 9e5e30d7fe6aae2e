// CLAUDE:SUMMARY SQLite append-only log of resolutions for later inspection: what was asked, what won, why.
// Package history persists every resolution outcome to SQLite so drift
// can be inspected after the fact: which anchors fire, which selectors
// win, and how stability trends over time.
//
// The driver is registered by the importer:
//
//	import _ "modernc.org/sqlite"
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	ts         TEXT NOT NULL,
	url        TEXT NOT NULL,
	hint       TEXT NOT NULL,
	anchor_id  TEXT,
	selector   TEXT NOT NULL,
	score      INTEGER,
	reasons    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_resolutions_ts ON resolutions(ts);
CREATE INDEX IF NOT EXISTS idx_resolutions_anchor ON resolutions(anchor_id);
`

// Entry is one recorded resolution.
type Entry struct {
	ID       int64     `json:"id"`
	Time     time.Time `json:"time"`
	URL      string    `json:"url"`
	Hint     string    `json:"hint"`
	AnchorID string    `json:"anchorId,omitempty"`
	Selector string    `json:"selector"`
	Score    int       `json:"score"`
	Reasons  []string  `json:"reasons"`
}

// Store is the history database handle.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path with WAL and a
// write-safe busy timeout, and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens an in-memory history store for tests.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("history: open memory: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record appends one resolution outcome.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	reasons, err := json.Marshal(e.Reasons)
	if err != nil {
		return fmt.Errorf("history: marshal reasons: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resolutions (ts, url, hint, anchor_id, selector, score, reasons)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Time.Format(time.RFC3339Nano), e.URL, e.Hint, nullable(e.AnchorID), e.Selector, e.Score, string(reasons))
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Recent returns the latest n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, url, hint, COALESCE(anchor_id, ''), selector, COALESCE(score, 0), reasons
		 FROM resolutions ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts, reasons string
		if err := rows.Scan(&e.ID, &ts, &e.URL, &e.Hint, &e.AnchorID, &e.Selector, &e.Score, &reasons); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			e.Time = t
		}
		if err := json.Unmarshal([]byte(reasons), &e.Reasons); err != nil {
			// Reasons are advisory; a malformed row should not hide the
			// rest of the log.
			e.Reasons = []string{"unreadable reasons: " + strings.TrimSpace(reasons)}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ByAnchor returns the latest n entries for one anchor, newest first.
func (s *Store) ByAnchor(ctx context.Context, anchorID string, n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, url, hint, COALESCE(anchor_id, ''), selector, COALESCE(score, 0), reasons
		 FROM resolutions WHERE anchor_id = ? ORDER BY id DESC LIMIT ?`, anchorID, n)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts, reasons string
		if err := rows.Scan(&e.ID, &ts, &e.URL, &e.Hint, &e.AnchorID, &e.Selector, &e.Score, &reasons); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			e.Time = t
		}
		_ = json.Unmarshal([]byte(reasons), &e.Reasons)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
