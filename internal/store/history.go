// Package store persists client-side convenience data in SQLite. Currently
// that is the view history: which snippets this terminal has opened, so the
// TUI can offer a "recently viewed" list. The server remains authoritative
// for everything about the snippets themselves.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codenest/internal/logging"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryEntry is one recorded snippet visit.
type HistoryEntry struct {
	UUID     string
	Title    string
	ViewedAt time.Time
}

// HistoryStore records recently viewed snippets.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (or creates) the history database at the given path.
func NewHistoryStore(path string) (*HistoryStore, error) {
	logging.Store("Opening history store at %s", path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	s := &HistoryStore{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *HistoryStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS view_history (
		uuid      TEXT PRIMARY KEY,
		title     TEXT NOT NULL DEFAULT '',
		viewed_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_view_history_viewed_at ON view_history(viewed_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// RecordView upserts a visit. Re-viewing a snippet moves it to the top of
// the recent list rather than duplicating it.
func (s *HistoryStore) RecordView(uuid, title string) error {
	_, err := s.db.Exec(`
		INSERT INTO view_history (uuid, title, viewed_at) VALUES (?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET title = excluded.title, viewed_at = excluded.viewed_at`,
		uuid, title, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	logging.StoreDebug("Recorded view of %s", uuid)
	return nil
}

// Forget removes a snippet from the history. Used when a fetch reports the
// snippet expired or gone; there is no point offering it again.
func (s *HistoryStore) Forget(uuid string) error {
	if _, err := s.db.Exec(`DELETE FROM view_history WHERE uuid = ?`, uuid); err != nil {
		return fmt.Errorf("failed to forget %s: %w", uuid, err)
	}
	return nil
}

// Recent returns up to limit entries, most recent first.
func (s *HistoryStore) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT uuid, title, viewed_at FROM view_history
		ORDER BY viewed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.UUID, &e.Title, &e.ViewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
