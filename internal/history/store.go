// Package history persists scored rounds in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/gogpu/paintmatch"
)

// Store manages the SQLite database connection for round history.
type Store struct {
	db *sql.DB
}

var _ paintmatch.RoundRecorder = (*Store)(nil)

// Entry is one recorded round.
type Entry struct {
	ID        int64
	Round     int
	Reference string
	Score     int
	Advanced  bool
	CreatedAt time.Time
}

// Best is the best score recorded for a reference.
type Best struct {
	Reference string
	Score     int
	Attempts  int
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("history: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			round INTEGER NOT NULL,
			reference TEXT NOT NULL,
			score INTEGER NOT NULL,
			advanced INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_rounds_reference ON rounds(reference, score DESC);
		CREATE INDEX IF NOT EXISTS idx_rounds_created ON rounds(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRound stores a round result. A zero At is recorded as now.
func (s *Store) RecordRound(r paintmatch.RoundResult) error {
	at := r.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(
		"INSERT INTO rounds (round, reference, score, advanced, created_at) VALUES (?, ?, ?, ?, ?)",
		r.Round, r.Reference, r.Score, r.Advanced, at.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("history: cannot record round: %w", err)
	}
	return nil
}

// Recent returns the most recent rounds, newest first.
// A non-positive limit defaults to 20.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, round, reference, score, advanced, created_at
		 FROM rounds
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: cannot query rounds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Round, &e.Reference, &e.Score, &e.Advanced, &createdAt); err != nil {
			return nil, fmt.Errorf("history: cannot scan row: %w", err)
		}
		e.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: row iteration error: %w", err)
	}
	return entries, nil
}

// BestScores returns the best score and attempt count per reference,
// ordered by score descending.
func (s *Store) BestScores() ([]Best, error) {
	rows, err := s.db.Query(
		`SELECT reference, MAX(score), COUNT(*)
		 FROM rounds
		 GROUP BY reference
		 ORDER BY MAX(score) DESC, reference`,
	)
	if err != nil {
		return nil, fmt.Errorf("history: cannot query best scores: %w", err)
	}
	defer rows.Close()

	var out []Best
	for rows.Next() {
		var b Best
		if err := rows.Scan(&b.Reference, &b.Score, &b.Attempts); err != nil {
			return nil, fmt.Errorf("history: cannot scan row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: row iteration error: %w", err)
	}
	return out, nil
}

// Clear deletes every recorded round.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM rounds"); err != nil {
		return fmt.Errorf("history: cannot clear rounds: %w", err)
	}
	return nil
}
