// Package history provides persistent storage for completed load cycles
// using SQLite.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded load cycle.
type Entry struct {
	ID           int64     `json:"id"`
	Collection   string    `json:"collection"`
	Mode         string    `json:"mode"`
	MontageFiles int       `json:"montage_files"`
	TilesPlaced  int       `json:"tiles_placed"`
	DurationMS   int64     `json:"duration_ms"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store provides persistent storage for load-cycle history.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore creates a new SQLite-based history store.
func NewStore(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS load_cycles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		mode TEXT NOT NULL,
		montage_files INTEGER NOT NULL,
		tiles_placed INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_load_cycles_collection ON load_cycles(collection);
	CREATE INDEX IF NOT EXISTS idx_load_cycles_created ON load_cycles(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts one completed load cycle.
func (s *Store) Record(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO load_cycles (collection, mode, montage_files, tiles_placed, duration_ms, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.Collection,
		e.Mode,
		e.MontageFiles,
		e.TilesPlaced,
		e.DurationMS,
		e.Status,
		e.Error,
		created.Format(time.RFC3339),
	)
	return err
}

// Recent returns the latest entries for a collection, newest first.
func (s *Store) Recent(collection string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, collection, mode, montage_files, tiles_placed, duration_ms, status, error, created_at
		FROM load_cycles
		WHERE collection = ?
		ORDER BY id DESC
		LIMIT ?
	`, collection, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var createdStr string
		if err := rows.Scan(
			&e.ID,
			&e.Collection,
			&e.Mode,
			&e.MontageFiles,
			&e.TilesPlaced,
			&e.DurationMS,
			&e.Status,
			&e.Error,
			&createdStr,
		); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Cleanup deletes entries older than the retention window and returns the
// number removed.
func (s *Store) Cleanup(retentionDays int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays).Format(time.RFC3339)
	res, err := s.db.Exec(`DELETE FROM load_cycles WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
