package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteListSink keeps every saved grocery list as a row, newest last.
type SQLiteListSink struct {
	db  *sql.DB
	now func() time.Time
}

// SavedList is one row of the saved_lists table.
type SavedList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSQLiteListSink(dbPath string) (*SQLiteListSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc gives every connection to ":memory:" its own database.
	db.SetMaxOpenConns(1)

	sink := &SQLiteListSink{db: db, now: time.Now}
	if err := sink.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return sink, nil
}

func (s *SQLiteListSink) Close() error {
	return s.db.Close()
}

func (s *SQLiteListSink) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS saved_lists (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        body TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_saved_lists_name ON saved_lists(name, created_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *SQLiteListSink) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_lists (id, name, body, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), name, string(data), s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert saved list: %w", err)
	}
	return nil
}

// Latest returns the most recently saved list with the given name. The error wraps
// sql.ErrNoRows when no list of that name was ever saved.
func (s *SQLiteListSink) Latest(ctx context.Context, name string) (SavedList, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, body, created_at FROM saved_lists
        WHERE name = ?
        ORDER BY created_at DESC, rowid DESC
        LIMIT 1`, name)

	var l SavedList
	if err := row.Scan(&l.ID, &l.Name, &l.Body, &l.CreatedAt); err != nil {
		return SavedList{}, fmt.Errorf("failed to read saved list %q: %w", name, err)
	}
	return l, nil
}

// Count returns how many lists have been saved in total.
func (s *SQLiteListSink) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM saved_lists`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count saved lists: %w", err)
	}
	return n, nil
}
