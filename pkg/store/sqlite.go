package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"uivox/pkg/db"
)

// SQLiteStore implements Store backed by the application database.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a store on top of an initialized DB.
func NewSQLiteStore(d *db.DB) *SQLiteStore {
	return &SQLiteStore{db: d}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetState returns the value for a state key if present.
func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		return "", false
	}
	return val, true
}

// SetState upserts a state key.
func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now().UTC().Format("2006-01-02 15:04:05"))
	return err
}

// DeleteState removes a state key.
func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}

// Replacements returns the full text replacement table.
func (s *SQLiteStore) Replacements(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT pattern, replacement FROM text_replacements")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var pattern, replacement string
		if err := rows.Scan(&pattern, &replacement); err != nil {
			return nil, err
		}
		out[pattern] = replacement
	}
	return out, rows.Err()
}

// SaveReplacement upserts one replacement entry.
func (s *SQLiteStore) SaveReplacement(ctx context.Context, pattern, replacement string) error {
	query := `INSERT OR REPLACE INTO text_replacements (pattern, replacement, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, pattern, replacement, time.Now().UTC().Format("2006-01-02 15:04:05"))
	return err
}

// DeleteReplacement removes one replacement entry.
func (s *SQLiteStore) DeleteReplacement(ctx context.Context, pattern string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM text_replacements WHERE pattern = ?", pattern)
	return err
}
