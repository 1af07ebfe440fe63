package store

import (
	"context"
	"database/sql"
	"errors"
)

// SQLiteKV stores values in a two-column table of a SQLite database.
// The caller opens the database (see config.OpenSQLite).
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV creates the kv table if needed.
func NewSQLiteKV(ctx context.Context, db *sql.DB) (*SQLiteKV, error) {
	_, err := db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS kv ("+
			"key TEXT PRIMARY KEY, "+
			"value BLOB NOT NULL)",
	)
	if err != nil {
		return nil, err
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoValue
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
