package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps records in a single kv table.
type SQLiteStore struct {
	db       *sql.DB
	MaxBytes int
}

// NewSQLiteStore opens (or creates) the database at path. Use ":memory:"
// for a throwaway store.
func NewSQLiteStore(path string, maxBytes int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, MaxBytes: maxBytes}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`)
	return err
}

func (s *SQLiteStore) Read(key string) ([]byte, error) {
	var b []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *SQLiteStore) Write(key string, data []byte) error {
	if err := checkQuota(key, data, s.MaxBytes); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC())
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
