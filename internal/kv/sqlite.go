package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore implements Store on a single SQLite table. It serves
// single-node deployments where running NATS would be overkill; the
// revision column gives the same compare-and-swap contract.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (creating if needed) the database file at path.
func NewSqliteStore(path string) (*SqliteStore, error) {
	if path == "" {
		return nil, errPathRequired
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS kv_state (
		key      TEXT PRIMARY KEY,
		revision INTEGER NOT NULL,
		value    BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to create kv_state table: %w", err)
	}

	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Get(ctx context.Context, key string) ([]byte, uint64, bool, error) {
	var (
		value    []byte
		revision uint64
	)

	row := s.db.QueryRowContext(ctx, `SELECT value, revision FROM kv_state WHERE key = ?`, key)

	err := row.Scan(&value, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, false, nil
	}

	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return value, revision, true, nil
}

func (s *SqliteStore) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	res := s.db.QueryRowContext(ctx, `
	INSERT INTO kv_state (key, revision, value) VALUES (?, 1, ?)
	ON CONFLICT(key) DO UPDATE SET revision = revision + 1, value = excluded.value
	RETURNING revision`, key, value)

	var revision uint64
	if err := res.Scan(&revision); err != nil {
		return 0, fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return revision, nil
}

func (s *SqliteStore) Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error) {
	if revision == 0 {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO kv_state (key, revision, value) VALUES (?, 1, ?)`, key, value)
		if err != nil {
			// UNIQUE violation means someone created the key first.
			return 0, ErrRevisionMismatch
		}

		return 1, nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE kv_state SET revision = revision + 1, value = ? WHERE key = ? AND revision = ?`,
		value, key, revision)
	if err != nil {
		return 0, fmt.Errorf("failed to update key %s: %w", key, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to update key %s: %w", key, err)
	}

	if affected == 0 {
		return 0, ErrRevisionMismatch
	}

	return revision + 1, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
