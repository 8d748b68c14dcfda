// Package archive keeps entries trimmed from the bounded log store in a
// DuckDB file so all-time aggregate statistics survive the capacity cut.
// It is optional; without it trimmed entries are simply discarded.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/marcboeker/go-duckdb"

	"github.com/looking-glass/backend/internal/models"
)

// Store appends trimmed log entries to DuckDB and answers aggregate
// queries over everything ever archived.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Summary holds all-time counters over archived entries.
type Summary struct {
	TotalArchived int            `json:"totalArchived"`
	Nodes         map[string]int `json:"nodes"`
	TestTypes     map[string]int `json:"testTypes"`
	Countries     map[string]int `json:"countries"`
}

// New opens (creating if needed) the archive database at path.
func New(path string) (*Store, error) {
	connector, err := duckdb.NewConnector(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trimmed_logs (
			id        VARCHAR PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			action    VARCHAR NOT NULL,
			node_name VARCHAR NOT NULL,
			test_type VARCHAR,
			target    VARCHAR,
			ip        VARCHAR,
			country   VARCHAR,
			city      VARCHAR
		)
	`)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to create trimmed_logs table: %w", err)
	}

	return &Store{db: db}, nil
}

// Archive inserts the given entries. Implements logstore.Archiver.
func (s *Store) Archive(ctx context.Context, entries []models.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO trimmed_logs
			(id, timestamp, action, node_name, test_type, target, ip, country, city)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing archive insert: %w", err)
	}
	defer stmt.Close()

	for i := range entries {
		e := &entries[i]

		_, err = stmt.ExecContext(ctx, e.ID, e.Timestamp, e.Action, e.NodeName,
			e.TestType, e.Target, e.IP, e.Country, e.City)
		if err != nil {
			return fmt.Errorf("archiving entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// Stats aggregates over every archived entry.
func (s *Store) Stats(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &Summary{
		Nodes:     make(map[string]int),
		TestTypes: make(map[string]int),
		Countries: make(map[string]int),
	}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trimmed_logs`)
	if err := row.Scan(&summary.TotalArchived); err != nil {
		return nil, fmt.Errorf("counting archived entries: %w", err)
	}

	if err := s.countBy(ctx, `node_name`, summary.Nodes); err != nil {
		return nil, err
	}

	if err := s.countBy(ctx, `test_type`, summary.TestTypes); err != nil {
		return nil, err
	}

	if err := s.countBy(ctx, `country`, summary.Countries); err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *Store) countBy(ctx context.Context, column string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s, COUNT(*) FROM trimmed_logs
		 WHERE %s IS NOT NULL AND %s != '' AND lower(%s) != 'unknown'
		 GROUP BY %s`, column, column, column, column, column))
	if err != nil {
		return fmt.Errorf("aggregating by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			count int
		)

		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scanning %s aggregate: %w", column, err)
		}

		into[key] = count
	}

	return rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
