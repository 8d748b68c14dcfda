// Package logstore implements the bounded, append-only usage log: a single
// persisted record holding the most recent entries (newest first) plus
// derived counters, stored under one key in the durable kv backend.
package logstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/looking-glass/backend/internal/kv"
	"github.com/looking-glass/backend/internal/logger"
	"github.com/looking-glass/backend/internal/models"
)

const (
	// Capacity bounds the persisted log. Once full, appends drop the
	// oldest entries from the tail.
	Capacity = 1000

	// DefaultListLimit applies when a caller does not specify one.
	DefaultListLimit = 200

	// RecordKey is the single kv key the whole store lives under.
	RecordKey = "lg-logs"

	// casAttempts bounds retries when a concurrent writer wins the
	// conditional update race.
	casAttempts = 5
)

// Archiver receives entries trimmed from the tail at capacity. Optional.
type Archiver interface {
	Archive(ctx context.Context, entries []models.LogEntry) error
}

// AppendInput carries the caller-supplied fields of a new entry. ID and
// Timestamp are always assigned server-side, whatever the client sent.
type AppendInput struct {
	Action       string
	NodeName     string
	NodeLocation string
	TestType     string
	Target       string
	IP           string
	UserAgent    string
	SessionID    string
	Country      string
	City         string
}

// Store is the bounded log store. The mutex serializes in-process appends;
// the kv revision check catches races with other instances.
type Store struct {
	mu       sync.Mutex
	backend  kv.Store
	key      string
	archiver Archiver
	now      func() time.Time
	newID    func() string
}

// Option configures a Store.
type Option func(*Store)

// WithArchiver routes trimmed entries into an archive instead of
// discarding them.
func WithArchiver(a Archiver) Option {
	return func(s *Store) { s.archiver = a }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store over the given backend. A nil backend is permitted
// so the server can start without one; every operation then fails with
// ErrBackendUnavailable.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     RecordKey,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Append validates input, assigns id and timestamp, prepends the entry to
// the persisted record, trims to Capacity and writes the record back with a
// revision check. Returns the stored entry and the post-append record count.
func (s *Store) Append(ctx context.Context, in AppendInput) (*models.LogEntry, int, error) {
	if strings.TrimSpace(in.Action) == "" {
		return nil, 0, &ValidationError{Field: "action"}
	}

	if strings.TrimSpace(in.NodeName) == "" {
		return nil, 0, &ValidationError{Field: "nodeName"}
	}

	if s.backend == nil {
		return nil, 0, ErrBackendUnavailable
	}

	now := s.now().UTC()
	entry := models.LogEntry{
		ID:           s.newID(),
		Timestamp:    now,
		Action:       strings.TrimSpace(in.Action),
		NodeName:     strings.TrimSpace(in.NodeName),
		NodeLocation: in.NodeLocation,
		TestType:     in.TestType,
		Target:       in.Target,
		IP:           in.IP,
		UserAgent:    in.UserAgent,
		SessionID:    in.SessionID,
		Country:      in.Country,
		City:         in.City,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < casAttempts; attempt++ {
		var trimmed []models.LogEntry

		record, revision, err := s.load(ctx)
		if err != nil {
			return nil, 0, err
		}

		record.Logs = append([]models.LogEntry{entry}, record.Logs...)
		if len(record.Logs) > Capacity {
			trimmed = record.Logs[Capacity:]
			record.Logs = record.Logs[:Capacity]
		}

		record.TotalRecords = len(record.Logs)
		record.LastUpdate = now

		value, err := json.Marshal(record)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling log record: %w", err)
		}

		_, err = s.backend.Update(ctx, s.key, value, revision)
		if errors.Is(err, kv.ErrRevisionMismatch) {
			continue
		}

		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}

		if s.archiver != nil && len(trimmed) > 0 {
			// The hot record is already written; archival is best effort.
			if err := s.archiver.Archive(ctx, trimmed); err != nil {
				logger.Warn().Err(err).Int("entries", len(trimmed)).Msg("failed to archive trimmed log entries")
			}
		}

		return &entry, record.TotalRecords, nil
	}

	return nil, 0, fmt.Errorf("%w: too many concurrent writers", ErrBackendUnavailable)
}

// List returns the most recent entries, newest first. A non-positive limit
// falls back to DefaultListLimit; a limit beyond the stored count returns
// everything. Never mutates the record.
func (s *Store) List(ctx context.Context, limit int) (*models.LogRecord, error) {
	if s.backend == nil {
		return nil, ErrBackendUnavailable
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}

	record, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if limit < len(record.Logs) {
		record.Logs = record.Logs[:limit]
	}

	return record, nil
}

// Stats derives aggregate usage counters in a single scan of the persisted
// record. Entries without a test type are excluded from TestTypes; entries
// with an absent or unknown country are excluded from Countries.
func (s *Store) Stats(ctx context.Context) (*models.StatsSummary, error) {
	if s.backend == nil {
		return nil, ErrBackendUnavailable
	}

	record, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.StatsSummary{
		TotalLogs:  len(record.Logs),
		Nodes:      make(map[string]int),
		TestTypes:  make(map[string]int),
		Countries:  make(map[string]int),
		LastUpdate: record.LastUpdate,
	}

	ips := make(map[string]struct{})

	for i := range record.Logs {
		e := &record.Logs[i]

		if e.IP != "" {
			ips[e.IP] = struct{}{}
		}

		if e.NodeName != "" {
			summary.Nodes[e.NodeName]++
		}

		if e.TestType != "" {
			summary.TestTypes[e.TestType]++
		}

		if e.Country != "" && !strings.EqualFold(e.Country, "unknown") {
			summary.Countries[e.Country]++
		}
	}

	summary.UniqueIPs = len(ips)

	return summary, nil
}

// load reads and decodes the persisted record, returning an empty one (at
// revision zero) when the key has never been written.
func (s *Store) load(ctx context.Context) (*models.LogRecord, uint64, error) {
	value, revision, found, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	if !found {
		return &models.LogRecord{Logs: []models.LogEntry{}}, 0, nil
	}

	var record models.LogRecord
	if err := json.Unmarshal(value, &record); err != nil {
		return nil, 0, fmt.Errorf("decoding log record: %w", err)
	}

	if record.Logs == nil {
		record.Logs = []models.LogEntry{}
	}

	return &record, revision, nil
}
