// mock_kv.go - In-memory kv.Store implementation for testing
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/looking-glass/backend/internal/kv"
)

// MockKV implements kv.Store in memory for tests.
type MockKV struct {
	mu        sync.RWMutex
	values    map[string][]byte
	revisions map[string]uint64

	// FailAll makes every operation return an error, simulating an
	// unreachable backend.
	FailAll bool
	// PutCount counts successful writes (Put + Update).
	PutCount int
}

var errMockUnavailable = errors.New("mock kv unavailable")

// NewMockKV creates an empty in-memory store.
func NewMockKV() *MockKV {
	return &MockKV{
		values:    make(map[string][]byte),
		revisions: make(map[string]uint64),
	}
}

func (m *MockKV) Get(_ context.Context, key string) ([]byte, uint64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailAll {
		return nil, 0, false, errMockUnavailable
	}

	value, ok := m.values[key]
	if !ok {
		return nil, 0, false, nil
	}

	// Copy so callers cannot mutate stored state.
	out := make([]byte, len(value))
	copy(out, value)

	return out, m.revisions[key], true, nil
}

func (m *MockKV) Put(_ context.Context, key string, value []byte) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAll {
		return 0, errMockUnavailable
	}

	return m.store(key, value), nil
}

func (m *MockKV) Update(_ context.Context, key string, value []byte, revision uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAll {
		return 0, errMockUnavailable
	}

	if m.revisions[key] != revision {
		return 0, kv.ErrRevisionMismatch
	}

	return m.store(key, value), nil
}

func (m *MockKV) Close() error {
	return nil
}

func (m *MockKV) store(key string, value []byte) uint64 {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.values[key] = stored
	m.revisions[key]++
	m.PutCount++

	return m.revisions[key]
}

// Raw returns the stored bytes for key, or nil if absent.
func (m *MockKV) Raw(key string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.values[key]
}

// Seed stores value under key directly, bypassing revision checks.
func (m *MockKV) Seed(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store(key, value)
	m.PutCount--
}

// Ensure MockKV implements kv.Store.
var _ kv.Store = (*MockKV)(nil)
