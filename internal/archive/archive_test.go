package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looking-glass/backend/internal/models"
)

func entry(id, node, testType, country string) models.LogEntry {
	return models.LogEntry{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Action:    "test_requested",
		NodeName:  node,
		TestType:  testType,
		Country:   country,
	}
}

func TestArchive(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "archive.duckdb"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.Archive(ctx, []models.LogEntry{
		entry("a", "Frankfurt 1", "ping", "DE"),
		entry("b", "Frankfurt 1", "mtr", "DE"),
		entry("c", "Tokyo 1", "", "unknown"),
	}))

	// Same batch again: already-archived ids are ignored.
	require.NoError(t, store.Archive(ctx, []models.LogEntry{
		entry("a", "Frankfurt 1", "ping", "DE"),
	}))

	summary, err := store.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalArchived)
	assert.Equal(t, map[string]int{"Frankfurt 1": 2, "Tokyo 1": 1}, summary.Nodes)
	assert.Equal(t, map[string]int{"ping": 1, "mtr": 1}, summary.TestTypes)
	assert.Equal(t, map[string]int{"DE": 2}, summary.Countries)
}

func TestArchive_EmptyBatch(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "archive.duckdb"))
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Archive(context.Background(), nil))
}
