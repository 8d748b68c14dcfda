package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSqlite(t *testing.T) *SqliteStore {
	t.Helper()

	store, err := NewSqliteStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSqliteStore_GetPut(t *testing.T) {
	ctx := context.Background()
	store := newTestSqlite(t)

	_, _, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	rev, err := store.Put(ctx, "k", []byte("v1"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rev)

	value, rev, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v1"), value)
	assert.Equal(t, uint64(1), rev)

	rev, err = store.Put(ctx, "k", []byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rev)
}

func TestSqliteStore_Update(t *testing.T) {
	ctx := context.Background()
	store := newTestSqlite(t)

	t.Run("create with revision zero", func(t *testing.T) {
		rev, err := store.Update(ctx, "fresh", []byte("v1"), 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), rev)
	})

	t.Run("create of existing key is a mismatch", func(t *testing.T) {
		_, err := store.Update(ctx, "fresh", []byte("v2"), 0)
		assert.ErrorIs(t, err, ErrRevisionMismatch)
	})

	t.Run("matching revision succeeds", func(t *testing.T) {
		rev, err := store.Update(ctx, "fresh", []byte("v2"), 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), rev)

		value, _, _, err := store.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), value)
	})

	t.Run("stale revision is a mismatch", func(t *testing.T) {
		_, err := store.Update(ctx, "fresh", []byte("v3"), 1)
		assert.ErrorIs(t, err, ErrRevisionMismatch)

		// The stored value is untouched by the failed write.
		value, rev, _, err := store.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), value)
		assert.Equal(t, uint64(2), rev)
	})
}

func TestNewSqliteStore_RequiresPath(t *testing.T) {
	_, err := NewSqliteStore("")
	assert.Error(t, err)
}
