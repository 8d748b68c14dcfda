// Package kv abstracts the durable key-value backend that persists the
// log store record. Two backends exist: NATS JetStream KV for multi-instance
// deployments and SQLite for single-node ones.
package kv

import "context"

// Store is a versioned key-value store. Revisions enable compare-and-swap
// updates so concurrent writers to the same key do not lose each other's
// changes.
type Store interface {
	// Get retrieves the value and current revision of key. found is false
	// when the key has never been written.
	Get(ctx context.Context, key string) (value []byte, revision uint64, found bool, err error)

	// Put writes value unconditionally and returns the new revision.
	Put(ctx context.Context, key string, value []byte) (uint64, error)

	// Update writes value only if the stored revision still equals revision,
	// returning ErrRevisionMismatch otherwise. A revision of zero asserts the
	// key does not exist yet.
	Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error)

	// Close releases backend resources.
	Close() error
}
