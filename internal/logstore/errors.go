package logstore

import (
	"errors"
	"fmt"
)

// ErrBackendUnavailable means the durable key-value backend is not
// configured or not reachable. Operations fail fast rather than pretending
// an empty in-memory store is the real one.
var ErrBackendUnavailable = errors.New(
	"log store backend unavailable: configure LG_KV_BACKEND (nats or sqlite) and check the backend is reachable")

// ValidationError reports a missing or invalid caller-supplied field.
// Entries that fail validation are never persisted.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field: %s", e.Field)
}
