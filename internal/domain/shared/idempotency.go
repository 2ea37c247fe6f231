package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers the outcome of mutating requests keyed by a
// client-supplied idempotency key, so a retried request replays the first
// response instead of running the operation again.
type IdempotencyStore interface {
	// Reserve claims a key for the duration of ttl.
	// Returns true if the key was newly claimed, false if it is already reserved or completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the response recorded for a reserved key
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error

	// Lookup returns the stored response for a completed key.
	// The boolean is false while the key is unknown or still in flight.
	Lookup(ctx context.Context, key string) ([]byte, bool, error)

	// Release drops a reservation so the request may be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
