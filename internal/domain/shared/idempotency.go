package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which deliveries have already been handled so an
// at-least-once sender can retry without side effects being applied twice.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// DefaultIdempotencyTTL is how long a processed delivery is remembered.
const DefaultIdempotencyTTL = 24 * time.Hour
