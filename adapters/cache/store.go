// Package cache provides a read-through cache for reference data.
//
// Pricings, tax rules and tax definitions are cached under versioned keys.
// Contracts are never cached: their activity depends on the evaluation time
// and is cheap to read.
package cache

import (
	"context"
	"time"
)

// KeyVersion is bumped whenever the cached value layout changes. Entries
// written under an older version are never read.
const KeyVersion = "v1"

// Store is a byte-oriented key/value store with per-entry TTL
type Store interface {
	// Get returns the value and true on a hit, or false on a miss
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys
	Delete(ctx context.Context, keys ...string) error

	// Close releases the store
	Close() error
}
