// Package cache stores built hierarchies so repeated requests for the same
// meter skip construction.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance for server deployments
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// [Open] picks a backend from a URL. Keys are derived by a [Keyer] so that
// every input that influences a hierarchy also influences its key.
package cache

import (
	"context"
	"time"
)

// TTLHierarchy is how long a built hierarchy stays cached. Construction is
// deterministic, so the limit only bounds storage.
const TTLHierarchy = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases connections and handles.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// NullCache disables caching: every Get misses and every write is dropped.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
