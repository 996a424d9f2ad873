package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store implementations when a key has no entry.
// The Manager treats it as a miss; every other Store error is treated as an
// outage and triggers the fail-open path.
var ErrNotFound = errors.New("cache: entry not found")

// Store is the raw byte store behind the Manager. Implementations may be
// in-process or shared across instances; the Manager never assumes process
// affinity.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Versions tracks one monotonic version counter per namespace. Writes bump
// the namespace they touched; reads embed the current versions in their
// cache keys, which makes every pre-bump entry unreachable without ever
// enumerating the key space. Orphaned entries age out by TTL.
type Versions interface {
	// Bump atomically increments the namespace version and returns the
	// new value.
	Bump(ctx context.Context, namespace string) (int64, error)

	// Version returns the current version for the namespace, 0 when the
	// namespace has never been bumped.
	Version(ctx context.Context, namespace string) (int64, error)
}

// ComputeFn produces the serialized payload the Manager caches. It is the
// underlying read handler: invoked synchronously on a miss and in the
// background on a stale hit.
type ComputeFn func(ctx context.Context) ([]byte, error)
