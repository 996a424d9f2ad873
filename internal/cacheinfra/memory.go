package cacheinfra

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"

	"github.com/orderdesk/orderdesk/cache"
)

// MemoryStore is the single-instance cache store, backed by a sharded
// sturdyc client used as a capacity-bounded byte store with TTL eviction.
// Freshness classification stays in the cache Manager; the backend TTL is
// only the garbage-collection horizon for dead entries.
type MemoryStore struct {
	client *sturdyc.Client[[]byte]
}

var _ cache.Store = (*MemoryStore)(nil)

// NewMemoryStore validates the configuration and initializes the backing
// sturdyc client with the provided settings.
func NewMemoryStore(cfg Config) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &MemoryStore{client: client}, nil
}

// Get implements cache.Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if value, ok := s.client.Get(key); ok {
		return value, nil
	}
	return nil, cache.ErrNotFound
}

// Set implements cache.Store. The per-entry ttl is carried inside the
// envelope; sturdyc applies its client-wide TTL as the eviction bound.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.client.Set(key, value)
	return nil
}

// Delete implements cache.Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// MemoryVersions is the single-instance version registry. Counters live in
// a concurrent map of atomics so Bump is an atomic check-and-set followed
// by an atomic increment, never a read-modify-write.
type MemoryVersions struct {
	counters *xsync.MapOf[string, *atomic.Int64]
}

var _ cache.Versions = (*MemoryVersions)(nil)

// NewMemoryVersions creates an empty registry; every namespace starts at 0.
func NewMemoryVersions() *MemoryVersions {
	return &MemoryVersions{counters: xsync.NewMapOf[string, *atomic.Int64]()}
}

// Bump implements cache.Versions.
func (v *MemoryVersions) Bump(_ context.Context, namespace string) (int64, error) {
	counter, _ := v.counters.LoadOrStore(namespace, &atomic.Int64{})
	return counter.Add(1), nil
}

// Version implements cache.Versions.
func (v *MemoryVersions) Version(_ context.Context, namespace string) (int64, error) {
	counter, ok := v.counters.Load(namespace)
	if !ok {
		return 0, nil
	}
	return counter.Load(), nil
}
