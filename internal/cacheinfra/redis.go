package cacheinfra

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orderdesk/orderdesk/cache"
)

// Key prefixes keep cache entries and version counters in disjoint
// keyspaces on a shared server.
const (
	redisEntryPrefix   = "orderdesk:cache:"
	redisVersionPrefix = "orderdesk:version:"
)

// RedisStore is the shared cache store. Entries are written with their
// remaining lifetime as the redis TTL, so dead entries expire server-side
// and instances never need a sweeper.
type RedisStore struct {
	client *redis.Client
}

var _ cache.Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client; the caller owns its lifecycle.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements cache.Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, redisEntryPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Set implements cache.Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, redisEntryPrefix+key, value, ttl).Err()
}

// Delete implements cache.Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisEntryPrefix+key).Err()
}

// RedisVersions is the shared version registry. Bump rides on INCR, the
// store's native atomic increment, so concurrent writers on different
// instances can never lose an increment to a read-modify-write race.
type RedisVersions struct {
	client *redis.Client
}

var _ cache.Versions = (*RedisVersions)(nil)

// NewRedisVersions wraps an existing client; the caller owns its lifecycle.
func NewRedisVersions(client *redis.Client) *RedisVersions {
	return &RedisVersions{client: client}
}

// Bump implements cache.Versions.
func (v *RedisVersions) Bump(ctx context.Context, namespace string) (int64, error) {
	return v.client.Incr(ctx, redisVersionPrefix+namespace).Result()
}

// Version implements cache.Versions. A namespace that has never been
// bumped reports 0.
func (v *RedisVersions) Version(ctx context.Context, namespace string) (int64, error) {
	value, err := v.client.Get(ctx, redisVersionPrefix+namespace).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return value, nil
}
