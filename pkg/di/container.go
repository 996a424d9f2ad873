// Package di wires the service dependency graph from configuration:
// database, stores, cache backend, version registry, cache manager, and
// the HTTP server.
package di

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/orderdesk/orderdesk/cache"
	"github.com/orderdesk/orderdesk/config"
	"github.com/orderdesk/orderdesk/internal/cacheinfra"
	"github.com/orderdesk/orderdesk/server"
	"github.com/orderdesk/orderdesk/store"
)

// Container manages singleton instances of the service components. Build
// it once at startup and hand out the pieces via the accessors.
type Container struct {
	cfg    config.Config
	logger *slog.Logger

	db      *bun.DB
	redis   *redis.Client
	manager *cache.Manager

	orders   *store.OrderStore
	items    *store.ItemStore
	feedback *store.FeedbackStore

	server *server.Server
}

// NewContainer wires a container from the provided configuration. The
// configuration is assumed validated; component constructors still guard
// their own invariants.
func NewContainer(cfg config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{cfg: cfg, logger: logger}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	c.db = db

	cacheStore, versions, err := c.buildCacheBackend(cfg)
	if err != nil {
		c.db.Close()
		return nil, err
	}
	c.manager = cache.NewManager(cacheStore, versions, logger)

	c.orders = store.NewOrderStore(db, logger)
	c.items = store.NewItemStore(db, logger)
	c.feedback = store.NewFeedbackStore(db, logger)

	c.server = server.New(logger, c.manager, c.orders, c.items, c.feedback,
		cfg.Cache.FreshTTL, cfg.Cache.StaleWhileRevalidate)

	return c, nil
}

// NewContainerWithDefaults wires a container from the default
// configuration: in-memory cache over a local sqlite database.
func NewContainerWithDefaults(logger *slog.Logger) (*Container, error) {
	return NewContainer(config.Default(), logger)
}

func openDatabase(cfg config.Database) (*bun.DB, error) {
	switch cfg.Driver {
	case "postgres":
		sqldb, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: opening postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case "sqlite":
		sqldb, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: opening sqlite: %w", err)
		}
		// sqlite serializes writes; one connection avoids lock errors.
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("di: unknown database driver %q", cfg.Driver)
	}
}

func (c *Container) buildCacheBackend(cfg config.Config) (cache.Store, cache.Versions, error) {
	switch cfg.Cache.Backend {
	case "redis":
		c.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return cacheinfra.NewRedisStore(c.redis), cacheinfra.NewRedisVersions(c.redis), nil
	case "memory":
		memCfg := cacheinfra.DefaultConfig()
		memCfg.Capacity = cfg.Cache.Capacity
		memCfg.NumShards = cfg.Cache.NumShards
		memCfg.EvictionPercentage = cfg.Cache.EvictionPercentage
		// The backend TTL is the garbage-collection horizon, so it has to
		// outlive the serving window.
		memCfg.TTL = cfg.Cache.FreshTTL + cfg.Cache.StaleWhileRevalidate
		memStore, err := cacheinfra.NewMemoryStore(memCfg)
		if err != nil {
			return nil, nil, err
		}
		return memStore, cacheinfra.NewMemoryVersions(), nil
	default:
		return nil, nil, fmt.Errorf("di: unknown cache backend %q", cfg.Cache.Backend)
	}
}

// InitSchema creates the database schema and indexes.
func (c *Container) InitSchema(ctx context.Context) error {
	return store.InitSchema(ctx, c.db)
}

// PingRedis verifies the redis connection when the redis backend is
// configured; it is a no-op for the memory backend.
func (c *Container) PingRedis(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

// Handler returns the HTTP route table.
func (c *Container) Handler() http.Handler {
	return c.server.Routes()
}

// DB returns the database handle.
func (c *Container) DB() *bun.DB {
	return c.db
}

// CacheManager returns the response cache manager.
func (c *Container) CacheManager() *cache.Manager {
	return c.manager
}

// Orders returns the order store.
func (c *Container) Orders() *store.OrderStore {
	return c.orders
}

// Items returns the item store.
func (c *Container) Items() *store.ItemStore {
	return c.items
}

// Feedback returns the feedback store.
func (c *Container) Feedback() *store.FeedbackStore {
	return c.feedback
}

// Config returns a copy of the configuration the container was built from.
func (c *Container) Config() config.Config {
	return c.cfg
}

// Close releases the database and redis connections.
func (c *Container) Close() error {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.logger.Warn("closing redis client", "error", err)
		}
	}
	return c.db.Close()
}
