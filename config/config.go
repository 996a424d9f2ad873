// Package config loads the service configuration from a yaml file with
// environment overrides for the values that differ per deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`
	Cache    Cache    `yaml:"cache"`
	Log      Log      `yaml:"log"`
}

// Server configures the HTTP listener.
type Server struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Database configures the relational store.
type Database struct {
	// Driver selects the sql driver: "postgres" in production, "sqlite"
	// for local development and tests.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Redis configures the shared cache store and version registry.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Cache configures the response cache.
type Cache struct {
	// Backend selects the store: "redis" shares entries and versions
	// across instances, "memory" keeps them in-process.
	Backend string `yaml:"backend"`

	FreshTTL             time.Duration `yaml:"fresh_ttl"`
	StaleWhileRevalidate time.Duration `yaml:"stale_while_revalidate"`

	// Memory backend sizing.
	Capacity           int `yaml:"capacity"`
	NumShards          int `yaml:"num_shards"`
	EvictionPercentage int `yaml:"eviction_percentage"`
}

// Log configures logging output.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: Server{
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: Database{
			Driver: "sqlite",
			DSN:    "file:orderdesk.db?_journal_mode=WAL",
		},
		Redis: Redis{
			Addr: "localhost:6379",
		},
		Cache: Cache{
			Backend:              "memory",
			FreshTTL:             time.Minute,
			StaleWhileRevalidate: 5 * time.Minute,
			Capacity:             10000,
			NumShards:            256,
			EvictionPercentage:   10,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration file at path (missing file = defaults),
// applies environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults plus environment are enough for local runs.
	default:
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays the environment variables deployments conventionally
// set.
func applyEnv(cfg *Config) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.Driver = "postgres"
		cfg.Database.DSN = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Cache.Backend = "redis"
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Driver, validation.Required, validation.In("postgres", "sqlite")),
		validation.Field(&c.Database.DSN, validation.Required),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Cache,
		validation.Field(&c.Cache.Backend, validation.Required, validation.In("redis", "memory")),
		validation.Field(&c.Cache.Capacity, validation.Min(1)),
		validation.Field(&c.Cache.NumShards, validation.Min(1)),
	); err != nil {
		return err
	}
	if c.Cache.FreshTTL <= 0 {
		return fmt.Errorf("cache.fresh_ttl must be greater than 0")
	}
	if c.Cache.StaleWhileRevalidate < 0 {
		return fmt.Errorf("cache.stale_while_revalidate must be non-negative")
	}
	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Log.Format, validation.In("text", "json")),
	); err != nil {
		return err
	}
	return nil
}
