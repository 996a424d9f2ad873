package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Backend = %q, want %q", cfg.Cache.Backend, "memory")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: 9090
cache:
  backend: redis
  fresh_ttl: 30s
  stale_while_revalidate: 2m
redis:
  addr: cache.internal:6379
log:
  format: json
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Backend = %q, want %q", cfg.Cache.Backend, "redis")
	}
	if cfg.Cache.FreshTTL != 30*time.Second {
		t.Errorf("FreshTTL = %v, want 30s", cfg.Cache.FreshTTL)
	}
	if cfg.Cache.StaleWhileRevalidate != 2*time.Minute {
		t.Errorf("StaleWhileRevalidate = %v, want 2m", cfg.Cache.StaleWhileRevalidate)
	}
	if cfg.Redis.Addr != "cache.internal:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	// Untouched sections keep their defaults.
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app@db/orders")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("PORT", "3000")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://app@db/orders" {
		t.Errorf("database = %+v, want the env DSN on the postgres driver", cfg.Database)
	}
	if cfg.Cache.Backend != "redis" || cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("cache backend = %q, redis addr = %q; want redis via env", cfg.Cache.Backend, cfg.Redis.Addr)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Server.Port)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"zero fresh ttl", func(c *Config) { c.Cache.FreshTTL = 0 }},
		{"negative swr", func(c *Config) { c.Cache.StaleWhileRevalidate = -time.Second }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
