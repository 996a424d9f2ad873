package cacheinfra

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/orderdesk/orderdesk/cache"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(DefaultConfig())
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	return store
}

func TestMemoryStoreSetGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "absent")
	if !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("Get on missing key = %v, want %v", err, cache.ErrNotFound)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := store.Get(ctx, "key"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("Get after Delete = %v, want %v", err, cache.ErrNotFound)
	}
}

func TestNewMemoryStoreRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0

	if _, err := NewMemoryStore(cfg); err == nil {
		t.Error("expected an error for zero capacity")
	}
}

func TestMemoryVersionsBumpAndVersion(t *testing.T) {
	versions := NewMemoryVersions()
	ctx := context.Background()

	got, err := versions.Version(ctx, "orders")
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if got != 0 {
		t.Errorf("initial Version = %d, want 0", got)
	}

	bumped, err := versions.Bump(ctx, "orders")
	if err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if bumped != 1 {
		t.Errorf("first Bump = %d, want 1", bumped)
	}

	got, err = versions.Version(ctx, "orders")
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if got != 1 {
		t.Errorf("Version after Bump = %d, want 1", got)
	}

	// Independent namespaces.
	got, err = versions.Version(ctx, "items")
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if got != 0 {
		t.Errorf("untouched namespace Version = %d, want 0", got)
	}
}

func TestMemoryVersionsConcurrentBumps(t *testing.T) {
	versions := NewMemoryVersions()
	ctx := context.Background()

	const (
		goroutines = 8
		bumpsEach  = 100
	)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < bumpsEach; j++ {
				if _, err := versions.Bump(ctx, "orders"); err != nil {
					t.Errorf("Bump: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, err := versions.Version(ctx, "orders")
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if want := int64(goroutines * bumpsEach); got != want {
		t.Errorf("Version after concurrent bumps = %d, want %d", got, want)
	}
}
