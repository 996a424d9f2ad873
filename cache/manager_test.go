package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string][]byte)}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	raw, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = value
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *fakeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type fakeVersions struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func newFakeVersions() *fakeVersions {
	return &fakeVersions{counters: make(map[string]int64)}
}

func (v *fakeVersions) Bump(_ context.Context, namespace string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return 0, v.err
	}
	v.counters[namespace]++
	return v.counters[namespace], nil
}

func (v *fakeVersions) Version(_ context.Context, namespace string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return 0, v.err
	}
	return v.counters[namespace], nil
}

func testManager(store Store, versions Versions) *Manager {
	return NewManager(store, versions, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func staticCompute(payload string) ComputeFn {
	return func(context.Context) ([]byte, error) {
		return []byte(payload), nil
	}
}

var testOpts = Options{
	FreshTTL:             time.Minute,
	StaleWhileRevalidate: 5 * time.Minute,
	Namespaces:           []string{"orders"},
}

func TestGetOrComputeMissThenHit(t *testing.T) {
	store := newFakeStore()
	m := testManager(store, newFakeVersions())

	var calls atomic.Int64
	compute := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("payload"), nil
	}

	value, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeMiss {
		t.Errorf("first call outcome = %v, want %v", outcome, OutcomeMiss)
	}
	if string(value) != "payload" {
		t.Errorf("value = %q, want %q", value, "payload")
	}
	if store.len() != 1 {
		t.Errorf("store holds %d entries, want 1", store.len())
	}

	value, outcome, err = m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeHit {
		t.Errorf("second call outcome = %v, want %v", outcome, OutcomeHit)
	}
	if string(value) != "payload" {
		t.Errorf("value = %q, want %q", value, "payload")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("compute ran %d times, want 1", got)
	}
}

func TestGetOrComputeStaleServesOldAndRefreshes(t *testing.T) {
	store := newFakeStore()
	m := testManager(store, newFakeVersions())

	base := time.Now()
	m.now = func() time.Time { return base }

	if _, _, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, staticCompute("old")); err != nil {
		t.Fatalf("priming compute: %v", err)
	}

	// Step past the fresh window, inside the stale window.
	m.now = func() time.Time { return base.Add(2 * time.Minute) }

	refreshed := make(chan struct{})
	compute := func(context.Context) ([]byte, error) {
		defer close(refreshed)
		return []byte("new"), nil
	}

	value, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeStale {
		t.Errorf("outcome = %v, want %v", outcome, OutcomeStale)
	}
	if string(value) != "old" {
		t.Errorf("stale read served %q, want the previous value %q", value, "old")
	}

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("background refresh never ran")
	}

	// The refresh stored the new value; the next read inside the new
	// fresh window must serve it without computing.
	waitFor(t, func() bool {
		value, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, staticCompute("unused"))
		return err == nil && outcome == OutcomeHit && bytes.Equal(value, []byte("new"))
	})
}

func TestGetOrComputeDeadEntryRecomputesSynchronously(t *testing.T) {
	store := newFakeStore()
	m := testManager(store, newFakeVersions())

	base := time.Now()
	m.now = func() time.Time { return base }

	if _, _, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, staticCompute("old")); err != nil {
		t.Fatalf("priming compute: %v", err)
	}

	// Step past the stale horizon.
	m.now = func() time.Time { return base.Add(time.Hour) }

	value, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, staticCompute("new"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeMiss {
		t.Errorf("outcome = %v, want %v", outcome, OutcomeMiss)
	}
	if string(value) != "new" {
		t.Errorf("value = %q, want %q", value, "new")
	}
}

func TestGetOrComputeSingleFlightRefresh(t *testing.T) {
	store := newFakeStore()
	m := testManager(store, newFakeVersions())

	base := time.Now()
	m.now = func() time.Time { return base }

	if _, _, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, staticCompute("old")); err != nil {
		t.Fatalf("priming compute: %v", err)
	}

	m.now = func() time.Time { return base.Add(2 * time.Minute) }

	gate := make(chan struct{})
	var refreshes atomic.Int64
	compute := func(context.Context) ([]byte, error) {
		refreshes.Add(1)
		<-gate
		return []byte("new"), nil
	}

	const readers = 16
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, compute)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if outcome != OutcomeStale {
				t.Errorf("outcome = %v, want %v", outcome, OutcomeStale)
			}
			if string(value) != "old" {
				t.Errorf("value = %q, want %q", value, "old")
			}
		}()
	}
	wg.Wait()

	close(gate)
	waitFor(t, func() bool { return refreshes.Load() == 1 })

	if got := refreshes.Load(); got != 1 {
		t.Errorf("refresh ran %d times, want 1", got)
	}
}

func TestGetOrComputeBumpOrphansEntries(t *testing.T) {
	store := newFakeStore()
	versions := newFakeVersions()
	m := testManager(store, versions)

	var calls atomic.Int64
	compute := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("payload"), nil
	}

	if _, _, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, compute); err != nil {
		t.Fatalf("priming compute: %v", err)
	}

	if _, err := versions.Bump(context.Background(), "orders"); err != nil {
		t.Fatalf("bump: %v", err)
	}

	_, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeMiss {
		t.Errorf("outcome after bump = %v, want %v", outcome, OutcomeMiss)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("compute ran %d times, want 2", got)
	}
	// The pre-bump entry is orphaned, not deleted.
	if store.len() != 2 {
		t.Errorf("store holds %d entries, want 2", store.len())
	}
}

func TestGetOrComputeFailsOpenOnStoreOutage(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	m := testManager(store, newFakeVersions())

	value, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, staticCompute("payload"))
	if err != nil {
		t.Fatalf("store outage must not fail the request: %v", err)
	}
	if outcome != OutcomeBypass {
		t.Errorf("outcome = %v, want %v", outcome, OutcomeBypass)
	}
	if string(value) != "payload" {
		t.Errorf("value = %q, want %q", value, "payload")
	}
}

func TestGetOrComputeFailsOpenOnRegistryOutage(t *testing.T) {
	versions := newFakeVersions()
	versions.err = errors.New("connection refused")
	m := testManager(newFakeStore(), versions)

	value, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, staticCompute("payload"))
	if err != nil {
		t.Fatalf("registry outage must not fail the request: %v", err)
	}
	if outcome != OutcomeBypass {
		t.Errorf("outcome = %v, want %v", outcome, OutcomeBypass)
	}
	if string(value) != "payload" {
		t.Errorf("value = %q, want %q", value, "payload")
	}
}

func TestGetOrComputeSetFailureStillServes(t *testing.T) {
	store := newFakeStore()
	store.setErr = errors.New("disk full")
	m := testManager(store, newFakeVersions())

	value, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, staticCompute("payload"))
	if err != nil {
		t.Fatalf("a failed store write must not fail the request: %v", err)
	}
	if outcome != OutcomeMiss {
		t.Errorf("outcome = %v, want %v", outcome, OutcomeMiss)
	}
	if string(value) != "payload" {
		t.Errorf("value = %q, want %q", value, "payload")
	}
}

func TestGetOrComputeUndecodableEntryTreatedAsMiss(t *testing.T) {
	store := newFakeStore()
	m := testManager(store, newFakeVersions())

	key, ok := m.buildKey(context.Background(), "/api/orders", nil, testOpts.Namespaces)
	if !ok {
		t.Fatal("buildKey failed")
	}
	if err := store.Set(context.Background(), key, []byte("corrupt"), 0); err != nil {
		t.Fatalf("seeding corrupt entry: %v", err)
	}

	value, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, staticCompute("payload"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeMiss {
		t.Errorf("outcome = %v, want %v", outcome, OutcomeMiss)
	}
	if string(value) != "payload" {
		t.Errorf("value = %q, want %q", value, "payload")
	}
}

func TestGetOrComputeComputeErrorPropagates(t *testing.T) {
	m := testManager(newFakeStore(), newFakeVersions())

	wantErr := errors.New("database down")
	_, _, err := m.GetOrCompute(context.Background(), "/api/orders", nil, testOpts, func(context.Context) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestGetOrComputeDistinguishesQueries(t *testing.T) {
	m := testManager(newFakeStore(), newFakeVersions())

	page1 := url.Values{"page": {"1"}}
	page2 := url.Values{"page": {"2"}}

	if _, _, err := m.GetOrCompute(context.Background(), "/api/orders", page1, testOpts, staticCompute("one")); err != nil {
		t.Fatalf("priming compute: %v", err)
	}

	value, outcome, err := m.GetOrCompute(context.Background(), "/api/orders", page2, testOpts, staticCompute("two"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeMiss {
		t.Errorf("outcome for a different query = %v, want %v", outcome, OutcomeMiss)
	}
	if string(value) != "two" {
		t.Errorf("value = %q, want %q", value, "two")
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never held")
}
