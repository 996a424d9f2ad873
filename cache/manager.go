package cache

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Outcome reports how a request was satisfied. Exposed so transports can
// surface it in debug headers and tests can assert on the cache path taken.
type Outcome int

const (
	// OutcomeHit means a fresh entry was served; the handler did not run.
	OutcomeHit Outcome = iota

	// OutcomeStale means a stale entry was served and a background
	// refresh was triggered (or already in flight).
	OutcomeStale

	// OutcomeMiss means the handler ran synchronously and its result was
	// stored.
	OutcomeMiss

	// OutcomeBypass means the cache store or version registry was
	// unreachable and the handler ran directly, uncached.
	OutcomeBypass
)

// String returns the conventional header value for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "HIT"
	case OutcomeStale:
		return "STALE"
	case OutcomeMiss:
		return "MISS"
	default:
		return "BYPASS"
	}
}

// Manager gives any read handler stale-while-revalidate caching keyed by
// route, normalized query parameters, and the current versions of the
// namespaces the handler reads.
//
// A cache outage never turns into a request failure: when the store or the
// version registry is unreachable the Manager bypasses caching and calls
// the handler directly.
type Manager struct {
	store    Store
	versions Versions
	logger   *slog.Logger

	// inflight is the single-flight registry for background refreshes.
	// LoadOrStore is the atomic check-and-set that guarantees at most one
	// refresh per key no matter how many stale hits race.
	inflight *xsync.MapOf[string, struct{}]

	// now is swappable for tests.
	now func() time.Time
}

// NewManager wires a Manager over the given store and version registry.
func NewManager(store Store, versions Versions, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    store,
		versions: versions,
		logger:   logger,
		inflight: xsync.NewMapOf[string, struct{}](),
		now:      time.Now,
	}
}

// Versions exposes the registry so write paths can bump namespaces through
// the same wiring.
func (m *Manager) Versions() Versions {
	return m.versions
}

// GetOrCompute serves the cached payload for (route, query) or computes it.
//
// Fresh entries are returned as-is. Stale entries are returned immediately
// while one background refresh recomputes them. Dead or missing entries are
// computed synchronously. Store failures degrade to a direct computation.
func (m *Manager) GetOrCompute(ctx context.Context, route string, query url.Values, opts Options, compute ComputeFn) ([]byte, Outcome, error) {
	key, ok := m.buildKey(ctx, route, query, opts.Namespaces)
	if !ok {
		value, err := compute(ctx)
		return value, OutcomeBypass, err
	}

	raw, err := m.store.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		m.logger.Warn("cache store unreachable, serving uncached",
			"route", route, "error", err)
		value, err := compute(ctx)
		return value, OutcomeBypass, err
	}

	if err == nil {
		entry, decErr := decodeEntry(raw)
		if decErr != nil {
			// Treat undecodable entries as a miss; they will be
			// overwritten below.
			m.logger.Warn("discarding undecodable cache entry",
				"key", key, "error", decErr)
		} else {
			switch entry.StateAt(m.now()) {
			case StateFresh:
				return entry.Value, OutcomeHit, nil
			case StateStale:
				m.refreshAsync(key, route, opts, compute)
				return entry.Value, OutcomeStale, nil
			}
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, OutcomeMiss, err
	}
	m.storeEntry(ctx, key, value, opts)
	return value, OutcomeMiss, nil
}

// refreshAsync recomputes a stale entry off the request path. The refresh
// is fire-and-forget: it runs on a background context so it outlives the
// triggering request, and the in-flight registry collapses concurrent
// stale hits into a single recomputation.
func (m *Manager) refreshAsync(key, route string, opts Options, compute ComputeFn) {
	if _, loaded := m.inflight.LoadOrStore(key, struct{}{}); loaded {
		return
	}

	go func() {
		defer m.inflight.Delete(key)

		ctx := context.Background()
		value, err := compute(ctx)
		if err != nil {
			// Keep serving the stale value until it dies; the next
			// stale hit retries.
			m.logger.Warn("background refresh failed",
				"route", route, "key", key, "error", err)
			return
		}
		m.storeEntry(ctx, key, value, opts)
		m.logger.Debug("background refresh completed", "route", route, "key", key)
	}()
}

// storeEntry writes a fresh envelope. Failures are logged, never surfaced:
// the caller already has the value.
func (m *Manager) storeEntry(ctx context.Context, key string, value []byte, opts Options) {
	now := m.now()
	entry := newEntry(value, now, opts.FreshTTL, opts.StaleWhileRevalidate)
	raw, err := entry.encode()
	if err != nil {
		m.logger.Warn("failed to encode cache entry", "key", key, "error", err)
		return
	}
	if err := m.store.Set(ctx, key, raw, entry.Lifetime(now)); err != nil {
		m.logger.Warn("failed to store cache entry", "key", key, "error", err)
	}
}

// buildKey resolves the current version of every namespace and derives the
// key. A registry failure reports !ok so the caller can fail open.
func (m *Manager) buildKey(ctx context.Context, route string, query url.Values, namespaces []string) (string, bool) {
	versions := make([]NamespaceVersion, 0, len(namespaces))
	for _, ns := range namespaces {
		v, err := m.versions.Version(ctx, ns)
		if err != nil {
			m.logger.Warn("version registry unreachable, serving uncached",
				"namespace", ns, "error", err)
			return "", false
		}
		versions = append(versions, NamespaceVersion{Namespace: ns, Version: v})
	}
	return Key(route, query, versions), true
}
