// Package cache provides the stale-while-revalidate response cache and the
// version-scoped invalidation registry behind the read endpoints.
//
// # Overview
//
// Three pieces cooperate:
//
//   - Store: a raw byte store (in-process or shared, see internal/cacheinfra)
//   - Versions: one monotonic counter per namespace of cache keys
//   - Manager: the stale-while-revalidate state machine over both
//
// The Manager caches whatever a ComputeFn produces, keyed by route,
// normalized query parameters, and the current version of every namespace
// the handler reads.
//
// # Entry lifecycle
//
// Every stored value travels inside an Entry envelope carrying its own
// freshness windows:
//
//	stored ── fresh ──> FreshUntil ── stale ──> StaleUntil ── dead
//
// Fresh entries are served without invoking the handler. Stale entries are
// served immediately while exactly one background refresh recomputes them;
// concurrent stale hits on the same key are collapsed by an in-flight
// registry. Dead or missing entries block the caller on a synchronous
// recomputation.
//
// # Invalidation
//
// Writes never enumerate or delete cache keys. The parameter space behind
// pagination and search is unbounded, so a write instead bumps the version
// counter of the namespace it touched. New reads embed the new version in
// their keys; every pre-bump entry becomes unreachable and ages out by
// store TTL. Bump uses the store's native atomic increment, so there is no
// read-modify-write race between instances.
//
// # Degradation
//
// A cache store or registry outage must never turn into a request failure.
// Any Store error other than ErrNotFound, and any Versions error, causes
// the Manager to bypass caching and invoke the handler directly.
package cache
