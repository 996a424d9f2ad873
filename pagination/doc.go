// Package pagination implements the two paginators behind the listing
// endpoints.
//
// The offset paginator serves page/limit navigation with a total count; it
// accepts that concurrent mutation can make pages skip or repeat rows. The
// keyset paginator resumes from an opaque cursor over the composite
// (created_at, id) sort key and guarantees stable forward iteration
// relative to already-visited rows. The two are intentionally separate
// code paths with separately tested guarantees, not a unified abstraction.
package pagination
