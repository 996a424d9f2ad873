package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/orderdesk/orderdesk/cache"
	"github.com/orderdesk/orderdesk/pagination"
)

// payloadFn is a read handler reduced to its essence: query parameters in,
// response payload out. The cached wrapper owns serialization, headers,
// and the cache lifecycle around it.
type payloadFn func(ctx context.Context, query url.Values) (any, error)

// cached wraps a payload handler with the response cache. When public is
// set, fresh responses advertise the same fresh/stale window to
// intermediary caches; endpoints whose correctness depends on on-demand
// invalidation must not, because an intermediary cannot be told to forget
// an entry when a version bumps.
func (s *Server) cached(route string, namespaces []string, public bool, fn payloadFn) http.HandlerFunc {
	opts := cache.Options{
		FreshTTL:             s.freshTTL,
		StaleWhileRevalidate: s.swr,
		Namespaces:           namespaces,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		// A blank cursor parameter still selects cursor mode but is
		// dropped from the canonical key, so the mode has to be part of
		// the route: the two modes answer with different envelopes.
		cacheRoute := route
		if pagination.CursorModeRequested(query) {
			cacheRoute += "#cursor"
		}

		compute := func(ctx context.Context) ([]byte, error) {
			payload, err := fn(ctx, query)
			if err != nil {
				return nil, err
			}
			return json.Marshal(payload)
		}

		body, outcome, err := s.manager.GetOrCompute(r.Context(), cacheRoute, query, opts, compute)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}

		// Only fresh payloads advertise freshness: a HIT is inside its
		// fresh window and a MISS was computed just now. A STALE or
		// BYPASS body must not be cached downstream for a full window.
		if public && (outcome == cache.OutcomeHit || outcome == cache.OutcomeMiss) {
			w.Header().Set("Cache-Control", fmt.Sprintf(
				"public, max-age=%d, stale-while-revalidate=%d",
				int(opts.FreshTTL.Seconds()),
				int(opts.StaleWhileRevalidate.Seconds()),
			))
		}
		w.Header().Set("X-Cache", outcome.String())
		writeRaw(w, http.StatusOK, body)
	}
}
