// Package server exposes the HTTP surface: cached read endpoints in both
// pagination modes, the analytics endpoint, and the write endpoints that
// drive version-scoped invalidation.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/orderdesk/orderdesk/cache"
	"github.com/orderdesk/orderdesk/store"
)

// Cache namespaces. Each write bumps the namespace of the collection it
// touched; each read endpoint declares the namespaces it depends on.
const (
	nsItems    = "items"
	nsOrders   = "orders"
	nsFeedback = "feedback"
)

// Server holds the handler dependencies.
type Server struct {
	logger   *slog.Logger
	manager  *cache.Manager
	orders   *store.OrderStore
	items    *store.ItemStore
	feedback *store.FeedbackStore

	freshTTL time.Duration
	swr      time.Duration
}

// New wires a Server. freshTTL and swr are the cache windows applied to
// every cached read endpoint.
func New(logger *slog.Logger, manager *cache.Manager, orders *store.OrderStore, items *store.ItemStore, feedback *store.FeedbackStore, freshTTL, swr time.Duration) *Server {
	return &Server{
		logger:   logger,
		manager:  manager,
		orders:   orders,
		items:    items,
		feedback: feedback,
		freshTTL: freshTTL,
		swr:      swr,
	}
}

// Routes builds the route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return s.recoverer(s.requestLogger(h))
	}

	// Read path. The deleted-items listing depends on on-demand
	// invalidation, so it never advertises freshness to intermediaries.
	mux.HandleFunc("GET /api/items", wrap(s.cached("/api/items", []string{nsItems}, true, s.listItems)))
	mux.HandleFunc("GET /api/items/deleted", wrap(s.cached("/api/items/deleted", []string{nsItems}, false, s.listDeletedItems)))
	mux.HandleFunc("GET /api/orders", wrap(s.cached("/api/orders", []string{nsOrders}, true, s.listOrders)))
	mux.HandleFunc("GET /api/orders/analytics", wrap(s.cached("/api/orders/analytics", []string{nsOrders}, true, s.orderAnalytics)))
	mux.HandleFunc("GET /api/feedback", wrap(s.cached("/api/feedback", []string{nsFeedback}, true, s.listFeedback)))

	// Write path.
	mux.HandleFunc("POST /api/items", wrap(s.createItem))
	mux.HandleFunc("PATCH /api/items/{id}", wrap(s.updateItem))
	mux.HandleFunc("DELETE /api/items/{id}", wrap(s.deleteItem))
	mux.HandleFunc("POST /api/orders", wrap(s.createOrder))
	mux.HandleFunc("PATCH /api/orders/{id}/status", wrap(s.updateOrderStatus))
	mux.HandleFunc("POST /api/feedback", wrap(s.createFeedback))

	mux.HandleFunc("GET /health", wrap(s.health))

	return mux
}

// bump advances a namespace version after a completed write. A failed bump
// only delays invalidation until TTL expiry, so it is logged, not
// surfaced: the write itself already succeeded.
func (s *Server) bump(ctx context.Context, namespace string) {
	if _, err := s.manager.Versions().Bump(ctx, namespace); err != nil {
		s.logger.Warn("failed to bump namespace version",
			"namespace", namespace, "error", err)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
