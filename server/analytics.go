package server

import (
	"context"
	"net/url"
	"time"

	"github.com/orderdesk/orderdesk/analytics"
)

// analyticsResponse carries the per-range rollups alongside the range
// catalog so clients can render windows without hardcoding them.
type analyticsResponse struct {
	Analytics   map[string]analytics.RangeAnalytics `json:"analytics"`
	TimeRanges  []analytics.Range                   `json:"timeRanges"`
	GeneratedAt time.Time                           `json:"generatedAt"`
}

func (s *Server) orderAnalytics(ctx context.Context, query url.Values) (any, error) {
	filter, err := analytics.ParseStatusFilter(query.Get("statusFilter"))
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return analyticsResponse{
		Analytics:   analytics.Compute(orders, filter, now),
		TimeRanges:  analytics.Ranges(),
		GeneratedAt: now,
	}, nil
}
