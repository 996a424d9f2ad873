package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/orderdesk/orderdesk/pagination"
	"github.com/orderdesk/orderdesk/pkg/apperrors"
)

// orderSearchColumns is the fixed list of text fields the search parameter
// matches against for orders.
var orderSearchColumns = []string{"customer_name", "order_from", "status"}

// OrderStore persists orders. Every read and write goes through the retry
// wrapper; all operations here are idempotent or keyed by a natural
// identity, so repeating them is safe.
type OrderStore struct {
	db     *bun.DB
	logger *slog.Logger
}

// NewOrderStore creates an OrderStore.
func NewOrderStore(db *bun.DB, logger *slog.Logger) *OrderStore {
	return &OrderStore{db: db, logger: logger}
}

// Page fetches one offset page plus the total matching the same search
// predicate, ordered by creation time descending.
func (s *OrderStore) Page(ctx context.Context, search string, offset, limit int) ([]*Order, int, error) {
	result, err := withRetry(ctx, s.logger, "orders.page", func(ctx context.Context) (pageResult[*Order], error) {
		var orders []*Order
		q := s.db.NewSelect().Model(&orders)
		q = applySearch(q, orderSearchColumns, search)
		total, err := q.
			OrderExpr("created_at DESC").
			Limit(limit).
			Offset(offset).
			ScanAndCount(ctx)
		return pageResult[*Order]{rows: orders, total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return result.rows, result.total, nil
}

// PageAfter fetches rows strictly after the cursor in (created_at DESC,
// id DESC) order, up to limit rows.
func (s *OrderStore) PageAfter(ctx context.Context, search string, cursor *pagination.Cursor, limit int) ([]*Order, error) {
	return withRetry(ctx, s.logger, "orders.page_after", func(ctx context.Context) ([]*Order, error) {
		var orders []*Order
		q := s.db.NewSelect().Model(&orders)
		q = applySearch(q, orderSearchColumns, search)
		q = applyCursor(q, cursor)
		err := q.
			OrderExpr("created_at DESC, id DESC").
			Limit(limit).
			Scan(ctx)
		return orders, err
	})
}

// All fetches the full order set in one round trip for the analytics
// aggregator. One unbounded scan instead of five date-ranged queries is a
// deliberate trade; the aggregator windows the result in memory.
func (s *OrderStore) All(ctx context.Context) ([]*Order, error) {
	return withRetry(ctx, s.logger, "orders.all", func(ctx context.Context) ([]*Order, error) {
		var orders []*Order
		err := s.db.NewSelect().
			Model(&orders).
			OrderExpr("created_at DESC").
			Scan(ctx)
		return orders, err
	})
}

// Create inserts a new order, assigning id and timestamps when absent.
func (s *OrderStore) Create(ctx context.Context, order *Order) (*Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	return withRetry(ctx, s.logger, "orders.create", func(ctx context.Context) (*Order, error) {
		_, err := s.db.NewInsert().Model(order).Exec(ctx)
		return order, err
	})
}

// UpdateStatus sets the status of one order.
func (s *OrderStore) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	return withRetry(ctx, s.logger, "orders.update_status", func(ctx context.Context) (*Order, error) {
		res, err := s.db.NewUpdate().
			Model((*Order)(nil)).
			Set("status = ?", status).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, apperrors.NotFound("order not found")
		}

		order := new(Order)
		if err := s.db.NewSelect().Model(order).Where("id = ?", id).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.NotFound("order not found")
			}
			return nil, err
		}
		return order, nil
	})
}
