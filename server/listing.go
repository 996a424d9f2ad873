package server

import (
	"context"
	"net/url"

	"github.com/orderdesk/orderdesk/pagination"
	"github.com/orderdesk/orderdesk/store"
)

// offsetEnvelope is the offset-mode response shape.
type offsetEnvelope[T any] struct {
	Items      []T                   `json:"items"`
	Pagination pagination.OffsetPage `json:"pagination"`
}

// cursorEnvelope is the cursor-mode response shape.
type cursorEnvelope[T any] struct {
	Items      []T                   `json:"items"`
	Pagination pagination.CursorPage `json:"pagination"`
}

func (s *Server) listOrders(ctx context.Context, query url.Values) (any, error) {
	if pagination.CursorModeRequested(query) {
		params, err := pagination.ParseCursor(query)
		if err != nil {
			return nil, err
		}
		rows, page, err := pagination.Keyset(ctx, pagination.KeysetSourceFunc[*store.Order](
			func(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*store.Order, error) {
				return s.orders.PageAfter(ctx, params.Search, cursor, limit)
			}), params)
		if err != nil {
			return nil, err
		}
		return cursorEnvelope[*store.Order]{Items: rows, Pagination: page}, nil
	}

	params := pagination.ParseOffset(query)
	rows, page, err := pagination.Offset(ctx, pagination.OffsetSourceFunc[*store.Order](
		func(ctx context.Context, offset, limit int) ([]*store.Order, int, error) {
			return s.orders.Page(ctx, params.Search, offset, limit)
		}), params)
	if err != nil {
		return nil, err
	}
	return offsetEnvelope[*store.Order]{Items: rows, Pagination: page}, nil
}

func (s *Server) listItems(ctx context.Context, query url.Values) (any, error) {
	if pagination.CursorModeRequested(query) {
		params, err := pagination.ParseCursor(query)
		if err != nil {
			return nil, err
		}
		rows, page, err := pagination.Keyset(ctx, pagination.KeysetSourceFunc[*store.Item](
			func(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*store.Item, error) {
				return s.items.PageAfter(ctx, params.Search, cursor, limit)
			}), params)
		if err != nil {
			return nil, err
		}
		return cursorEnvelope[*store.Item]{Items: rows, Pagination: page}, nil
	}

	params := pagination.ParseOffset(query)
	rows, page, err := pagination.Offset(ctx, pagination.OffsetSourceFunc[*store.Item](
		func(ctx context.Context, offset, limit int) ([]*store.Item, int, error) {
			return s.items.Page(ctx, params.Search, offset, limit)
		}), params)
	if err != nil {
		return nil, err
	}
	return offsetEnvelope[*store.Item]{Items: rows, Pagination: page}, nil
}

func (s *Server) listDeletedItems(ctx context.Context, query url.Values) (any, error) {
	params := pagination.ParseOffset(query)
	rows, page, err := pagination.Offset(ctx, pagination.OffsetSourceFunc[*store.Item](
		func(ctx context.Context, offset, limit int) ([]*store.Item, int, error) {
			return s.items.PageDeleted(ctx, params.Search, offset, limit)
		}), params)
	if err != nil {
		return nil, err
	}
	return offsetEnvelope[*store.Item]{Items: rows, Pagination: page}, nil
}

func (s *Server) listFeedback(ctx context.Context, query url.Values) (any, error) {
	params := pagination.ParseOffset(query)
	rows, page, err := pagination.Offset(ctx, pagination.OffsetSourceFunc[*store.Feedback](
		func(ctx context.Context, offset, limit int) ([]*store.Feedback, int, error) {
			return s.feedback.Page(ctx, params.Search, offset, limit)
		}), params)
	if err != nil {
		return nil, err
	}
	return offsetEnvelope[*store.Feedback]{Items: rows, Pagination: page}, nil
}
