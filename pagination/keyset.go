package pagination

import "context"

// KeysetSource fetches rows strictly after a cursor in (created_at DESC,
// id DESC) order. A nil cursor means from the beginning. Implementations
// must honor the requested limit exactly; Keyset asks for one extra row to
// probe for more.
type KeysetSource[T any] interface {
	After(ctx context.Context, cursor *Cursor, limit int) ([]T, error)
}

// KeysetSourceFunc adapts a function to KeysetSource.
type KeysetSourceFunc[T any] func(ctx context.Context, cursor *Cursor, limit int) ([]T, error)

// After implements KeysetSource.
func (f KeysetSourceFunc[T]) After(ctx context.Context, cursor *Cursor, limit int) ([]T, error) {
	return f(ctx, cursor, limit)
}

// Keyed is implemented by rows that can report their composite sort key.
type Keyed interface {
	CursorKey() Cursor
}

// CursorPage is the pagination envelope of a cursor-mode response.
type CursorPage struct {
	Limit      int     `json:"limit"`
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}

// Keyset runs the cursor paginator. It fetches limit+1 rows to detect
// hasMore without a second count query, returns at most limit rows, and
// encodes the last returned row's composite key as the next cursor.
//
// Guarantee: once a row is returned it is never returned again and never
// causes a later page to skip another row, regardless of newer rows being
// inserted concurrently. Deleting an already-visited row is outside this
// guarantee.
func Keyset[T Keyed](ctx context.Context, src KeysetSource[T], params CursorParams) ([]T, CursorPage, error) {
	rows, err := src.After(ctx, params.Cursor, params.Limit+1)
	if err != nil {
		return nil, CursorPage{}, err
	}

	page := CursorPage{Limit: params.Limit}
	if len(rows) > params.Limit {
		rows = rows[:params.Limit]
		page.HasMore = true
	}
	if rows == nil {
		rows = []T{}
	}

	if page.HasMore && len(rows) > 0 {
		token := rows[len(rows)-1].CursorKey().Encode()
		page.NextCursor = &token
	}

	return rows, page, nil
}
