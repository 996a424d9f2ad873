package store

import (
	"strings"

	"github.com/uptrace/bun"

	"github.com/orderdesk/orderdesk/pagination"
)

// pageResult carries the tuple an offset query produces through the retry
// wrapper, which is generic over a single value.
type pageResult[T any] struct {
	rows  []T
	total int
}

// applySearch adds a case-insensitive substring predicate over a fixed
// list of text columns. The same predicate feeds both the count and the
// slice of an offset page, so a blank search must stay a no-op.
func applySearch(q *bun.SelectQuery, columns []string, search string) *bun.SelectQuery {
	if search == "" {
		return q
	}
	pattern := "%" + strings.ToLower(search) + "%"
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for i, column := range columns {
			expr := "LOWER(" + column + ") LIKE ?"
			if i == 0 {
				q = q.Where(expr, pattern)
			} else {
				q = q.WhereOr(expr, pattern)
			}
		}
		return q
	})
}

// applyCursor adds the keyset range predicate: rows whose composite
// (created_at, id) key is strictly less than the cursor's. Written as an
// expanded comparison because sqlite and postgres don't share row-value
// syntax across the versions we support.
func applyCursor(q *bun.SelectQuery, cursor *pagination.Cursor) *bun.SelectQuery {
	if cursor == nil {
		return q
	}
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("created_at < ?", cursor.CreatedAt).
			WhereOr("(created_at = ? AND id < ?)", cursor.CreatedAt, cursor.ID)
	})
}
