package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/orderdesk/orderdesk/pagination"
	"github.com/orderdesk/orderdesk/pkg/apperrors"
)

var itemSearchColumns = []string{"name", "description"}

// ItemStore persists catalog items. Deletion is always soft so historical
// orders keep resolving their lines; the trash stays queryable through
// PageDeleted.
type ItemStore struct {
	db     *bun.DB
	logger *slog.Logger
}

// NewItemStore creates an ItemStore.
func NewItemStore(db *bun.DB, logger *slog.Logger) *ItemStore {
	return &ItemStore{db: db, logger: logger}
}

// Page fetches one offset page of live items plus the total matching the
// same search predicate.
func (s *ItemStore) Page(ctx context.Context, search string, offset, limit int) ([]*Item, int, error) {
	result, err := withRetry(ctx, s.logger, "items.page", func(ctx context.Context) (pageResult[*Item], error) {
		var items []*Item
		q := s.db.NewSelect().Model(&items)
		q = applySearch(q, itemSearchColumns, search)
		total, err := q.
			OrderExpr("created_at DESC").
			Limit(limit).
			Offset(offset).
			ScanAndCount(ctx)
		return pageResult[*Item]{rows: items, total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return result.rows, result.total, nil
}

// PageAfter fetches live items strictly after the cursor in
// (created_at DESC, id DESC) order.
func (s *ItemStore) PageAfter(ctx context.Context, search string, cursor *pagination.Cursor, limit int) ([]*Item, error) {
	return withRetry(ctx, s.logger, "items.page_after", func(ctx context.Context) ([]*Item, error) {
		var items []*Item
		q := s.db.NewSelect().Model(&items)
		q = applySearch(q, itemSearchColumns, search)
		q = applyCursor(q, cursor)
		err := q.
			OrderExpr("created_at DESC, id DESC").
			Limit(limit).
			Scan(ctx)
		return items, err
	})
}

// PageDeleted fetches one offset page of soft-deleted items, most recently
// deleted first.
func (s *ItemStore) PageDeleted(ctx context.Context, search string, offset, limit int) ([]*Item, int, error) {
	result, err := withRetry(ctx, s.logger, "items.page_deleted", func(ctx context.Context) (pageResult[*Item], error) {
		var items []*Item
		q := s.db.NewSelect().Model(&items).WhereDeleted()
		q = applySearch(q, itemSearchColumns, search)
		total, err := q.
			OrderExpr("deleted_at DESC").
			Limit(limit).
			Offset(offset).
			ScanAndCount(ctx)
		return pageResult[*Item]{rows: items, total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return result.rows, result.total, nil
}

// Create inserts a new item, assigning id and timestamps when absent.
func (s *ItemStore) Create(ctx context.Context, item *Item) (*Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	return withRetry(ctx, s.logger, "items.create", func(ctx context.Context) (*Item, error) {
		_, err := s.db.NewInsert().Model(item).Exec(ctx)
		return item, err
	})
}

// ItemPatch carries the optional fields of a partial item update. Nil
// fields are left untouched.
type ItemPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
}

// Update applies a partial update to a live item.
func (s *ItemStore) Update(ctx context.Context, id string, patch ItemPatch) (*Item, error) {
	return withRetry(ctx, s.logger, "items.update", func(ctx context.Context) (*Item, error) {
		q := s.db.NewUpdate().
			Model((*Item)(nil)).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", id).
			Where("deleted_at IS NULL")
		if patch.Name != nil {
			q = q.Set("name = ?", *patch.Name)
		}
		if patch.Description != nil {
			q = q.Set("description = ?", *patch.Description)
		}
		if patch.Price != nil {
			q = q.Set("price = ?", *patch.Price)
		}
		if patch.Stock != nil {
			q = q.Set("stock = ?", *patch.Stock)
		}

		res, err := q.Exec(ctx)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, apperrors.NotFound("item not found")
		}

		item := new(Item)
		if err := s.db.NewSelect().Model(item).Where("i.id = ?", id).Scan(ctx); err != nil {
			return nil, err
		}
		return item, nil
	})
}

// SoftDelete moves an item to the trash. bun translates the delete into
// setting deleted_at because the model declares a soft-delete column.
func (s *ItemStore) SoftDelete(ctx context.Context, id string) error {
	_, err := withRetry(ctx, s.logger, "items.soft_delete", func(ctx context.Context) (struct{}, error) {
		res, err := s.db.NewDelete().
			Model((*Item)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return struct{}{}, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return struct{}{}, err
		}
		if affected == 0 {
			return struct{}{}, apperrors.NotFound("item not found")
		}
		return struct{}{}, nil
	})
	return err
}
