package store

import (
	"context"

	"github.com/uptrace/bun"
)

// InitSchema creates the tables and the indexes the paginators rely on.
// Idempotent; safe to run at every startup.
func InitSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Order)(nil),
		(*Item)(nil),
		(*Feedback)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	// Composite index backing both the offset ordering and the keyset
	// range scans.
	indexes := []struct {
		name    string
		table   string
		columns string
	}{
		{"idx_orders_created_at_id", "orders", "created_at DESC, id DESC"},
		{"idx_items_created_at_id", "items", "created_at DESC, id DESC"},
		{"idx_feedback_created_at_id", "feedback", "created_at DESC, id DESC"},
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx,
			"CREATE INDEX IF NOT EXISTS "+idx.name+" ON "+idx.table+" ("+idx.columns+")"); err != nil {
			return err
		}
	}
	return nil
}
