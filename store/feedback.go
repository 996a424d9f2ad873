package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var feedbackSearchColumns = []string{"customer_name", "message"}

// FeedbackStore persists customer feedback.
type FeedbackStore struct {
	db     *bun.DB
	logger *slog.Logger
}

// NewFeedbackStore creates a FeedbackStore.
func NewFeedbackStore(db *bun.DB, logger *slog.Logger) *FeedbackStore {
	return &FeedbackStore{db: db, logger: logger}
}

// Page fetches one offset page of feedback plus the total matching the
// same search predicate.
func (s *FeedbackStore) Page(ctx context.Context, search string, offset, limit int) ([]*Feedback, int, error) {
	result, err := withRetry(ctx, s.logger, "feedback.page", func(ctx context.Context) (pageResult[*Feedback], error) {
		var entries []*Feedback
		q := s.db.NewSelect().Model(&entries)
		q = applySearch(q, feedbackSearchColumns, search)
		total, err := q.
			OrderExpr("created_at DESC").
			Limit(limit).
			Offset(offset).
			ScanAndCount(ctx)
		return pageResult[*Feedback]{rows: entries, total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return result.rows, result.total, nil
}

// Create inserts a feedback entry, assigning id and timestamp when absent.
func (s *FeedbackStore) Create(ctx context.Context, entry *Feedback) (*Feedback, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	return withRetry(ctx, s.logger, "feedback.create", func(ctx context.Context) (*Feedback, error) {
		_, err := s.db.NewInsert().Model(entry).Exec(ctx)
		return entry, err
	})
}
