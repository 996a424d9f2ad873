package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"

	"github.com/orderdesk/orderdesk/pkg/apperrors"
)

// maxAttempts caps the total number of attempts per operation, the first
// call included.
const maxAttempts = 3

// retryBaseDelay is the initial backoff between attempts; subsequent waits
// grow exponentially with jitter.
const retryBaseDelay = 100 * time.Millisecond

// withRetry invokes op and retries it on transient failures, up to
// maxAttempts total attempts with exponential backoff. Non-transient
// failures (validation, not-found, constraint violations) propagate
// immediately and unchanged. A transient failure that survives every
// attempt is tagged as a transient store error so transports answer it
// with 503 rather than a generic 500; the cause stays reachable through
// errors.Is.
//
// Precondition: op must be idempotent or naturally safe to repeat. The
// wrapper provides no deduplication of side effects.
func withRetry[T any](ctx context.Context, logger *slog.Logger, operation string, op func(context.Context) (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryBaseDelay
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, maxAttempts-1), ctx)

	attempt := 0
	value, err := backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		if !IsTransient(err) {
			return value, backoff.Permanent(err)
		}
		return value, err
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("transient store failure, retrying",
			"operation", operation,
			"attempt", attempt,
			"backoff", wait,
			"error", err)
	})
	if err != nil && IsTransient(err) {
		return value, apperrors.Transient(err, operation+" unavailable")
	}
	return value, err
}

// IsTransient classifies an error as the connectivity/timeout class worth
// retrying. Anything else (bad input, missing rows, constraint violations)
// is permanent by definition.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if apperrors.IsTransient(err) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// SQLSTATE classes: 08 connection exception, 53 insufficient
	// resources, 57 operator intervention (admin shutdown, crash
	// recovery).
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return true
		}
	}

	return false
}
