package dbretry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/uptrace/bun"
)

var (
	maxElapsedTime  = 10 * time.Second
	initialInterval = 50 * time.Millisecond
	maxInterval     = 1 * time.Second
	maxRetries      = uint64(5)
)

// IsRetryableError checks if the given error is a transient SQLite lock error.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	// Both cgo and pure-Go drivers report busy and locked states in their messages.
	errMsg := err.Error()

	return strings.Contains(errMsg, "SQLITE_BUSY") ||
		strings.Contains(errMsg, "SQLITE_LOCKED") ||
		strings.Contains(errMsg, "database is locked") ||
		strings.Contains(errMsg, "database table is locked")
}

func newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(maxElapsedTime),
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxInterval(maxInterval),
	), maxRetries)

	return backoff.WithContext(b, ctx)
}

// Operation wraps a database operation with retry logic.
func Operation[T any](ctx context.Context, operation func(context.Context) (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)

	err := backoff.Retry(func() error {
		var err error

		result, err = operation(ctx)
		if err != nil {
			if !IsRetryableError(err) {
				return backoff.Permanent(err)
			}

			lastErr = err

			return err
		}

		return nil
	}, newBackOff(ctx))
	if err != nil {
		if lastErr != nil && errors.Is(err, lastErr) {
			return result, fmt.Errorf("database operation failed after retries: %w", err)
		}

		return result, err
	}

	return result, nil
}

// NoResult wraps a database operation that doesn't return a result.
func NoResult(ctx context.Context, operation func(context.Context) error) error {
	_, err := Operation(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, operation(ctx)
	})

	return err
}

// Transaction wraps a database transaction with retry logic.
func Transaction(ctx context.Context, db *bun.DB, fn func(context.Context, bun.Tx) error) error {
	return NoResult(ctx, func(ctx context.Context) error {
		return db.RunInTx(ctx, nil, fn)
	})
}
