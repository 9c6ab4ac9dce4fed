package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Hook implements bun.QueryHook for logging queries.
type Hook struct {
	logger *zap.Logger
}

// NewHook creates a new query hook.
func NewHook(logger *zap.Logger) *Hook {
	return &Hook{logger: logger}
}

// BeforeQuery is a no-op.
func (h *Hook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery logs the query and its execution time.
func (h *Hook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	// Missing rows are how cache misses look, not failures
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Error("Query failed",
			zap.String("query", event.Query),
			zap.Duration("duration", time.Since(event.StartTime)),
			zap.Error(event.Err))

		return
	}

	h.logger.Debug("Query executed",
		zap.String("query", event.Query),
		zap.Duration("duration", time.Since(event.StartTime)))
}
