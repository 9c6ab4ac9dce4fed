package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ValgulNecron/kasuki/internal/database/dbretry"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// CacheModel handles the request and random page caches.
type CacheModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewCache creates a CacheModel for managing cache entries.
func NewCache(db *bun.DB, logger *zap.Logger) *CacheModel {
	return &CacheModel{
		db:     db,
		logger: logger.Named("db_cache"),
	}
}

// Get retrieves the cached response for key.
// Returns nil without error when no entry exists.
func (r *CacheModel) Get(ctx context.Context, key string) (*types.CacheEntry, error) {
	var entry types.CacheEntry

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&entry).
			Where("key = ?", key).
			Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil //nolint:nilnil // a miss is not an error
		}

		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	return &entry, nil
}

// Put creates or overwrites the entry for its key.
func (r *CacheModel) Put(ctx context.Context, entry *types.CacheEntry) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(entry).
			On("CONFLICT (key) DO UPDATE").
			Set("response = EXCLUDED.response").
			Set("last_updated = EXCLUDED.last_updated").
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	r.logger.Debug("Stored cache entry",
		zap.Int("keyLength", len(entry.Key)),
		zap.Int64("lastUpdated", entry.LastUpdated))

	return nil
}

// pageRow is a random_cache row read with every column as text so that
// values of the wrong type are reported as malformed instead of failing the scan.
type pageRow struct {
	Response    string `bun:"response"`
	LastUpdated string `bun:"last_updated"`
	LastPage    string `bun:"last_page"`
}

// GetPage retrieves the page cursor for cursorKey.
// Returns nil without error when no cursor exists, and an error wrapping
// types.ErrMalformedEntry when the stored row cannot be decoded.
func (r *CacheModel) GetPage(ctx context.Context, cursorKey string) (*types.RandomCacheEntry, error) {
	var row pageRow

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model((*types.RandomCacheEntry)(nil)).
			ColumnExpr("response").
			ColumnExpr("CAST(last_updated AS TEXT) AS last_updated").
			ColumnExpr("CAST(last_page AS TEXT) AS last_page").
			Where("cursor_key = ?", cursorKey).
			Scan(ctx, &row)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil //nolint:nilnil // a miss is not an error
		}

		return nil, fmt.Errorf("failed to get page cursor %s: %w", cursorKey, err)
	}

	lastUpdated, err := strconv.ParseInt(row.LastUpdated, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s last_updated: %w", types.ErrMalformedEntry, cursorKey, err)
	}

	lastPage, err := strconv.ParseInt(row.LastPage, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s last_page: %w", types.ErrMalformedEntry, cursorKey, err)
	}

	return &types.RandomCacheEntry{
		CursorKey:   cursorKey,
		Response:    row.Response,
		LastUpdated: lastUpdated,
		LastPage:    lastPage,
	}, nil
}

// PutPage creates or overwrites the cursor for its key.
func (r *CacheModel) PutPage(ctx context.Context, entry *types.RandomCacheEntry) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(entry).
			On("CONFLICT (cursor_key) DO UPDATE").
			Set("response = EXCLUDED.response").
			Set("last_updated = EXCLUDED.last_updated").
			Set("last_page = EXCLUDED.last_page").
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to store page cursor %s: %w", entry.CursorKey, err)
	}

	r.logger.Debug("Stored page cursor",
		zap.String("cursorKey", entry.CursorKey),
		zap.Int64("lastPage", entry.LastPage))

	return nil
}

// Count returns the number of request cache entries and page cursors.
func (r *CacheModel) Count(ctx context.Context) (int, int, error) {
	requests, err := r.db.NewSelect().Model((*types.CacheEntry)(nil)).Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count cache entries: %w", err)
	}

	pages, err := r.db.NewSelect().Model((*types.RandomCacheEntry)(nil)).Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count page cursors: %w", err)
	}

	return requests, pages, nil
}
