// Package cache puts a TTL-checked store in front of idempotent remote reads.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Store persists cached responses and page cursors.
// Lookups return nil without error on a miss.
type Store interface {
	Get(ctx context.Context, key string) (*types.CacheEntry, error)
	Put(ctx context.Context, entry *types.CacheEntry) error
	GetPage(ctx context.Context, cursorKey string) (*types.RandomCacheEntry, error)
	PutPage(ctx context.Context, entry *types.RandomCacheEntry) error
}

// FetchFunc performs the upstream read on a miss.
type FetchFunc func(ctx context.Context) (string, error)

// FetchPageFunc reads one page of a paginated sequence and reports whether
// another page follows it.
type FetchPageFunc func(ctx context.Context, page int64) (string, bool, error)

// Fetcher serves responses from the store while they are younger than the
// caller's TTL and fetches them otherwise.
type Fetcher struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClock replaces the wall clock used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// NewFetcher creates a Fetcher on top of store.
func NewFetcher(store Store, logger *zap.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		store:  store,
		logger: logger.Named("cache"),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Key builds the canonical cache key of a request.
// Map keys are sorted so equal requests always produce the same key.
func Key(request any) (string, error) {
	return sonic.ConfigStd.MarshalToString(request)
}

// Fetch returns the cached response for key if it is younger than ttl, and
// otherwise calls doFetch and stores its result. With bypass the cache is
// never read but the fresh response is still stored.
func (f *Fetcher) Fetch(
	ctx context.Context, key string, ttl time.Duration, bypass bool, doFetch FetchFunc,
) (string, error) {
	if !bypass {
		if entry := f.lookup(ctx, key); entry != nil && f.fresh(entry.LastUpdated, ttl) {
			f.logger.Debug("Cache hit", zap.Int("keyLength", len(key)))
			return entry.Response, nil
		}
	}

	response, err := doFetch(ctx)
	if err != nil {
		return "", err
	}

	entry := &types.CacheEntry{
		Key:         key,
		Response:    response,
		LastUpdated: f.now().Unix(),
	}
	if err := f.store.Put(ctx, entry); err != nil {
		f.logger.Error("Failed to store cache entry", zap.Error(err))
	}

	return response, nil
}

// FetchPage works like Fetch for a paginated sequence. On a miss it fetches
// the last recorded page (starting at 1) and, when another page follows,
// records the next page as the baseline for the following miss. The
// recorded page never moves backwards.
func (f *Fetcher) FetchPage(
	ctx context.Context, cursorKey string, ttl time.Duration, doFetchPage FetchPageFunc,
) (string, error) {
	lastPage := int64(1)

	entry, writable := f.lookupPage(ctx, cursorKey)
	if entry != nil {
		if f.fresh(entry.LastUpdated, ttl) {
			f.logger.Debug("Page cache hit", zap.String("cursorKey", cursorKey))
			return entry.Response, nil
		}

		lastPage = max(entry.LastPage, 1)
	}

	response, hasNext, err := doFetchPage(ctx, lastPage)
	if err != nil {
		return "", err
	}

	nextPage := lastPage
	if hasNext {
		nextPage++
	}

	// When the store could not be reached the stored page may be larger than
	// lastPage and must not be overwritten.
	if !writable {
		return response, nil
	}

	updated := &types.RandomCacheEntry{
		CursorKey:   cursorKey,
		Response:    response,
		LastUpdated: f.now().Unix(),
		LastPage:    nextPage,
	}
	if err := f.store.PutPage(ctx, updated); err != nil {
		f.logger.Error("Failed to store page cursor",
			zap.String("cursorKey", cursorKey),
			zap.Error(err))
	}

	return response, nil
}

// fresh reports whether an entry written at lastUpdated is younger than ttl.
func (f *Fetcher) fresh(lastUpdated int64, ttl time.Duration) bool {
	age := f.now().Unix() - lastUpdated
	return age < int64(ttl/time.Second)
}

// lookup treats store failures as misses.
func (f *Fetcher) lookup(ctx context.Context, key string) *types.CacheEntry {
	entry, err := f.store.Get(ctx, key)
	if err != nil {
		f.logger.Warn("Failed to read cache entry, treating as miss", zap.Error(err))
		return nil
	}

	return entry
}

// lookupPage treats store failures as misses. It reports whether the cursor
// may be overwritten: a malformed cursor is replaced, one that could not be
// read at all is left alone.
func (f *Fetcher) lookupPage(ctx context.Context, cursorKey string) (*types.RandomCacheEntry, bool) {
	entry, err := f.store.GetPage(ctx, cursorKey)
	if err == nil {
		return entry, true
	}

	if errors.Is(err, types.ErrMalformedEntry) {
		f.logger.Warn("Malformed page cursor, replacing it",
			zap.String("cursorKey", cursorKey),
			zap.Error(err))

		return nil, true
	}

	f.logger.Warn("Failed to read page cursor, treating as miss",
		zap.String("cursorKey", cursorKey),
		zap.Error(err))

	return nil, false
}
