package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// RequestKeyPrefix prefixes hashes holding cached responses.
	RequestKeyPrefix = "kasuki:cache:request:"
	// PageKeyPrefix prefixes hashes holding page cursors.
	PageKeyPrefix = "kasuki:cache:page:"
)

// ErrMalformedEntry is returned when a stored hash is missing fields.
var ErrMalformedEntry = types.ErrMalformedEntry

// CacheStore keeps cache entries in Redis hashes.
// Entries never expire in Redis; staleness is decided by the reader.
type CacheStore struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewCacheStore creates a CacheStore on top of an existing client.
func NewCacheStore(client rueidis.Client, logger *zap.Logger) *CacheStore {
	return &CacheStore{
		client: client,
		logger: logger.Named("redis_cache"),
	}
}

// Get retrieves the cached response for key, or nil if none exists.
func (s *CacheStore) Get(ctx context.Context, key string) (*types.CacheEntry, error) {
	fields, err := s.hgetall(ctx, RequestKeyPrefix+key)
	if err != nil || fields == nil {
		return nil, err
	}

	response, err := stringField(fields, "response")
	if err != nil {
		return nil, err
	}

	lastUpdated, err := parseInt(fields, "last_updated")
	if err != nil {
		return nil, err
	}

	return &types.CacheEntry{
		Key:         key,
		Response:    response,
		LastUpdated: lastUpdated,
	}, nil
}

// Put creates or overwrites the entry for its key.
func (s *CacheStore) Put(ctx context.Context, entry *types.CacheEntry) error {
	cmd := s.client.B().Hset().Key(RequestKeyPrefix+entry.Key).FieldValue().
		FieldValue("response", entry.Response).
		FieldValue("last_updated", strconv.FormatInt(entry.LastUpdated, 10)).
		Build()

	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// GetPage retrieves the page cursor for cursorKey, or nil if none exists.
func (s *CacheStore) GetPage(ctx context.Context, cursorKey string) (*types.RandomCacheEntry, error) {
	fields, err := s.hgetall(ctx, PageKeyPrefix+cursorKey)
	if err != nil || fields == nil {
		return nil, err
	}

	response, err := stringField(fields, "response")
	if err != nil {
		return nil, err
	}

	lastUpdated, err := parseInt(fields, "last_updated")
	if err != nil {
		return nil, err
	}

	lastPage, err := parseInt(fields, "last_page")
	if err != nil {
		return nil, err
	}

	return &types.RandomCacheEntry{
		CursorKey:   cursorKey,
		Response:    response,
		LastUpdated: lastUpdated,
		LastPage:    lastPage,
	}, nil
}

// PutPage creates or overwrites the cursor for its key.
func (s *CacheStore) PutPage(ctx context.Context, entry *types.RandomCacheEntry) error {
	cmd := s.client.B().Hset().Key(PageKeyPrefix+entry.CursorKey).FieldValue().
		FieldValue("response", entry.Response).
		FieldValue("last_updated", strconv.FormatInt(entry.LastUpdated, 10)).
		FieldValue("last_page", strconv.FormatInt(entry.LastPage, 10)).
		Build()

	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to store page cursor %s: %w", entry.CursorKey, err)
	}

	return nil
}

// hgetall returns nil without error for missing keys.
func (s *CacheStore) hgetall(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.client.Do(ctx, s.client.B().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if len(fields) == 0 {
		return nil, nil
	}

	return fields, nil
}

func stringField(fields map[string]string, name string) (string, error) {
	v, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrMalformedEntry, name)
	}

	return v, nil
}

func parseInt(fields map[string]string, name string) (int64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedEntry, name)
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrMalformedEntry, name, err)
	}

	return v, nil
}
