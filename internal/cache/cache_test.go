package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ValgulNecron/kasuki/internal/cache"
	"github.com/ValgulNecron/kasuki/internal/database/dbtest"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errStore = errors.New("store unavailable")

// memoryStore is a Store whose failures can be switched on.
type memoryStore struct {
	mu        sync.Mutex
	entries   map[string]types.CacheEntry
	pages     map[string]types.RandomCacheEntry
	failRead  bool
	failWrite bool
	malformed bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		entries: make(map[string]types.CacheEntry),
		pages:   make(map[string]types.RandomCacheEntry),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (*types.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failRead {
		return nil, errStore
	}

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}

	return &entry, nil
}

func (s *memoryStore) Put(_ context.Context, entry *types.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrite {
		return errStore
	}

	s.entries[entry.Key] = *entry

	return nil
}

func (s *memoryStore) GetPage(_ context.Context, cursorKey string) (*types.RandomCacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failRead {
		return nil, errStore
	}

	if s.malformed {
		return nil, fmt.Errorf("%w: last_page", types.ErrMalformedEntry)
	}

	entry, ok := s.pages[cursorKey]
	if !ok {
		return nil, nil
	}

	return &entry, nil
}

func (s *memoryStore) PutPage(_ context.Context, entry *types.RandomCacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrite {
		return errStore
	}

	s.pages[entry.CursorKey] = *entry

	return nil
}

// fakeClock is a settable clock in whole seconds.
type fakeClock struct {
	mu  sync.Mutex
	sec int64
}

func (c *fakeClock) Set(sec int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sec = sec
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return time.Unix(c.sec, 0)
}

// countingFetch returns the queued responses in order and counts calls.
type countingFetch struct {
	calls     int
	responses []string
	err       error
}

func (f *countingFetch) Fetch(context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}

	return f.responses[min(f.calls, len(f.responses))-1], nil
}

func newFetcher(store cache.Store, clock *fakeClock) *cache.Fetcher {
	return cache.NewFetcher(store, zap.NewNop(), cache.WithClock(clock.Now))
}

func TestFetchFreshnessAndStaleness(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	clock := &fakeClock{}
	fetcher := newFetcher(store, clock)
	upstream := &countingFetch{responses: []string{"A", "B"}}

	clock.Set(0)
	resp, err := fetcher.Fetch(ctx, "q1", 60*time.Second, false, upstream.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "A", resp)
	assert.Equal(t, int64(0), store.entries["q1"].LastUpdated)

	clock.Set(30)
	resp, err = fetcher.Fetch(ctx, "q1", 60*time.Second, false, upstream.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "A", resp)
	assert.Equal(t, 1, upstream.calls)

	clock.Set(61)
	resp, err = fetcher.Fetch(ctx, "q1", 60*time.Second, false, upstream.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "B", resp)
	assert.Equal(t, 2, upstream.calls)
	assert.Equal(t, int64(61), store.entries["q1"].LastUpdated)
}

func TestFetchExactlyTTLIsStale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fakeClock{}
	fetcher := newFetcher(newMemoryStore(), clock)
	upstream := &countingFetch{responses: []string{"A", "B"}}

	_, err := fetcher.Fetch(ctx, "q", 60*time.Second, false, upstream.Fetch)
	require.NoError(t, err)

	clock.Set(60)
	resp, err := fetcher.Fetch(ctx, "q", 60*time.Second, false, upstream.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "B", resp)
	assert.Equal(t, 2, upstream.calls)
}

func TestFetchBypassAlwaysFetches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	clock := &fakeClock{}
	fetcher := newFetcher(store, clock)
	upstream := &countingFetch{responses: []string{"A", "B", "C"}}

	for i, want := range []string{"A", "B", "C"} {
		clock.Set(int64(i))

		resp, err := fetcher.Fetch(ctx, "q", time.Hour, true, upstream.Fetch)
		require.NoError(t, err)
		assert.Equal(t, want, resp)
	}

	assert.Equal(t, 3, upstream.calls)
	assert.Equal(t, "C", store.entries["q"].Response)

	// A later normal call is served from what bypass stored
	resp, err := fetcher.Fetch(ctx, "q", time.Hour, false, upstream.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "C", resp)
	assert.Equal(t, 3, upstream.calls)
}

func TestFetchErrorsPropagateWithoutStaleFallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	clock := &fakeClock{}
	fetcher := newFetcher(store, clock)

	_, err := fetcher.Fetch(ctx, "q", 10*time.Second, false, (&countingFetch{responses: []string{"old"}}).Fetch)
	require.NoError(t, err)

	clock.Set(100)
	upstreamErr := errors.New("upstream down")
	failing := &countingFetch{err: upstreamErr}

	_, err = fetcher.Fetch(ctx, "q", 10*time.Second, false, failing.Fetch)
	require.ErrorIs(t, err, upstreamErr)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, int64(0), store.entries["q"].LastUpdated)
}

func TestFetchStoreFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	store.failRead = true
	store.failWrite = true
	fetcher := newFetcher(store, &fakeClock{})
	upstream := &countingFetch{responses: []string{"A"}}

	resp, err := fetcher.Fetch(ctx, "q", time.Minute, false, upstream.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "A", resp)

	resp, err = fetcher.Fetch(ctx, "q", time.Minute, false, upstream.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "A", resp)
	assert.Equal(t, 2, upstream.calls)
}

func TestFetchPageMonotonic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	clock := &fakeClock{}
	fetcher := newFetcher(store, clock)

	var requested []int64
	hasNext := true
	doFetchPage := func(_ context.Context, page int64) (string, bool, error) {
		requested = append(requested, page)
		return "page", hasNext, nil
	}

	var pages []int64
	for i := range 4 {
		if i == 3 {
			hasNext = false
		}

		// Each call is past the TTL of the previous one
		clock.Set(int64(i) * 100)

		_, err := fetcher.FetchPage(ctx, "anime", 10*time.Second, doFetchPage)
		require.NoError(t, err)

		pages = append(pages, store.pages["anime"].LastPage)
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, requested)
	assert.Equal(t, []int64{2, 3, 4, 4}, pages)
	assert.IsNonDecreasing(t, pages)
}

func TestFetchPageFreshHitSkipsUpstream(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	clock := &fakeClock{}
	fetcher := newFetcher(store, clock)

	calls := 0
	doFetchPage := func(_ context.Context, page int64) (string, bool, error) {
		calls++
		return "page-" + string(rune('0'+page)), true, nil
	}

	resp, err := fetcher.FetchPage(ctx, "manga", time.Minute, doFetchPage)
	require.NoError(t, err)
	assert.Equal(t, "page-1", resp)

	clock.Set(30)
	resp, err = fetcher.FetchPage(ctx, "manga", time.Minute, doFetchPage)
	require.NoError(t, err)
	assert.Equal(t, "page-1", resp)
	assert.Equal(t, 1, calls)

	clock.Set(60)
	resp, err = fetcher.FetchPage(ctx, "manga", time.Minute, doFetchPage)
	require.NoError(t, err)
	assert.Equal(t, "page-2", resp)
	assert.Equal(t, 2, calls)
}

func TestFetchPageUnreadableCursorIsNotOverwritten(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	store.pages["anime"] = types.RandomCacheEntry{CursorKey: "anime", Response: "old", LastPage: 7}
	store.failRead = true
	fetcher := newFetcher(store, &fakeClock{sec: 1000})

	resp, err := fetcher.FetchPage(ctx, "anime", time.Second, func(_ context.Context, page int64) (string, bool, error) {
		assert.Equal(t, int64(1), page)
		return "first", true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "first", resp)
	assert.Equal(t, int64(7), store.pages["anime"].LastPage)
}

func TestFetchPageRepairsMalformedCursor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore()
	store.pages["anime"] = types.RandomCacheEntry{CursorKey: "anime", Response: "old", LastPage: 7}
	store.malformed = true
	fetcher := newFetcher(store, &fakeClock{sec: 1000})

	calls := 0
	doFetchPage := func(_ context.Context, page int64) (string, bool, error) {
		calls++
		assert.Equal(t, int64(1), page)

		return "first", true, nil
	}

	resp, err := fetcher.FetchPage(ctx, "anime", time.Hour, doFetchPage)
	require.NoError(t, err)
	assert.Equal(t, "first", resp)

	repaired := store.pages["anime"]
	assert.Equal(t, int64(2), repaired.LastPage)
	assert.Equal(t, "first", repaired.Response)
	assert.Equal(t, int64(1000), repaired.LastUpdated)

	store.malformed = false

	resp, err = fetcher.FetchPage(ctx, "anime", time.Hour, doFetchPage)
	require.NoError(t, err)
	assert.Equal(t, "first", resp)
	assert.Equal(t, 1, calls)
}

func TestFetchPageRepairsMalformedSQLiteCursor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := dbtest.NewClient(t)

	_, err := client.DB().NewRaw(
		"INSERT INTO random_cache (cursor_key, response, last_updated, last_page) VALUES (?, ?, ?, ?)",
		"anime", "old", 0, "not a page",
	).Exec(ctx)
	require.NoError(t, err)

	_, err = client.Model().Cache().GetPage(ctx, "anime")
	require.ErrorIs(t, err, types.ErrMalformedEntry)

	fetcher := newFetcher(client.Model().Cache(), &fakeClock{sec: 500})

	calls := 0
	doFetchPage := func(_ context.Context, page int64) (string, bool, error) {
		calls++
		return fmt.Sprintf("page-%d", page), true, nil
	}

	for range 3 {
		resp, err := fetcher.FetchPage(ctx, "anime", time.Hour, doFetchPage)
		require.NoError(t, err)
		assert.Equal(t, "page-1", resp)
	}

	assert.Equal(t, 1, calls)

	entry, err := client.Model().Cache().GetPage(ctx, "anime")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(2), entry.LastPage)
}

func TestFetcherWithSQLiteStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &fakeClock{}
	fetcher := newFetcher(dbtest.NewClient(t).Model().Cache(), clock)
	upstream := &countingFetch{responses: []string{"A", "B"}}

	key, err := cache.Key(map[string]any{"query": "Frieren", "type": "ANIME"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"Frieren","type":"ANIME"}`, key)

	resp, err := fetcher.Fetch(ctx, key, time.Minute, false, upstream.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "A", resp)

	clock.Set(30)
	resp, err = fetcher.Fetch(ctx, key, time.Minute, false, upstream.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "A", resp)

	clock.Set(61)
	resp, err = fetcher.Fetch(ctx, key, time.Minute, false, upstream.Fetch)
	require.NoError(t, err)
	assert.Equal(t, "B", resp)
	assert.Equal(t, 2, upstream.calls)
}

func TestKeyIsCanonical(t *testing.T) {
	t.Parallel()

	a, err := cache.Key(map[string]any{"b": 1, "a": "x"})
	require.NoError(t, err)

	b, err := cache.Key(map[string]any{"a": "x", "b": 1})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, `{"a":"x","b":1}`, a)
}
