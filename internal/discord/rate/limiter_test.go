package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterSpacesSameKey(t *testing.T) {
	t.Parallel()

	limiter := New(50*time.Millisecond, 0)
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		require.NoError(t, limiter.Wait(ctx, "hook"))
	}

	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	limiter := New(time.Hour, 0)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "a"))
	require.NoError(t, limiter.Wait(ctx, "b"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	require.ErrorIs(t, limiter.Wait(cancelled, "a"), context.Canceled)
}

func TestLimiterForget(t *testing.T) {
	t.Parallel()

	limiter := New(time.Millisecond, 0)
	require.NoError(t, limiter.Wait(context.Background(), "a"))

	require.NoError(t, limiter.Wait(context.Background(), "b"))
	assert.Equal(t, 2, limiter.Len())

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 2, limiter.Forget())
	assert.Zero(t, limiter.Len())
	assert.Zero(t, limiter.Forget())
}
