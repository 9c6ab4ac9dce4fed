package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// dueRecorder records which seconds were queried.
type dueRecorder struct {
	mu      sync.Mutex
	seconds []int64
}

func (d *dueRecorder) Due(_ context.Context, fireAt int64) ([]types.ActivityRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seconds = append(d.seconds, fireAt)

	return nil, nil
}

func (d *dueRecorder) Upsert(context.Context, *types.ActivityRecord) error { return nil }

func (d *dueRecorder) Delete(context.Context, string, string) (bool, error) { return false, nil }

func (d *dueRecorder) Seconds() []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]int64(nil), d.seconds...)
}

func TestCatchUp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("replays skipped seconds once", func(t *testing.T) {
		t.Parallel()

		store := &dueRecorder{}
		s := NewScheduler(store, nil, nil, zap.NewNop())

		last := s.catchUp(ctx, 100, 101)
		last = s.catchUp(ctx, last, 104)
		last = s.catchUp(ctx, last, 104)

		assert.Equal(t, int64(104), last)
		assert.Equal(t, []int64{101, 102, 103, 104}, store.Seconds())
	})

	t.Run("clock going backwards", func(t *testing.T) {
		t.Parallel()

		store := &dueRecorder{}
		s := NewScheduler(store, nil, nil, zap.NewNop())

		assert.Equal(t, int64(100), s.catchUp(ctx, 100, 95))
		assert.Empty(t, store.Seconds())
	})

	t.Run("bounded by max catch up", func(t *testing.T) {
		t.Parallel()

		store := &dueRecorder{}
		s := NewScheduler(store, nil, nil, zap.NewNop(), WithMaxCatchUp(3))

		assert.Equal(t, int64(110), s.catchUp(ctx, 100, 110))
		assert.Equal(t, []int64{108, 109, 110}, store.Seconds())
	})
}

func TestRunTicksUntilCancelled(t *testing.T) {
	t.Parallel()

	store := &dueRecorder{}

	var (
		mu  sync.Mutex
		sec int64 = 1000
	)

	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		sec++

		return time.Unix(sec, 0)
	}

	s := NewScheduler(store, nil, nil, zap.NewNop(),
		WithClock(clock),
		WithTickInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(store.Seconds()) >= 5 }, 5*time.Second, time.Millisecond)
	cancel()
	<-done

	seconds := store.Seconds()
	for i := 1; i < len(seconds); i++ {
		assert.Equal(t, seconds[i-1]+1, seconds[i])
	}
}
