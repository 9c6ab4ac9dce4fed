package rate

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Limiter spaces out requests per key, such as one webhook URL, with random
// jitter. Different keys never wait for each other.
type Limiter struct {
	mu          sync.Mutex
	next        map[string]time.Time
	minInterval time.Duration
	maxJitter   time.Duration
}

// New creates a rate limiter with base interval and jitter.
// For example, baseInterval=1s and jitter=200ms will result in delays between 800ms-1200ms.
func New(baseInterval, jitter time.Duration) *Limiter {
	return &Limiter{
		next:        make(map[string]time.Time),
		minInterval: baseInterval,
		maxJitter:   jitter,
	}
}

// Wait blocks until key may be used again and reserves the following slot.
func (r *Limiter) Wait(ctx context.Context, key string) error {
	r.mu.Lock()

	now := time.Now()
	slot := r.next[key]

	if slot.Before(now) {
		slot = now
	}

	r.next[key] = slot.Add(r.interval())
	r.mu.Unlock()

	waitDuration := time.Until(slot)
	if waitDuration <= 0 {
		return nil
	}

	timer := time.NewTimer(waitDuration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Forget drops keys whose reserved slots have passed and returns how many
// were dropped.
func (r *Limiter) Forget() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	dropped := 0

	for key, slot := range r.next {
		if slot.Before(now) {
			delete(r.next, key)
			dropped++
		}
	}

	return dropped
}

// Len returns the number of keys with a reserved slot.
func (r *Limiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.next)
}

// interval returns the base interval shifted by a random jitter.
func (r *Limiter) interval() time.Duration {
	if r.maxJitter <= 0 {
		return r.minInterval
	}

	jitterOffset := time.Duration(rand.Int64N(int64(r.maxJitter*2))) - r.maxJitter //nolint:gosec // jitter only

	return max(r.minInterval+jitterOffset, 0)
}
