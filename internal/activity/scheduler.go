// Package activity announces tracked episodes when they air and keeps each
// tracked row pointed at the next occurrence.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// DefaultMaxCatchUp bounds how many skipped seconds a late tick replays.
const DefaultMaxCatchUp = 300

// Store persists activity records.
type Store interface {
	Due(ctx context.Context, fireAt int64) ([]types.ActivityRecord, error)
	Upsert(ctx context.Context, record *types.ActivityRecord) error
	Delete(ctx context.Context, subjectID, ownerID string) (bool, error)
}

// Notification is the payload delivered when a record fires.
type Notification struct {
	SubjectID   string
	OwnerID     string
	DisplayName string
	Episode     string
	Image       string
	FireAt      int64
}

// Notifier delivers notifications to a target such as a webhook URL.
type Notifier interface {
	Send(ctx context.Context, target string, n Notification) error
}

// NextOccurrence describes the upcoming occurrence of a subject.
type NextOccurrence struct {
	FireAt      int64
	Episode     string
	DisplayName string
}

// NextFunc looks up the next occurrence of a subject.
// A nil occurrence without error means the subject has no further occurrences.
type NextFunc func(ctx context.Context, subjectID string) (*NextOccurrence, error)

// Scheduler fires due activity records once per second.
type Scheduler struct {
	store      Store
	notifier   Notifier
	next       NextFunc
	logger     *zap.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	interval   time.Duration
	maxCatchUp int64
	tasks      conc.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithSleep replaces the function used to wait out per-record delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scheduler) {
		s.sleep = sleep
	}
}

// WithMaxCatchUp sets how many skipped seconds a late tick replays.
func WithMaxCatchUp(seconds int64) Option {
	return func(s *Scheduler) {
		if seconds > 0 {
			s.maxCatchUp = seconds
		}
	}
}

// WithTickInterval changes how often the loop wakes up.
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewScheduler creates a Scheduler.
func NewScheduler(store Store, notifier Notifier, next NextFunc, logger *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:      store,
		notifier:   notifier,
		next:       next,
		logger:     logger.Named("activity_scheduler"),
		now:        time.Now,
		sleep:      sleepContext,
		interval:   time.Second,
		maxCatchUp: DefaultMaxCatchUp,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run ticks until ctx is cancelled, then waits for the tasks it started.
// Seconds skipped because the loop woke up late are replayed in order, up to
// the catch-up limit, so every second is scanned at most once.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Activity scheduler started")
	defer s.logger.Info("Activity scheduler stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Wait is only called once no tick can start new tasks
	defer s.Wait()

	last := s.now().Unix()
	s.Tick(ctx, last)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			last = s.catchUp(ctx, last, s.now().Unix())
		}
	}
}

// catchUp ticks every second in (last, now] and returns the new last tick.
func (s *Scheduler) catchUp(ctx context.Context, last, now int64) int64 {
	if now <= last {
		return last
	}

	start := last + 1
	if now-start >= s.maxCatchUp {
		s.logger.Warn("Scheduler fell behind, skipping seconds",
			zap.Int64("from", start),
			zap.Int64("to", now-s.maxCatchUp))

		start = now - s.maxCatchUp + 1
	}

	for second := start; second <= now; second++ {
		if ctx.Err() != nil {
			return second - 1
		}

		s.Tick(ctx, second)
	}

	return now
}

// Tick starts a task for every record due at exactly now and returns
// without waiting for them.
func (s *Scheduler) Tick(ctx context.Context, now int64) {
	records, err := s.store.Due(ctx, now)
	if err != nil {
		s.logger.Error("Failed to get due activities", zap.Int64("now", now), zap.Error(err))
		return
	}

	if len(records) > 0 {
		s.logger.Debug("Activities due", zap.Int64("now", now), zap.Int("count", len(records)))
	}

	for i := range records {
		record := records[i]
		s.tasks.Go(func() {
			s.process(ctx, &record)
		})
	}
}

// Wait blocks until every started task has finished.
func (s *Scheduler) Wait() {
	s.tasks.Wait()
}

// process notifies one record and then refreshes it.
func (s *Scheduler) process(ctx context.Context, record *types.ActivityRecord) {
	log := s.logger.With(
		zap.String("subjectID", record.SubjectID),
		zap.String("ownerID", record.OwnerID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Activity task panicked", zap.Any("panic", r))
		}
	}()

	if record.DelaySeconds > 0 {
		if err := s.sleep(ctx, time.Duration(record.DelaySeconds)*time.Second); err != nil {
			log.Debug("Activity delay aborted", zap.Error(err))
			return
		}
	}

	err := s.notifier.Send(ctx, record.NotifyTarget, Notification{
		SubjectID:   record.SubjectID,
		OwnerID:     record.OwnerID,
		DisplayName: record.DisplayName,
		Episode:     record.Episode,
		Image:       record.Image,
		FireAt:      record.FireAt,
	})
	if err != nil {
		log.Error("Failed to send activity notification", zap.Error(err))
		return
	}

	if err := s.refresh(ctx, record); err != nil {
		log.Error("Failed to refresh activity", zap.Error(err))
	}
}

// refresh moves the record to its next occurrence or deletes it.
func (s *Scheduler) refresh(ctx context.Context, record *types.ActivityRecord) error {
	next, err := s.next(ctx, record.SubjectID)
	if err != nil {
		return fmt.Errorf("failed to get next occurrence: %w", err)
	}

	// Matching is exact, so an occurrence that does not move forward would
	// never fire again.
	if next != nil && next.FireAt <= record.FireAt {
		s.logger.Warn("Next occurrence is not after the current one, ending tracking",
			zap.String("subjectID", record.SubjectID),
			zap.Int64("current", record.FireAt),
			zap.Int64("next", next.FireAt))

		next = nil
	}

	if next == nil {
		if _, err := s.store.Delete(ctx, record.SubjectID, record.OwnerID); err != nil {
			return err
		}

		s.logger.Info("Activity finished, tracking removed",
			zap.String("subjectID", record.SubjectID),
			zap.String("ownerID", record.OwnerID))

		return nil
	}

	updated := *record
	updated.FireAt = next.FireAt
	updated.Episode = next.Episode

	if next.DisplayName != "" {
		updated.DisplayName = next.DisplayName
	}

	return s.store.Upsert(ctx, &updated)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
