package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DueProcessor materializes recurring expenses that are due at now.
type DueProcessor interface {
	ProcessDueExpenses(ctx context.Context, now time.Time) (int, error)
}

// RecurringScheduler runs a DueProcessor on a standard 5-field cron schedule.
type RecurringScheduler struct {
	cron      *cron.Cron
	processor DueProcessor
	schedule  string
	timeout   time.Duration
	now       func() time.Time
}

func NewRecurringScheduler(schedule string, processor DueProcessor) (*RecurringScheduler, error) {
	s := &RecurringScheduler{
		cron:      cron.New(),
		processor: processor,
		schedule:  schedule,
		timeout:   2 * time.Minute,
		now:       time.Now,
	}
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins the cron loop. Jobs run on their own goroutines.
func (s *RecurringScheduler) Start() {
	slog.Info("Starting recurring scheduler", "schedule", s.schedule)
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job, bounded by ctx.
func (s *RecurringScheduler) Stop(ctx context.Context) {
	slog.Info("Stopping recurring scheduler")
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		slog.Warn("Recurring job still running at shutdown")
	}
}

// RunOnce processes everything due at now.
func (s *RecurringScheduler) RunOnce(ctx context.Context, now time.Time) (int, error) {
	count, err := s.processor.ProcessDueExpenses(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "Recurring processing failed", "error", err, "created", count)
		return count, err
	}
	slog.InfoContext(ctx, "Recurring processing complete", "expenses_created", count)
	return count, nil
}

func (s *RecurringScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, _ = s.RunOnce(ctx, s.now())
}
