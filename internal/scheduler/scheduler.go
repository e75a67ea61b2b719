// Package scheduler drives periodic background work of the vault.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	apperrors "github.com/allisson/orgvault/internal/errors"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

// DefaultRotationSchedule is used when no schedule is configured.
const DefaultRotationSchedule = "@every 1h"

// RotationProcessor advances the rotation schedule of due secrets.
type RotationProcessor interface {
	ProcessScheduledRotations(ctx context.Context) (*secretsDomain.ScheduledRotationResult, error)
}

// RotationScheduler runs ProcessScheduledRotations on a cron schedule.
// A run that is still in progress when the next one is due causes that next run
// to be skipped.
type RotationScheduler struct {
	processor RotationProcessor
	schedule  string
	logger    *slog.Logger
	cron      *cron.Cron

	mu     sync.Mutex
	cancel context.CancelFunc
}

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NewRotationScheduler validates schedule and builds a stopped scheduler. An empty
// schedule means DefaultRotationSchedule.
func NewRotationScheduler(
	processor RotationProcessor,
	schedule string,
	logger *slog.Logger,
) (*RotationScheduler, error) {
	if schedule == "" {
		schedule = DefaultRotationSchedule
	}
	if _, err := parser.Parse(schedule); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, fmt.Sprintf("invalid rotation schedule %q: %v", schedule, err))
	}

	return &RotationScheduler{
		processor: processor,
		schedule:  schedule,
		logger:    logger,
	}, nil
}

// Start schedules the rotation job. Jobs run with a context derived from ctx that
// is cancelled by Stop.
func (s *RotationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("rotation scheduler already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cronLogger{logger: s.logger}),
	)
	if _, err := c.AddJob(s.schedule, s.job(runCtx)); err != nil {
		cancel()
		return fmt.Errorf("failed to schedule rotations: %w", err)
	}
	c.Start()

	s.cron = c
	s.cancel = cancel
	s.logger.Info("rotation scheduler started", slog.String("schedule", s.schedule))
	return nil
}

// Stop cancels any running job and waits for it to return.
func (s *RotationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}

	s.cancel()
	<-s.cron.Stop().Done()
	s.cron = nil
	s.cancel = nil

	s.logger.Info("rotation scheduler stopped")
}

// RunOnce processes due rotations a single time.
func (s *RotationScheduler) RunOnce(ctx context.Context) (*secretsDomain.ScheduledRotationResult, error) {
	start := time.Now()
	result, err := s.processor.ProcessScheduledRotations(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled rotation run failed", slog.Any("error", err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "scheduled rotation run completed",
		slog.Int("processed", result.Processed),
		slog.Int("failed", result.Failed),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (s *RotationScheduler) job(ctx context.Context) cron.Job {
	run := cron.FuncJob(func() {
		_, _ = s.RunOnce(ctx)
	})
	return cron.NewChain(cron.SkipIfStillRunning(cronLogger{logger: s.logger})).Then(run)
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
