package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"cv-intake/internal/config"
	"cv-intake/internal/processor"
)

// Scheduler drives the two background processor runs: a daily
// calendar-fired bot-interview batch and an interval-fired
// classification batch. Overlapping firings of the same job are skipped
// rather than queued; manual triggers through the API are independent
// and rely on the store's conditional status advance instead.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.SugaredLogger

	mu      sync.Mutex
	started bool
}

// New wires the configured jobs. The bot-interview job can be disabled
// entirely from the schedule config.
func New(sched *config.Schedule, bot, classifier *processor.Stage, base *zap.Logger) (*Scheduler, error) {
	logger := base.Sugar().Named("scheduler")

	loc, err := time.LoadLocation(sched.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", sched.Timezone, err)
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(base.Named("cron")))
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
	)

	s := &Scheduler{cron: c, logger: logger}

	if sched.BotEnabled {
		spec := fmt.Sprintf("%d %d * * *", sched.BotMinute, sched.BotHour)
		if _, err := c.AddFunc(spec, s.runJob(bot)); err != nil {
			return nil, fmt.Errorf("add bot interview job: %w", err)
		}
		logger.Infow("bot interview job scheduled",
			"at", fmt.Sprintf("%02d:%02d", sched.BotHour, sched.BotMinute), "timezone", sched.Timezone)
	} else {
		logger.Infow("bot interview job disabled by config")
	}

	spec := "@every " + sched.ClassifierInterval.String()
	if _, err := c.AddFunc(spec, s.runJob(classifier)); err != nil {
		return nil, fmt.Errorf("add classification job: %w", err)
	}
	logger.Infow("classification job scheduled", "interval", sched.ClassifierInterval)

	return s, nil
}

// runJob adapts a stage batch run to a cron job. A failed run is logged
// and the next firing proceeds independently.
func (s *Scheduler) runJob(stage *processor.Stage) func() {
	return func() {
		result, err := stage.Run(context.Background(), "scheduled")
		if err != nil {
			s.logger.Errorw("scheduled run failed", "stage", stage.Name(), "error", err)
			return
		}
		s.logger.Infow("scheduled run completed", "stage", stage.Name(),
			"total", result.Total, "success", result.Success, "failed", result.Failed)
	}
}

// Start launches the background schedule. Calling it again without a
// Stop in between is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		s.logger.Warnw("scheduler already started")
		return
	}
	s.cron.Start()
	s.started = true
	s.logger.Infow("scheduler started")
}

// Stop halts the schedule and waits for any running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
	s.logger.Infow("scheduler stopped")
}
