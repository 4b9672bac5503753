// Package scheduler runs the periodic jobs on cron schedules.
//
// Only one process may run them: Start takes a non-blocking file lock and, if
// another process holds it, registers nothing and never tries again.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"github.com/simaogato/wealthtrack-backend/internal/log"
)

// Job is a named function fired on a standard five-field cron spec
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler owns the cron runner and the leadership lock
type Scheduler struct {
	cron    *cron.Cron
	lock    *flock.Flock
	logger  *log.Logger
	jobs    []Job
	timeout time.Duration
	cancel  context.CancelFunc
	leader  bool
}

// New creates a scheduler; nothing runs until Start
func New(lockPath string, logger *log.Logger, jobs ...Job) *Scheduler {
	logger = logger.WithComponent("scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
		),
		lock:    flock.New(lockPath),
		logger:  logger,
		jobs:    jobs,
		timeout: 30 * time.Minute,
	}
}

// Start tries to become leader. It returns false, with no triggers registered,
// when another process holds the lock.
func (s *Scheduler) Start(ctx context.Context) (bool, error) {
	locked, err := s.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire scheduler lock %s: %w", s.lock.Path(), err)
	}
	if !locked {
		s.logger.Info("Scheduler lock held by another process, periodic jobs disabled", "lock", s.lock.Path())
		return false, nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		if _, err := s.cron.AddFunc(job.Spec, s.wrap(ctx, job)); err != nil {
			s.cancel()
			_ = s.lock.Unlock()
			return false, fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
		s.logger.Info("Job scheduled", "job", job.Name, "spec", job.Spec)
	}

	s.leader = true
	s.cron.Start()
	return true, nil
}

// Stop waits for running jobs and releases the lock
func (s *Scheduler) Stop() {
	if !s.leader {
		return
	}
	<-s.cron.Stop().Done()
	s.cancel()
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("Failed to release scheduler lock", "error", err)
	}
	s.leader = false
}

// Entries returns the number of registered triggers
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// wrap bounds a job run by the scheduler timeout and logs its outcome.
// A failed run is simply retried at the next trigger.
func (s *Scheduler) wrap(ctx context.Context, job Job) func() {
	return func() {
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		started := time.Now()
		s.logger.InfoContext(runCtx, "Job started", "job", job.Name)
		if err := job.Run(runCtx); err != nil {
			s.logger.ErrorContext(runCtx, "Job failed", "job", job.Name, "error", err, "elapsed", time.Since(started))
			return
		}
		s.logger.InfoContext(runCtx, "Job finished", "job", job.Name, "elapsed", time.Since(started))
	}
}

// cronLogger adapts log.Logger to cron.Logger
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
