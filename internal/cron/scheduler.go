package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// ErrUnknownJob is returned by Trigger for unregistered names.
var ErrUnknownJob = errors.New("cron: unknown job")

// ErrJobRunning is returned by Trigger when the job is already running.
var ErrJobRunning = errors.New("cron: job already running")

// Scheduler manages periodic job execution using cron expressions.
// Each job is protected by a per-job mutex to prevent parallel execution
// of the same job (uses TryLock, so check and acquire are one step).
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []Job
	byName map[string]Job
	locks  map[string]*sync.Mutex
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		byName: make(map[string]Job),
		locks:  make(map[string]*sync.Mutex),
		logger: logger,
	}
}

// RegisterJob adds a job to the scheduler. Must be called before Start().
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}

	s.byName[name] = j
	s.locks[name] = &sync.Mutex{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Start initializes the cron scheduler and begins executing registered jobs.
// Jobs run with a context derived from ctx that outlives ctx's deadline
// and ends at Stop. Returns an error if any job has an invalid schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser))

	for _, job := range s.jobs {
		lock := s.locks[job.Name()]

		_, err := c.AddFunc(job.Schedule(), func() {
			// If the previous tick is still running, skip this one.
			if !lock.TryLock() {
				s.logger.Warn("cron: job still running, skipping tick",
					"job", job.Name(),
				)
				return
			}
			defer lock.Unlock()
			s.run(jobCtx, job)
		})
		if err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.cron = c
	s.ctx = jobCtx
	s.cancel = cancel
	s.cron.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.jobs))
	return nil
}

// Trigger runs the named job once, outside its schedule, and waits for it.
// It honors the same overlap protection as scheduled ticks.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.byName[name]
	lock := s.locks[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	if !lock.TryLock() {
		return fmt.Errorf("%w: %q", ErrJobRunning, name)
	}
	defer lock.Unlock()
	return s.run(ctx, job)
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	s.logger.Debug("cron: job started", "job", job.Name())
	if err := job.Run(ctx); err != nil {
		s.logger.Error("cron: job failed",
			"job", job.Name(),
			"error", err,
		)
		return err
	}
	s.logger.Debug("cron: job completed", "job", job.Name())
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for in-flight jobs
// or until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		select {
		case <-s.cron.Stop().Done():
			s.logger.Info("cron: scheduler stopped")
		case <-ctx.Done():
			return fmt.Errorf("cron: stop: %w", ctx.Err())
		}
	}
	return nil
}
