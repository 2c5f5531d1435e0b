// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Schedule string // standard 5-field cron spec or descriptor such as "@hourly"
	Run      func(ctx context.Context) error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name     string
	Schedule string
	LastRun  time.Time
	NextRun  time.Time
}

type registeredJob struct {
	job     Job
	entryID cron.EntryID
	lastRun time.Time
}

// Scheduler wraps a cron instance. Jobs never overlap with themselves and a
// panicking job is recovered and logged.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	jobs map[string]*registeredJob
}

// New creates a new scheduler instance.
func New(logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]*registeredJob),
	}
}

// Add registers a job. Names must be unique.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a run func")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %q already registered", job.Name)
	}

	rj := &registeredJob{job: job}
	id, err := s.cron.AddFunc(job.Schedule, func() { s.run(rj) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", job.Schedule, job.Name, err)
	}
	rj.entryID = id
	s.jobs[job.Name] = rj
	return nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop cancels running jobs' context and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Trigger runs a job immediately on the calling goroutine.
func (s *Scheduler) Trigger(name string) error {
	s.mu.RLock()
	rj, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	return s.run(rj)
}

// Jobs lists registered jobs with their next run time.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, rj := range s.jobs {
		infos = append(infos, JobInfo{
			Name:     rj.job.Name,
			Schedule: rj.job.Schedule,
			LastRun:  rj.lastRun,
			NextRun:  s.cron.Entry(rj.entryID).Next,
		})
	}
	return infos
}

func (s *Scheduler) run(rj *registeredJob) error {
	start := time.Now()

	s.mu.Lock()
	rj.lastRun = start
	s.mu.Unlock()

	err := rj.job.Run(s.ctx)
	if err != nil {
		s.logger.Error("scheduled job failed", "job", rj.job.Name, "error", err)
		return err
	}
	s.logger.Debug("scheduled job finished", "job", rj.job.Name, "duration", time.Since(start))
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
