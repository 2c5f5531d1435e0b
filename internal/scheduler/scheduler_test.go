// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/marquee-site/marquee/internal/service"
	"github.com/marquee-site/marquee/internal/testutil"
)

func TestNew(t *testing.T) {
	logger := testutil.TestLogger()

	s := New(logger)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.logger != logger {
		t.Error("New() scheduler has wrong logger")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s := New(testutil.TestLogger())
	if err := s.Add(Job{Name: "noop", Schedule: "@hourly", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start()
	s.Stop()
}

func TestSchedulerAddValidation(t *testing.T) {
	s := New(testutil.TestLogger())
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name    string
		job     Job
		wantErr bool
	}{
		{"valid", Job{Name: "a", Schedule: "0 * * * *", Run: noop}, false},
		{"duplicate", Job{Name: "a", Schedule: "@daily", Run: noop}, true},
		{"bad schedule", Job{Name: "b", Schedule: "every hour", Run: noop}, true},
		{"no name", Job{Schedule: "@hourly", Run: noop}, true},
		{"no func", Job{Name: "c", Schedule: "@hourly"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(tt.job)
			if (err != nil) != tt.wantErr {
				t.Errorf("Add() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchedulerTrigger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := New(logger)

	calls := 0
	_ = s.Add(Job{Name: "count", Schedule: "@hourly", Run: func(context.Context) error { calls++; return nil }})
	_ = s.Add(Job{Name: "fail", Schedule: "@hourly", Run: func(context.Context) error { return errors.New("disk full") }})

	if err := s.Trigger("count"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	if err := s.Trigger("fail"); err == nil {
		t.Error("Trigger(fail) should return the job error")
	}
	if !strings.Contains(buf.String(), "scheduled job failed") {
		t.Errorf("failure not logged: %s", buf.String())
	}

	if err := s.Trigger("missing"); err == nil {
		t.Error("Trigger(missing) should fail")
	}
}

func TestSchedulerJobs(t *testing.T) {
	s := New(testutil.TestLogger())
	_ = s.Add(Job{Name: "hourly", Schedule: "@hourly", Run: func(context.Context) error { return nil }})
	s.Start()
	defer s.Stop()

	jobs := s.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("Jobs() = %d entries, want 1", len(jobs))
	}
	if jobs[0].Name != "hourly" || jobs[0].Schedule != "@hourly" {
		t.Errorf("job = %+v", jobs[0])
	}
	if jobs[0].NextRun.IsZero() || jobs[0].NextRun.Sub(time.Now()) > time.Hour {
		t.Errorf("NextRun = %v, want within the next hour", jobs[0].NextRun)
	}
}

func TestSchedulerStopCancelsJobContext(t *testing.T) {
	s := New(testutil.TestLogger())
	var jobCtx context.Context
	_ = s.Add(Job{Name: "ctx", Schedule: "@hourly", Run: func(ctx context.Context) error { jobCtx = ctx; return nil }})
	_ = s.Trigger("ctx")

	s.Start()
	s.Stop()

	if jobCtx.Err() == nil {
		t.Error("job context should be cancelled after Stop")
	}
}

type fakeSweeper struct {
	res   service.SweepResult
	err   error
	calls int
}

func (f *fakeSweeper) SweepStale(context.Context) (service.SweepResult, error) {
	f.calls++
	return f.res, f.err
}

func TestUploadSweepJob(t *testing.T) {
	sweeper := &fakeSweeper{res: service.SweepResult{PartFiles: 2, ExpiredTargets: 1}}
	s := New(testutil.TestLogger())
	if err := s.Add(UploadSweepJob(sweeper, testutil.TestLogger())); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := s.Trigger(UploadSweepJobName); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if sweeper.calls != 1 {
		t.Errorf("calls = %d, want 1", sweeper.calls)
	}

	sweeper.err = errors.New("locked")
	if err := s.Trigger(UploadSweepJobName); err == nil {
		t.Error("sweep error should propagate")
	}
}

type fakePruner struct {
	gotAge time.Duration
	n      int64
	err    error
}

func (f *fakePruner) DeleteOlderThan(_ context.Context, age time.Duration) (int64, error) {
	f.gotAge = age
	return f.n, f.err
}

func TestAuditPruneJob(t *testing.T) {
	pruner := &fakePruner{n: 5}
	job := AuditPruneJob(pruner, 30*24*time.Hour, testutil.TestLogger())
	if job.Schedule != "@daily" {
		t.Errorf("Schedule = %q", job.Schedule)
	}

	s := New(testutil.TestLogger())
	if err := s.Add(job); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Trigger(AuditPruneJobName); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if pruner.gotAge != 30*24*time.Hour {
		t.Errorf("retention = %v, want 720h", pruner.gotAge)
	}

	pruner.err = errors.New("disk I/O error")
	if err := s.Trigger(AuditPruneJobName); err == nil {
		t.Error("prune error should propagate")
	}
}
