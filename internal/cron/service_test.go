package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"leadnest/platform/logger"
	"leadnest/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

type fakeLock struct {
	held     bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (j *testJob) Name() string { return j.name }

func (j *testJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.NewWithWriter("test", io.Discard),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "followups"}
	failing := &testJob{name: "reset-token-purge", err: errors.New("boom")}
	lock := &fakeLock{}

	if err := newTestService(t, lock, failing, ok).RunCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if ok.runs != 1 || failing.runs != 1 {
		t.Fatalf("expected each job once, got %d and %d", ok.runs, failing.runs)
	}
	if lock.releases != 1 || lock.held {
		t.Fatalf("expected lock released once, got %d (held=%v)", lock.releases, lock.held)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "followups"}
	lock := &fakeLock{held: true}

	if err := newTestService(t, lock, job).RunCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected no runs while locked, got %d", job.runs)
	}
	if lock.releases != 0 {
		t.Fatalf("expected no release, got %d", lock.releases)
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: logger.NewWithWriter("test", io.Discard)})
	if err == nil {
		t.Fatal("expected error without lock")
	}
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	r := NewRegistry(nil, funcJob{name: "a", fn: func(context.Context) error { return nil }})
	r.Register(nil)
	if got := len(r.Jobs()); got != 1 {
		t.Fatalf("expected 1 job, got %d", got)
	}
}

type funcJob struct {
	name string
	fn   func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }
