package usecase

import (
	"context"
	"testing"
	"time"
)

type countingRunner struct {
	ran chan struct{}
}

func (r *countingRunner) RunScheduledSync(ctx context.Context) *BatchResult {
	select {
	case r.ran <- struct{}{}:
	default:
	}
	return &BatchResult{}
}

func TestSchedulerStartRunsImmediately(t *testing.T) {
	runner := &countingRunner{ran: make(chan struct{}, 1)}
	s := NewScheduler(runner, time.Hour)
	defer s.Stop()

	if !s.Start(0) {
		t.Fatal("first Start should succeed")
	}

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not run a batch on start")
	}

	status := s.Status()
	if !status.Running {
		t.Error("status should report running")
	}
	if status.IntervalMinutes != 60 {
		t.Errorf("interval = %d minutes, want 60", status.IntervalMinutes)
	}
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	runner := &countingRunner{ran: make(chan struct{}, 1)}
	s := NewScheduler(runner, time.Hour)
	defer s.Stop()

	if !s.Start(0) {
		t.Fatal("first Start should succeed")
	}
	if s.Start(0) {
		t.Error("second Start on a running scheduler should be a no-op")
	}
}

func TestSchedulerStop(t *testing.T) {
	runner := &countingRunner{ran: make(chan struct{}, 1)}
	s := NewScheduler(runner, time.Hour)

	if s.Stop() {
		t.Error("Stop before Start should report not running")
	}

	s.Start(0)
	if !s.Stop() {
		t.Error("Stop on a running scheduler should succeed")
	}
	if s.Status().Running {
		t.Error("status should report stopped")
	}
	if s.Stop() {
		t.Error("second Stop should report not running")
	}
}

func TestSchedulerIntervalOverride(t *testing.T) {
	runner := &countingRunner{ran: make(chan struct{}, 1)}
	s := NewScheduler(runner, time.Hour)
	defer s.Stop()

	s.Start(30 * time.Minute)
	if got := s.Status().IntervalMinutes; got != 30 {
		t.Errorf("interval = %d minutes, want 30", got)
	}
}
