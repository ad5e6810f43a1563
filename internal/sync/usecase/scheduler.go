package usecase

import (
	"context"
	"log"
	"sync"
	"time"
)

// batchRunner is the slice of SyncUsecase the scheduler needs
type batchRunner interface {
	RunScheduledSync(ctx context.Context) *BatchResult
}

// SchedulerStatus reports the scheduler's current state
type SchedulerStatus struct {
	Running         bool `json:"running"`
	IntervalMinutes int  `json:"interval_minutes"`
}

// Scheduler drives scheduled batch syncs on a fixed interval. It is an
// explicit, constructible service: the process entry point creates one
// instance and hands it to the API layer.
type Scheduler struct {
	runner   batchRunner
	interval time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
}

// NewScheduler creates a scheduler with the given default interval
func NewScheduler(runner batchRunner, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
	}
}

// Start begins the scheduler loop: one immediate batch, then one per
// interval. Starting an already-running scheduler is a no-op. A positive
// interval overrides the configured default.
func (s *Scheduler) Start(interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	if interval > 0 {
		s.interval = interval
	}
	s.running = true
	s.stopChan = make(chan struct{})

	log.Printf("[Scheduler] Starting sync scheduler (interval: %s)", s.interval)

	go s.loop(s.stopChan, s.interval)
	return true
}

func (s *Scheduler) loop(stopChan chan struct{}, interval time.Duration) {
	// Run immediately on start
	s.runner.RunScheduledSync(context.Background())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runner.RunScheduledSync(context.Background())
		case <-stopChan:
			log.Println("[Scheduler] Scheduler stopped")
			return
		}
	}
}

// Stop halts the scheduler loop; stopping a stopped scheduler is a no-op
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	close(s.stopChan)
	s.running = false
	return true
}

// Status reports whether the loop is running and at what interval
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SchedulerStatus{
		Running:         s.running,
		IntervalMinutes: int(s.interval / time.Minute),
	}
}
