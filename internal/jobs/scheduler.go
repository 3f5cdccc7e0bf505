package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs the background maintenance jobs on fixed intervals
type Scheduler struct {
	inner gocron.Scheduler
}

// NewScheduler creates an idle scheduler
func NewScheduler() (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{inner: inner}, nil
}

// Register adds a job that runs every interval
func (s *Scheduler) Register(name string, interval time.Duration, run func()) error {
	_, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(run),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %q: %w", name, err)
	}
	log.Printf("✅ [SCHEDULER] Registered job: %s (every %v)", name, interval)
	return nil
}

// Start begins running all registered jobs
func (s *Scheduler) Start() {
	s.inner.Start()
	log.Printf("🚀 [SCHEDULER] Started with %d jobs", len(s.inner.Jobs()))
}

// Stop shuts the scheduler down, waiting for running jobs
func (s *Scheduler) Stop() {
	if err := s.inner.Shutdown(); err != nil {
		log.Printf("⚠️  [SCHEDULER] Shutdown error: %v", err)
		return
	}
	log.Println("✅ [SCHEDULER] Stopped")
}
