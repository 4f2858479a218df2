package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	cronparser "github.com/robfig/cron/v3"
)

// Job is a unit of scheduled background work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on cron schedules.
type Scheduler struct {
	scheduler gocron.Scheduler
	mu        sync.Mutex
	jobs      map[string]gocron.Job
}

// NewScheduler creates a scheduler pinned to UTC
func NewScheduler() (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: scheduler,
		jobs:      make(map[string]gocron.Job),
	}, nil
}

// ValidateCronExpression checks a standard 5-field cron expression.
func ValidateCronExpression(expr string) error {
	parser := cronparser.NewParser(cronparser.Minute | cronparser.Hour | cronparser.Dom | cronparser.Month | cronparser.Dow)
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// Register schedules a job on the given cron expression.
func (s *Scheduler) Register(cronExpr string, job Job) error {
	if err := ValidateCronExpression(cronExpr); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scheduled, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := job.Run(ctx); err != nil {
				log.Printf("❌ [SCHEDULER] Job %s failed: %v", job.Name(), err)
			}
		}),
		gocron.WithName(job.Name()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}

	s.jobs[job.Name()] = scheduled
	log.Printf("📅 [SCHEDULER] Registered job %s (cron: %s)", job.Name(), cronExpr)
	return nil
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.scheduler.Start()
	log.Printf("🚀 [SCHEDULER] Started with %d jobs", len(s.jobs))
}

// Stop shuts the scheduler down, waiting for running jobs
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
