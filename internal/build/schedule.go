package build

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler reruns a build on a fixed interval.
type Scheduler struct {
	scheduler gocron.Scheduler
	builder   *Builder
	req       Request
	ctx       context.Context
	jobID     string
}

// NewScheduler creates a scheduler that builds every interval, starting
// immediately once started. Overlapping runs are skipped.
func NewScheduler(ctx context.Context, b *Builder, req Request, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("build interval must be positive, got %s", interval)
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	sch := &Scheduler{scheduler: s, builder: b, req: req, ctx: ctx}

	job, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(sch.execute),
		gocron.WithName("site-build"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic build job: %w", err)
	}
	sch.jobID = job.ID().String()
	return sch, nil
}

// JobID identifies the scheduled build job.
func (s *Scheduler) JobID() string { return s.jobID }

// Start begins the schedule.
func (s *Scheduler) Start() {
	s.builder.logger.Info("Starting build scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running build.
func (s *Scheduler) Stop() error {
	s.builder.logger.Info("Stopping build scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) execute() {
	// Run logs its own outcome.
	_, _ = s.builder.Run(s.ctx, s.req)
}
