// Package scheduler runs the periodic polling jobs that keep the portfolio
// store fed when no snapshot events arrive.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a new scheduler. Schedules accept an optional seconds field.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
		log: log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job with a cron schedule, for example
// "*/30 * * * * *", "@every 5m" or "0 9 * * MON-FRI".
// A run still in progress when the next one is due is skipped.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	run := cron.FuncJob(func() { s.run(job) })
	skip := cron.SkipIfStillRunning(cron.DiscardLogger)

	if _, err := s.cron.AddJob(schedule, skip(run)); err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) run(job Job) {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	if err := job.Run(); err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Msg("Job failed")
		return
	}
	s.log.Debug().Str("job", job.Name()).Msg("Job completed")
}
