package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string { return "counting" }

func TestScheduler_AddJob_rejectsInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &countingJob{})
	require.Error(t, err)
	assert.Equal(t, 0, s.Entries())
}

func TestScheduler_AddJob_acceptsFiveAndSixFieldSchedules(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("*/5 * * * *", &countingJob{}))
	require.NoError(t, s.AddJob("*/30 * * * * *", &countingJob{}))
	require.NoError(t, s.AddJob("@every 1m", &countingJob{}))
	assert.Equal(t, 3, s.Entries())
}

func TestScheduler_runsRegisteredJobs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}

	require.NoError(t, s.AddJob("@every 1s", job))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}

	err := s.RunNow(job)
	require.Error(t, err)
	assert.Equal(t, int32(1), job.runs.Load())
}
