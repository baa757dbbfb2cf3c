package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

type countingJob struct {
	calls    atomic.Int32
	deadline atomic.Bool
	err      error
	done     chan struct{}
}

func newCountingJob(err error) *countingJob {
	return &countingJob{err: err, done: make(chan struct{}, 8)}
}

func (j *countingJob) Execute(ctx context.Context) (int, error) {
	j.calls.Add(1)
	_, ok := ctx.Deadline()
	j.deadline.Store(ok)
	j.done <- struct{}{}
	return 3, j.err
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}

func newTestManager(t *testing.T) *SchedulerManager {
	t.Helper()
	m, err := NewSchedulerManager(logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Stop() })
	return m
}

func TestSchedulerManager_RegistersJobs(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.RegisterRenewalJob(JobSchedule{Cron: "30 0 * * *", Timeout: time.Hour}, newCountingJob(nil)))
	require.NoError(t, m.RegisterReaperJob(JobSchedule{Cron: "0 2 * * *"}, newCountingJob(nil)))
	require.NoError(t, m.RegisterNotificationJob(JobSchedule{Cron: "0 9 * * *"}, newCountingJob(nil)))

	names := make([]string, 0, 3)
	for _, j := range m.Jobs() {
		names = append(names, j.Name())
	}
	assert.ElementsMatch(t, []string{JobNameRenewal, JobNameReaper, JobNameNotification}, names)

	m.Start()
	assert.True(t, m.IsStarted())

	runs := m.NextRuns()
	require.Contains(t, runs, JobNameRenewal)
	next := biztime.ToLocal(runs[JobNameRenewal])
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 30, next.Minute())
}

func TestSchedulerManager_RejectsInvalidJobs(t *testing.T) {
	m := newTestManager(t)

	assert.Error(t, m.RegisterRenewalJob(JobSchedule{Cron: "30 0 * * *"}, nil))
	assert.Error(t, m.RegisterReaperJob(JobSchedule{}, newCountingJob(nil)))
	assert.Error(t, m.RegisterNotificationJob(JobSchedule{Cron: "not a cron"}, newCountingJob(nil)))
}

func TestSchedulerManager_RunNow(t *testing.T) {
	m := newTestManager(t)
	job := newCountingJob(nil)
	failing := newCountingJob(errors.New("boom"))

	require.NoError(t, m.RegisterRenewalJob(JobSchedule{Cron: "30 0 * * *", Timeout: time.Minute}, job))
	require.NoError(t, m.RegisterReaperJob(JobSchedule{Cron: "0 2 * * *"}, failing))
	m.Start()

	require.NoError(t, m.RunNow(JobNameRenewal))
	waitFor(t, job.done)
	assert.Equal(t, int32(1), job.calls.Load())
	assert.True(t, job.deadline.Load())

	require.NoError(t, m.RunNow(JobNameReaper))
	waitFor(t, failing.done)
	assert.False(t, failing.deadline.Load())

	assert.Error(t, m.RunNow("unknown"))
}

func TestSchedulerManager_StopIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Stop())

	m.Start()
	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
}
