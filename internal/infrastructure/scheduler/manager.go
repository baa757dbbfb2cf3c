// Package scheduler runs the batch jobs on cron schedules using gocron v2.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/goroutine"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

const (
	JobNameRenewal      = "recurring-renewal"
	JobNameReaper       = "expired-bucket-reaper"
	JobNameNotification = "expiry-notification"
)

// JobSchedule is the cron line and whole-run timeout of one job.
type JobSchedule struct {
	Cron    string
	Timeout time.Duration
}

// SchedulerManager owns the single gocron scheduler of the process. Cron expressions are
// evaluated in the business timezone.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterRenewalJob schedules the recurring cycle renewal (00:30 by default).
func (m *SchedulerManager) RegisterRenewalJob(schedule JobSchedule, job BatchJob) error {
	return m.registerBatchJob(JobNameRenewal, schedule, job, "renewal", "provisioning")
}

// RegisterReaperJob schedules the expired bucket cleanup (02:00 by default).
func (m *SchedulerManager) RegisterReaperJob(schedule JobSchedule, job BatchJob) error {
	return m.registerBatchJob(JobNameReaper, schedule, job, "reaper", "cleanup")
}

// RegisterNotificationJob schedules the bucket expiry notifications (09:00 by default).
func (m *SchedulerManager) RegisterNotificationJob(schedule JobSchedule, job BatchJob) error {
	return m.registerBatchJob(JobNameNotification, schedule, job, "notification", "expiry")
}

func (m *SchedulerManager) registerBatchJob(name string, schedule JobSchedule, job BatchJob, tags ...string) error {
	if job == nil {
		return errors.New("batch job is nil")
	}
	if schedule.Cron == "" {
		return fmt.Errorf("job %s has no cron expression", name)
	}

	_, err := m.scheduler.NewJob(
		gocron.CronJob(schedule.Cron, false),
		gocron.NewTask(func() {
			ctx := context.Background()
			if schedule.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, schedule.Timeout)
				defer cancel()
			}
			m.runBatchJob(ctx, name, job)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags(tags...),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}

	m.logger.Infow("registered batch job",
		"job", name,
		"cron", schedule.Cron,
		"timeout", schedule.Timeout,
		"timezone", biztime.Location().String(),
	)
	return nil
}

func (m *SchedulerManager) runBatchJob(ctx context.Context, name string, job BatchJob) {
	defer goroutine.Recover(m.logger, name)
	m.logger.Infow("batch job started", "job", name)

	startTime := time.Now()
	count, err := job.Execute(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			m.logger.Errorw("batch job timed out",
				"job", name,
				"processed", count,
				"duration", time.Since(startTime),
			)
			return
		}
		m.logger.Errorw("batch job failed",
			"job", name,
			"processed", count,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("batch job completed",
		"job", name,
		"processed", count,
		"duration", time.Since(startTime),
	)
}

// RunNow triggers the named job outside its schedule; singleton mode still applies.
func (m *SchedulerManager) RunNow(name string) error {
	for _, j := range m.scheduler.Jobs() {
		if j.Name() == name {
			return j.RunNow()
		}
	}
	return fmt.Errorf("job %s is not registered", name)
}

// NextRuns returns the next scheduled run of every job, keyed by job name.
func (m *SchedulerManager) NextRuns() map[string]time.Time {
	runs := make(map[string]time.Time)
	for _, j := range m.scheduler.Jobs() {
		next, err := j.NextRun()
		if err != nil {
			continue
		}
		runs[j.Name()] = next
	}
	return runs
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
