// Package metrics exports batch job health as prometheus series.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	JobRenewal      = "renewal"
	JobReaper       = "reaper"
	JobNotification = "notification"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeDeleted   = "deleted"
	OutcomePublished = "published"
	OutcomeSkipped   = "skipped"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultTimeout = "timeout"
)

// JobMetrics records job runs, processed items and cache sync failures.
// A nil *JobMetrics is valid and records nothing.
type JobMetrics struct {
	runs            *prometheus.CounterVec
	items           *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	cacheSyncErrors *prometheus.CounterVec
}

// NewJobMetrics registers the collectors on registerer, falling back to the default registerer.
func NewJobMetrics(registerer prometheus.Registerer) *JobMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &JobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotacycle_job_runs_total",
			Help: "Batch job runs by job and result.",
		}, []string{"job", "result"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotacycle_job_items_total",
			Help: "Records handled by batch jobs by outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quotacycle_job_duration_seconds",
			Help:    "Batch job wall time.",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		}, []string{"job"}),
		cacheSyncErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotacycle_cache_sync_errors_total",
			Help: "Session cache operations that failed after retries.",
		}, []string{"operation"}),
	}

	registerer.MustRegister(m.runs, m.items, m.duration, m.cacheSyncErrors)
	return m
}

// ObserveRun records one finished run of job.
func (m *JobMetrics) ObserveRun(job string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(job, classifyResult(err)).Inc()
	m.duration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}

func (m *JobMetrics) AddItems(job, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.items.WithLabelValues(job, outcome).Add(float64(n))
}

func (m *JobMetrics) CacheSyncError(operation string) {
	if m == nil {
		return
	}
	m.cacheSyncErrors.WithLabelValues(operation).Inc()
}

func classifyResult(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ResultTimeout
	default:
		return ResultError
	}
}
