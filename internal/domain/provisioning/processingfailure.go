package provisioning

import (
	"fmt"
	"time"

	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/utils/logutil"
)

// ProcessingStatus tracks an audit row through manual follow-up.
type ProcessingStatus string

const (
	StatusFailed       ProcessingStatus = "FAILED"
	StatusPendingRetry ProcessingStatus = "PENDING_RETRY"
	StatusResolved     ProcessingStatus = "RESOLVED"
)

const (
	MaxErrorMessageLength = 4000
	MaxStackTraceLength   = 4000
)

func (s ProcessingStatus) IsValid() bool {
	switch s {
	case StatusFailed, StatusPendingRetry, StatusResolved:
		return true
	}
	return false
}

// FailureContext describes the record that failed within a batch.
type FailureContext struct {
	ServiceInstanceID int64
	Username          string
	PlanID            string
	PlanName          string
	BatchID           string
	NextCycleStart    *time.Time
}

// ProcessingFailure is the durable audit row written when a record cannot be renewed.
type ProcessingFailure struct {
	id                int64
	serviceInstanceID int64
	username          string
	planID            string
	planName          string
	errorType         string
	errorMessage      string
	stackTrace        string
	retryCount        int
	status            ProcessingStatus
	failureDate       time.Time
	lastRetryDate     *time.Time
	resolvedDate      *time.Time
	batchID           string
	additionalInfo    map[string]any
}

// NewProcessingFailure builds a FAILED row, fitting message and trace into their columns.
func NewProcessingFailure(fc FailureContext, errorType, message, stackTrace string, at time.Time) *ProcessingFailure {
	info := map[string]any{"service_id": fc.ServiceInstanceID}
	if fc.NextCycleStart != nil {
		info["next_cycle_start"] = biztime.ToLocal(*fc.NextCycleStart).Format(time.DateTime)
	}

	return &ProcessingFailure{
		serviceInstanceID: fc.ServiceInstanceID,
		username:          fc.Username,
		planID:            fc.PlanID,
		planName:          fc.PlanName,
		errorType:         errorType,
		errorMessage:      logutil.TruncateToColumn(message, MaxErrorMessageLength),
		stackTrace:        logutil.TruncateToColumn(stackTrace, MaxStackTraceLength),
		status:            StatusFailed,
		failureDate:       at,
		batchID:           fc.BatchID,
		additionalInfo:    info,
	}
}

// ReconstructProcessingFailure reconstructs a processing failure from persistence
func ReconstructProcessingFailure(
	id, serviceInstanceID int64,
	username, planID, planName, errorType, errorMessage, stackTrace string,
	retryCount int,
	status ProcessingStatus,
	failureDate time.Time,
	lastRetryDate, resolvedDate *time.Time,
	batchID string,
	additionalInfo map[string]any,
) (*ProcessingFailure, error) {
	if id == 0 {
		return nil, fmt.Errorf("processing failure ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFailureStatus, status)
	}
	if additionalInfo == nil {
		additionalInfo = map[string]any{}
	}
	return &ProcessingFailure{
		id:                id,
		serviceInstanceID: serviceInstanceID,
		username:          username,
		planID:            planID,
		planName:          planName,
		errorType:         errorType,
		errorMessage:      errorMessage,
		stackTrace:        stackTrace,
		retryCount:        retryCount,
		status:            status,
		failureDate:       failureDate,
		lastRetryDate:     lastRetryDate,
		resolvedDate:      resolvedDate,
		batchID:           batchID,
		additionalInfo:    additionalInfo,
	}, nil
}

func (f *ProcessingFailure) ID() int64                      { return f.id }
func (f *ProcessingFailure) ServiceInstanceID() int64       { return f.serviceInstanceID }
func (f *ProcessingFailure) Username() string               { return f.username }
func (f *ProcessingFailure) PlanID() string                 { return f.planID }
func (f *ProcessingFailure) PlanName() string               { return f.planName }
func (f *ProcessingFailure) ErrorType() string              { return f.errorType }
func (f *ProcessingFailure) ErrorMessage() string           { return f.errorMessage }
func (f *ProcessingFailure) StackTrace() string             { return f.stackTrace }
func (f *ProcessingFailure) RetryCount() int                { return f.retryCount }
func (f *ProcessingFailure) Status() ProcessingStatus       { return f.status }
func (f *ProcessingFailure) FailureDate() time.Time         { return f.failureDate }
func (f *ProcessingFailure) LastRetryDate() *time.Time      { return f.lastRetryDate }
func (f *ProcessingFailure) ResolvedDate() *time.Time       { return f.resolvedDate }
func (f *ProcessingFailure) BatchID() string                { return f.batchID }
func (f *ProcessingFailure) AdditionalInfo() map[string]any { return f.additionalInfo }

func (f *ProcessingFailure) SetID(id int64) {
	f.id = id
}

// MarkPendingRetry queues the row for another attempt and counts the retry.
func (f *ProcessingFailure) MarkPendingRetry(at time.Time) error {
	if f.status == StatusResolved {
		return fmt.Errorf("%w: resolved failures cannot be retried", ErrInvalidFailureStatus)
	}
	f.status = StatusPendingRetry
	f.retryCount++
	f.lastRetryDate = &at
	return nil
}

// MarkResolved closes the row.
func (f *ProcessingFailure) MarkResolved(at time.Time) {
	f.status = StatusResolved
	f.resolvedDate = &at
}

// Transition applies a requested status change.
func (f *ProcessingFailure) Transition(to ProcessingStatus, at time.Time) error {
	switch to {
	case StatusPendingRetry:
		return f.MarkPendingRetry(at)
	case StatusResolved:
		f.MarkResolved(at)
		return nil
	case StatusFailed:
		f.status = StatusFailed
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidFailureStatus, to)
	}
}
