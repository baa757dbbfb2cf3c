package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/shared/biztime"
	apperrors "github.com/axonect/quotacycle/internal/shared/errors"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

// FailureInput identifies the record that failed and why.
type FailureInput struct {
	Context provisioning.FailureContext
	Err     error
}

// NewFailureContext captures svc before any mutation so the audit row shows the cycle
// that was due.
func NewFailureContext(svc *provisioning.ServiceInstance, batchID string) provisioning.FailureContext {
	fc := provisioning.FailureContext{
		ServiceInstanceID: svc.ID(),
		Username:          svc.Username(),
		PlanID:            svc.PlanID(),
		PlanName:          svc.PlanName(),
		BatchID:           batchID,
	}
	if next := svc.NextCycleStartDate(); next != nil {
		t := *next
		fc.NextCycleStart = &t
	}
	return fc
}

// FailureRecorder writes audit rows in a transaction of their own, so a record's
// rollback never takes its failure row with it.
type FailureRecorder struct {
	txManager TransactionManager
	repo      provisioning.ProcessingFailureRepository
	logger    logger.Interface
}

func NewFailureRecorder(txManager TransactionManager, repo provisioning.ProcessingFailureRepository, logger logger.Interface) *FailureRecorder {
	return &FailureRecorder{txManager: txManager, repo: repo, logger: logger}
}

// Record persists one FAILED row. Errors are logged and swallowed.
func (r *FailureRecorder) Record(ctx context.Context, in FailureInput) {
	if in.Err == nil {
		return
	}

	failure := provisioning.NewProcessingFailure(
		in.Context,
		string(apperrors.TypeOf(in.Err)),
		in.Err.Error(),
		errorTrace(in.Err),
		biztime.Now(),
	)

	err := r.txManager.RunInNewTransaction(ctx, func(ctx context.Context) error {
		return r.repo.Create(ctx, failure)
	})
	if err != nil {
		r.logger.Errorw("failed to record processing failure",
			"service_id", in.Context.ServiceInstanceID,
			"username", in.Context.Username,
			"batch_id", in.Context.BatchID,
			"cause", in.Err,
			"error", err,
		)
		return
	}

	r.logger.Warnw("service renewal failed",
		"service_id", in.Context.ServiceInstanceID,
		"username", in.Context.Username,
		"plan_id", in.Context.PlanID,
		"batch_id", in.Context.BatchID,
		"error_type", failure.ErrorType(),
		"error", in.Err,
	)
}

// errorTrace renders the wrap chain of err, outermost first, one cause per line.
func errorTrace(err error) string {
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		fmt.Fprintf(&b, "%d: %T: %s\n", depth, err, err.Error())
		err = errors.Unwrap(err)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
