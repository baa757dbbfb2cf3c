package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/axonect/quotacycle/internal/application/provisioning/dto"
	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/metrics"
	"github.com/axonect/quotacycle/internal/shared/biztime"
	apperrors "github.com/axonect/quotacycle/internal/shared/errors"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

const DefaultRenewalPageSize = 500

// RenewRecurringServicesUseCase renews every recurring service instance whose next cycle
// starts tomorrow. Pages are processed strictly one after another and each record commits
// on its own; a failing record is audited and skipped, never retried.
type RenewRecurringServicesUseCase struct {
	serviceRepo provisioning.ServiceInstanceRepository
	loader      *BatchLoader
	provisioner *CycleProvisioner
	failures    *FailureRecorder
	recorder    JobRecorder
	pageSize    int
	logger      logger.Interface
}

func NewRenewRecurringServicesUseCase(
	serviceRepo provisioning.ServiceInstanceRepository,
	loader *BatchLoader,
	provisioner *CycleProvisioner,
	failures *FailureRecorder,
	recorder JobRecorder,
	pageSize int,
	logger logger.Interface,
) *RenewRecurringServicesUseCase {
	if pageSize <= 0 {
		pageSize = DefaultRenewalPageSize
	}
	return &RenewRecurringServicesUseCase{
		serviceRepo: serviceRepo,
		loader:      loader,
		provisioner: provisioner,
		failures:    failures,
		recorder:    recorderOrNoop(recorder),
		pageSize:    pageSize,
		logger:      logger,
	}
}

// Execute runs the renewal and returns the number of renewed service instances.
func (uc *RenewRecurringServicesUseCase) Execute(ctx context.Context) (int, error) {
	result, err := uc.Run(ctx)
	if result == nil {
		return 0, err
	}
	return result.Succeeded, err
}

// Run renews the services due tomorrow. The partial result is returned alongside any error
// that stopped the run.
func (uc *RenewRecurringServicesUseCase) Run(ctx context.Context) (result *dto.RenewalRunResult, err error) {
	started := time.Now()
	start, end := biztime.TomorrowWindow(biztime.Now())
	result = &dto.RenewalRunResult{
		BatchID:     uuid.NewString(),
		WindowStart: start,
		WindowEnd:   end,
	}

	defer func() {
		result.Duration = time.Since(started)
		uc.recorder.ObserveRun(metrics.JobRenewal, started, err)
		uc.recorder.AddItems(metrics.JobRenewal, metrics.OutcomeSucceeded, result.Succeeded)
		uc.recorder.AddItems(metrics.JobRenewal, metrics.OutcomeFailed, result.Failed)
		uc.logger.Infow("recurring renewal finished",
			"batch_id", result.BatchID,
			"pages", result.Pages,
			"processed", result.Processed,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
			"duration", result.Duration,
			"error", err,
		)
	}()

	uc.logger.Infow("recurring renewal started",
		"batch_id", result.BatchID,
		"window_start", start,
		"window_end", end,
		"page_size", uc.pageSize,
	)

	window := provisioning.RenewalWindow{Start: start.UTC(), End: end.UTC()}
	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		page, err := uc.serviceRepo.FindDueForRenewal(ctx, window, afterID, uc.pageSize)
		if err != nil {
			return result, fmt.Errorf("failed to fetch due services after id %d: %w", afterID, err)
		}
		if len(page) == 0 {
			break
		}
		afterID = page[len(page)-1].ID()
		result.Pages++

		if err := uc.processPage(ctx, result, page); err != nil {
			return result, err
		}

		uc.logger.Infow("renewal page processed",
			"batch_id", result.BatchID,
			"page", result.Pages,
			"page_records", len(page),
			"succeeded", result.Succeeded,
			"failed", result.Failed,
		)

		if len(page) < uc.pageSize {
			break
		}
	}
	return result, nil
}

func (uc *RenewRecurringServicesUseCase) processPage(ctx context.Context, result *dto.RenewalRunResult, page []*provisioning.ServiceInstance) error {
	idx, err := uc.loader.Load(ctx, page)
	if err != nil {
		return fmt.Errorf("failed to load page index: %w", err)
	}

	for _, svc := range page {
		if err := ctx.Err(); err != nil {
			return err
		}
		fc := NewFailureContext(svc, result.BatchID)

		var recErr error
		switch {
		case idx.Subscribers[svc.Username()] == nil:
			recErr = apperrors.NewNotFoundError("user not found", svc.Username())
		case idx.Plans[svc.PlanID()] == nil:
			recErr = apperrors.NewNotFoundError("plan not found", svc.PlanID())
		default:
			_, recErr = uc.provisioner.Provision(ctx, svc, idx)
		}

		if recErr != nil {
			// a record interrupted by the run deadline is left for the next run, not audited
			if err := ctx.Err(); err != nil {
				return err
			}
			result.Processed++
			result.Failed++
			uc.failures.Record(ctx, FailureInput{Context: fc, Err: recErr})
			continue
		}
		result.Processed++
		result.Succeeded++
	}
	return nil
}
