package usecases

import (
	"context"
	"fmt"

	"github.com/axonect/quotacycle/internal/application/provisioning/dto"
	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/constants"
	apperrors "github.com/axonect/quotacycle/internal/shared/errors"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

const DefaultMaxRetries = 3

type ListFailuresUseCase struct {
	repo   provisioning.ProcessingFailureRepository
	logger logger.Interface
}

func NewListFailuresUseCase(repo provisioning.ProcessingFailureRepository, logger logger.Interface) *ListFailuresUseCase {
	return &ListFailuresUseCase{repo: repo, logger: logger}
}

func (uc *ListFailuresUseCase) Execute(ctx context.Context, req dto.ListFailuresRequest) (*dto.ListFailuresResponse, error) {
	status := provisioning.ProcessingStatus(req.Status)
	if status != "" && !status.IsValid() {
		return nil, apperrors.NewValidationError("invalid processing status", req.Status)
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, apperrors.NewValidationError("to must not be before from")
	}

	page := req.Page
	if page < 1 {
		page = constants.DefaultPage
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	failures, total, err := uc.repo.List(ctx, provisioning.FailureFilter{
		Username:          req.Username,
		Status:            status,
		BatchID:           req.BatchID,
		ServiceInstanceID: req.ServiceInstanceID,
		From:              req.From,
		To:                req.To,
		Page:              page,
		PageSize:          pageSize,
	})
	if err != nil {
		uc.logger.Errorw("failed to list processing failures", "error", err)
		return nil, apperrors.NewInternalError("failed to list processing failures")
	}

	return &dto.ListFailuresResponse{
		Failures: dto.ToProcessingFailureDTOList(failures),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ListRetryableFailuresUseCase lists FAILED and PENDING_RETRY rows below the retry limit.
type ListRetryableFailuresUseCase struct {
	repo   provisioning.ProcessingFailureRepository
	logger logger.Interface
}

func NewListRetryableFailuresUseCase(repo provisioning.ProcessingFailureRepository, logger logger.Interface) *ListRetryableFailuresUseCase {
	return &ListRetryableFailuresUseCase{repo: repo, logger: logger}
}

func (uc *ListRetryableFailuresUseCase) Execute(ctx context.Context, maxRetries int) ([]*dto.ProcessingFailureDTO, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	failures, err := uc.repo.FindRetryable(ctx, maxRetries)
	if err != nil {
		uc.logger.Errorw("failed to list retryable failures", "max_retries", maxRetries, "error", err)
		return nil, apperrors.NewInternalError("failed to list retryable failures")
	}
	return dto.ToProcessingFailureDTOList(failures), nil
}

type UpdateFailureStatusUseCase struct {
	txManager TransactionManager
	repo      provisioning.ProcessingFailureRepository
	logger    logger.Interface
}

func NewUpdateFailureStatusUseCase(txManager TransactionManager, repo provisioning.ProcessingFailureRepository, logger logger.Interface) *UpdateFailureStatusUseCase {
	return &UpdateFailureStatusUseCase{txManager: txManager, repo: repo, logger: logger}
}

// Execute moves one audit row to the requested status and returns the updated row.
func (uc *UpdateFailureStatusUseCase) Execute(ctx context.Context, id int64, req dto.UpdateFailureStatusRequest) (*dto.ProcessingFailureDTO, error) {
	status := provisioning.ProcessingStatus(req.Status)
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("invalid processing status", req.Status)
	}

	var updated *provisioning.ProcessingFailure
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		failure, err := uc.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get processing failure: %w", err)
		}
		if failure == nil {
			return apperrors.NewNotFoundError("processing failure not found", fmt.Sprintf("%d", id))
		}
		if err := failure.Transition(status, biztime.Now()); err != nil {
			return apperrors.NewConflictError(err.Error())
		}
		if err := uc.repo.Update(ctx, failure); err != nil {
			return fmt.Errorf("failed to update processing failure: %w", err)
		}
		updated = failure
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to update processing failure status", "id", id, "status", status, "error", err)
		return nil, apperrors.NewInternalError("failed to update processing failure")
	}

	uc.logger.Infow("processing failure status updated",
		"id", id,
		"status", updated.Status(),
		"retry_count", updated.RetryCount(),
	)
	return dto.ToProcessingFailureDTO(updated), nil
}
