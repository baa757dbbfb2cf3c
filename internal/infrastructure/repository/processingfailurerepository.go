package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/mappers"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/constants"
	"github.com/axonect/quotacycle/internal/shared/db"
	"github.com/axonect/quotacycle/internal/shared/errors"
)

type ProcessingFailureRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ProcessingFailureMapper
}

func NewProcessingFailureRepository(db *gorm.DB) provisioning.ProcessingFailureRepository {
	return &ProcessingFailureRepositoryImpl{
		db:     db,
		mapper: mappers.NewProcessingFailureMapper(),
	}
}

func (r *ProcessingFailureRepositoryImpl) Create(ctx context.Context, failure *provisioning.ProcessingFailure) error {
	model, err := r.mapper.ToModel(failure)
	if err != nil {
		return fmt.Errorf("failed to map processing failure entity to model: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create processing failure: %w", err)
	}

	failure.SetID(model.ID)
	return nil
}

func (r *ProcessingFailureRepositoryImpl) GetByID(ctx context.Context, id int64) (*provisioning.ProcessingFailure, error) {
	var model models.ProcessingFailureModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get processing failure by ID: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		return nil, fmt.Errorf("failed to map processing failure model to entity: %w", err)
	}
	return entity, nil
}

func (r *ProcessingFailureRepositoryImpl) Update(ctx context.Context, failure *provisioning.ProcessingFailure) error {
	model, err := r.mapper.ToModel(failure)
	if err != nil {
		return fmt.Errorf("failed to map processing failure entity to model: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(model).Select("*").Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update processing failure: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("processing failure not found")
	}
	return nil
}

func (r *ProcessingFailureRepositoryImpl) List(ctx context.Context, filter provisioning.FailureFilter) ([]*provisioning.ProcessingFailure, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ProcessingFailureModel{})

	if filter.Username != "" {
		query = query.Where("username = ?", filter.Username)
	}
	if filter.Status != "" {
		query = query.Where("processing_status = ?", string(filter.Status))
	}
	if filter.BatchID != "" {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if filter.ServiceInstanceID != 0 {
		query = query.Where("service_instance_id = ?", filter.ServiceInstanceID)
	}
	if filter.From != nil {
		query = query.Where("failure_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("failure_date < ?", filter.To.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count processing failures: %w", err)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	var modelList []*models.ProcessingFailureModel
	err := query.
		Order("failure_date DESC").
		Order("id DESC").
		Scopes(db.Paginate(filter.Page, pageSize)).
		Find(&modelList).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list processing failures: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to map processing failure models to entities: %w", err)
	}
	return entities, total, nil
}

func (r *ProcessingFailureRepositoryImpl) FindRetryable(ctx context.Context, maxRetries int) ([]*provisioning.ProcessingFailure, error) {
	var modelList []*models.ProcessingFailureModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("processing_status IN ?", []string{
			string(provisioning.StatusFailed),
			string(provisioning.StatusPendingRetry),
		}).
		Where("retry_count < ?", maxRetries).
		Order("failure_date ASC").
		Order("id ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find retryable processing failures: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, fmt.Errorf("failed to map processing failure models to entities: %w", err)
	}
	return entities, nil
}
