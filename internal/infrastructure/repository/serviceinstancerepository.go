package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/mappers"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/db"
	"github.com/axonect/quotacycle/internal/shared/errors"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

// cycleColumns are the columns a cycle advance rewrites.
var cycleColumns = []string{
	"service_cycle_start_date",
	"service_cycle_end_date",
	"next_cycle_start_date",
	"service_start_date",
	"updated_at",
}

type ServiceInstanceRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ServiceInstanceMapper
	logger logger.Interface
}

func NewServiceInstanceRepository(db *gorm.DB, logger logger.Interface) provisioning.ServiceInstanceRepository {
	return &ServiceInstanceRepositoryImpl{
		db:     db,
		mapper: mappers.NewServiceInstanceMapper(),
		logger: logger,
	}
}

func (r *ServiceInstanceRepositoryImpl) FindDueForRenewal(ctx context.Context, window provisioning.RenewalWindow, afterID int64, limit int) ([]*provisioning.ServiceInstance, error) {
	var modelList []*models.ServiceInstanceModel

	start := window.Start.UTC()
	err := db.GetTxFromContext(ctx, r.db).
		Where("recurring_flag = ?", true).
		Where("next_cycle_start_date >= ? AND next_cycle_start_date < ?", start, window.End.UTC()).
		Where("expiry_date > ?", start).
		Scopes(db.KeysetAfter("id", afterID, limit)).
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to query services due for renewal", "error", err, "after_id", afterID)
		return nil, fmt.Errorf("failed to find services due for renewal: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, fmt.Errorf("failed to map service instance models to entities: %w", err)
	}
	return entities, nil
}

func (r *ServiceInstanceRepositoryImpl) GetByIDs(ctx context.Context, ids []int64) ([]*provisioning.ServiceInstance, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var modelList []*models.ServiceInstanceModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to get service instances by IDs: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, fmt.Errorf("failed to map service instance models to entities: %w", err)
	}
	return entities, nil
}

// Update writes back the cycle dates; the rest of the row belongs to the subscription service.
func (r *ServiceInstanceRepositoryImpl) Update(ctx context.Context, svc *provisioning.ServiceInstance) error {
	model := r.mapper.ToModel(svc)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ServiceInstanceModel{ID: model.ID}).
		Select(cycleColumns).
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update service instance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("service instance not found", fmt.Sprintf("id=%d", svc.ID()))
	}
	return nil
}
