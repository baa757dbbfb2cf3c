package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/mappers"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/db"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

const createBatchSize = 100

type BucketInstanceRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.BucketInstanceMapper
	logger logger.Interface
}

func NewBucketInstanceRepository(db *gorm.DB, logger logger.Interface) provisioning.BucketInstanceRepository {
	return &BucketInstanceRepositoryImpl{
		db:     db,
		mapper: mappers.NewBucketInstanceMapper(),
		logger: logger,
	}
}

func (r *BucketInstanceRepositoryImpl) GetByServiceIDs(ctx context.Context, serviceIDs []int64) ([]*provisioning.BucketInstance, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}

	var modelList []*models.BucketInstanceModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("service_id IN ?", serviceIDs).
		Order("id ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket instances by service IDs: %w", err)
	}
	return r.mapper.ToEntities(modelList), nil
}

// SaveAll writes a record's buckets in at most two statements: trimmed rows are upserted on
// id with only their balance columns updated, new rows are inserted in batches.
func (r *BucketInstanceRepositoryImpl) SaveAll(ctx context.Context, buckets []*provisioning.BucketInstance) error {
	if len(buckets) == 0 {
		return nil
	}

	tx := db.GetTxFromContext(ctx, r.db)

	var created []*provisioning.BucketInstance
	var createdModels, trimmedModels []*models.BucketInstanceModel
	for _, b := range buckets {
		model := r.mapper.ToModel(b)
		if b.ID() != 0 {
			trimmedModels = append(trimmedModels, model)
			continue
		}
		created = append(created, b)
		createdModels = append(createdModels, model)
	}

	if len(trimmedModels) > 0 {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"current_balance", "updated_at"}),
		}).CreateInBatches(trimmedModels, createBatchSize).Error
		if err != nil {
			return fmt.Errorf("failed to update trimmed bucket instances: %w", err)
		}
	}

	if len(createdModels) > 0 {
		if err := tx.CreateInBatches(createdModels, createBatchSize).Error; err != nil {
			return fmt.Errorf("failed to create bucket instances: %w", err)
		}
		for i, m := range createdModels {
			if err := created[i].SetID(m.ID); err != nil {
				return fmt.Errorf("failed to set bucket instance ID: %w", err)
			}
		}
	}

	r.logger.Debugw("bucket instances saved", "created", len(createdModels), "updated", len(trimmedModels))
	return nil
}

func (r *BucketInstanceRepositoryImpl) FindIDsExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	var ids []int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.BucketInstanceModel{}).
		Where("expiration < ?", cutoff.UTC()).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired bucket instances: %w", err)
	}
	return ids, nil
}

func (r *BucketInstanceRepositoryImpl) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Delete(&models.BucketInstanceModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete bucket instances: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *BucketInstanceRepositoryImpl) FindExpiringBetween(ctx context.Context, from, to time.Time, afterID int64, limit int) ([]*provisioning.BucketInstance, error) {
	var modelList []*models.BucketInstanceModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("expiration >= ? AND expiration < ?", from.UTC(), to.UTC()).
		Scopes(db.KeysetAfter("id", afterID, limit)).
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring bucket instances: %w", err)
	}
	return r.mapper.ToEntities(modelList), nil
}
