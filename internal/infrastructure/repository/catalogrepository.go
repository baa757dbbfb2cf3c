package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/mappers"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/db"
	"github.com/axonect/quotacycle/internal/shared/mapper"
)

type PlanRepositoryImpl struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) provisioning.PlanRepository {
	return &PlanRepositoryImpl{db: db}
}

func (r *PlanRepositoryImpl) GetByPlanIDs(ctx context.Context, planIDs []string) ([]*provisioning.Plan, error) {
	if len(planIDs) == 0 {
		return nil, nil
	}

	var modelList []*models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).Where("plan_id IN ?", planIDs).Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to get plans by plan IDs: %w", err)
	}
	return mapper.MapSlice(modelList, mappers.PlanToEntity), nil
}

type PlanToBucketRepositoryImpl struct {
	db *gorm.DB
}

func NewPlanToBucketRepository(db *gorm.DB) provisioning.PlanToBucketRepository {
	return &PlanToBucketRepositoryImpl{db: db}
}

// GetByPlanIDs returns templates ordered by id so allocation order is stable.
func (r *PlanToBucketRepositoryImpl) GetByPlanIDs(ctx context.Context, planIDs []string) ([]*provisioning.PlanToBucket, error) {
	if len(planIDs) == 0 {
		return nil, nil
	}

	var modelList []*models.PlanToBucketModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("plan_id IN ?", planIDs).
		Order("id ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get plan templates by plan IDs: %w", err)
	}
	return mapper.MapSlice(modelList, mappers.PlanToBucketToEntity), nil
}

type BucketRepositoryImpl struct {
	db *gorm.DB
}

func NewBucketRepository(db *gorm.DB) provisioning.BucketRepository {
	return &BucketRepositoryImpl{db: db}
}

func (r *BucketRepositoryImpl) GetByBucketIDs(ctx context.Context, bucketIDs []string) ([]*provisioning.Bucket, error) {
	if len(bucketIDs) == 0 {
		return nil, nil
	}

	var modelList []*models.BucketModel
	if err := db.GetTxFromContext(ctx, r.db).Where("bucket_id IN ?", bucketIDs).Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to get buckets by IDs: %w", err)
	}
	return mapper.MapSlice(modelList, mappers.BucketToEntity), nil
}

type QOSProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewQOSProfileRepository(db *gorm.DB) provisioning.QOSProfileRepository {
	return &QOSProfileRepositoryImpl{db: db}
}

func (r *QOSProfileRepositoryImpl) GetByIDs(ctx context.Context, ids []int64) ([]*provisioning.QOSProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var modelList []*models.QOSProfileModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to get QoS profiles by IDs: %w", err)
	}
	return mapper.MapSlice(modelList, mappers.QOSProfileToEntity), nil
}
