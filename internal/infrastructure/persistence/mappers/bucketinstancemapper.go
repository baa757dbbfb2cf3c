package mappers

import (
	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/mapper"
)

// BucketInstanceMapper handles the conversion between domain entities and persistence models
type BucketInstanceMapper interface {
	ToEntity(model *models.BucketInstanceModel) *provisioning.BucketInstance
	ToModel(entity *provisioning.BucketInstance) *models.BucketInstanceModel
	ToEntities(models []*models.BucketInstanceModel) []*provisioning.BucketInstance
	ToModels(entities []*provisioning.BucketInstance) []*models.BucketInstanceModel
}

type bucketInstanceMapper struct{}

func NewBucketInstanceMapper() BucketInstanceMapper {
	return &bucketInstanceMapper{}
}

func (m *bucketInstanceMapper) ToEntity(model *models.BucketInstanceModel) *provisioning.BucketInstance {
	if model == nil {
		return nil
	}
	return provisioning.ReconstructBucketInstance(
		model.ID,
		model.BucketID,
		model.ServiceID,
		model.BucketType,
		model.Rule,
		model.Priority,
		model.InitialBalance,
		model.CurrentBalance,
		model.Usage,
		model.CarryForward,
		model.MaxCarryForward,
		model.TotalCarryForward,
		model.CarryForwardValidity,
		model.TimeWindow,
		model.ConsumptionLimit,
		model.ConsumptionLimitWindow,
		model.Expiration,
		model.UpdatedAt,
	)
}

func (m *bucketInstanceMapper) ToModel(entity *provisioning.BucketInstance) *models.BucketInstanceModel {
	if entity == nil {
		return nil
	}
	return &models.BucketInstanceModel{
		ID:                     entity.ID(),
		BucketID:               entity.BucketID(),
		ServiceID:              entity.ServiceID(),
		BucketType:             entity.BucketType(),
		Rule:                   entity.Rule(),
		Priority:               entity.Priority(),
		InitialBalance:         entity.InitialBalance(),
		CurrentBalance:         entity.CurrentBalance(),
		Usage:                  entity.Usage(),
		CarryForward:           entity.CarryForward(),
		MaxCarryForward:        entity.MaxCarryForward(),
		TotalCarryForward:      entity.TotalCarryForward(),
		CarryForwardValidity:   entity.CarryForwardValidity(),
		TimeWindow:             entity.TimeWindow(),
		ConsumptionLimit:       entity.ConsumptionLimit(),
		ConsumptionLimitWindow: entity.ConsumptionLimitWindow(),
		Expiration:             utc(entity.Expiration()),
		UpdatedAt:              utc(entity.UpdatedAt()),
	}
}

func (m *bucketInstanceMapper) ToEntities(ms []*models.BucketInstanceModel) []*provisioning.BucketInstance {
	return mapper.MapSlice(ms, m.ToEntity)
}

func (m *bucketInstanceMapper) ToModels(entities []*provisioning.BucketInstance) []*models.BucketInstanceModel {
	return mapper.MapSlice(entities, m.ToModel)
}
