package mappers

import (
	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/mapper"
)

// ServiceInstanceMapper handles the conversion between domain entities and persistence models
type ServiceInstanceMapper interface {
	ToEntity(model *models.ServiceInstanceModel) (*provisioning.ServiceInstance, error)
	ToModel(entity *provisioning.ServiceInstance) *models.ServiceInstanceModel
	ToEntities(models []*models.ServiceInstanceModel) ([]*provisioning.ServiceInstance, error)
}

type serviceInstanceMapper struct{}

func NewServiceInstanceMapper() ServiceInstanceMapper {
	return &serviceInstanceMapper{}
}

func (m *serviceInstanceMapper) ToEntity(model *models.ServiceInstanceModel) (*provisioning.ServiceInstance, error) {
	if model == nil {
		return nil, nil
	}
	return provisioning.ReconstructServiceInstance(
		model.ID,
		model.PlanID,
		model.PlanName,
		model.PlanType,
		model.Username,
		model.RecurringFlag,
		model.ServiceCycleStartDate,
		model.ServiceCycleEndDate,
		model.NextCycleStartDate,
		model.ServiceStartDate,
		model.ExpiryDate,
		model.Status,
		model.IsGroup,
		model.RequestID,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (m *serviceInstanceMapper) ToModel(entity *provisioning.ServiceInstance) *models.ServiceInstanceModel {
	if entity == nil {
		return nil
	}
	return &models.ServiceInstanceModel{
		ID:                    entity.ID(),
		PlanID:                entity.PlanID(),
		PlanName:              entity.PlanName(),
		PlanType:              entity.PlanType(),
		RecurringFlag:         entity.RecurringFlag(),
		Username:              entity.Username(),
		ServiceCycleStartDate: utcPtr(entity.CycleStartDate()),
		ServiceCycleEndDate:   utcPtr(entity.CycleEndDate()),
		NextCycleStartDate:    utcPtr(entity.NextCycleStartDate()),
		ServiceStartDate:      utcPtr(entity.ServiceStartDate()),
		ExpiryDate:            utc(entity.ExpiryDate()),
		Status:                entity.Status(),
		IsGroup:               entity.IsGroup(),
		RequestID:             entity.RequestID(),
		CreatedAt:             utc(entity.CreatedAt()),
		UpdatedAt:             utc(entity.UpdatedAt()),
	}
}

func (m *serviceInstanceMapper) ToEntities(ms []*models.ServiceInstanceModel) ([]*provisioning.ServiceInstance, error) {
	return mapper.MapSliceWithError(ms, m.ToEntity)
}
