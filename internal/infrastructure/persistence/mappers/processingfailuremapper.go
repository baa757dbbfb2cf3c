package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/mapper"
)

// ProcessingFailureMapper handles the conversion between domain entities and persistence models
type ProcessingFailureMapper interface {
	ToEntity(model *models.ProcessingFailureModel) (*provisioning.ProcessingFailure, error)
	ToModel(entity *provisioning.ProcessingFailure) (*models.ProcessingFailureModel, error)
	ToEntities(models []*models.ProcessingFailureModel) ([]*provisioning.ProcessingFailure, error)
}

type processingFailureMapper struct{}

func NewProcessingFailureMapper() ProcessingFailureMapper {
	return &processingFailureMapper{}
}

func (m *processingFailureMapper) ToEntity(model *models.ProcessingFailureModel) (*provisioning.ProcessingFailure, error) {
	if model == nil {
		return nil, nil
	}

	var info map[string]any
	if len(model.AdditionalInfo) > 0 {
		if err := json.Unmarshal(model.AdditionalInfo, &info); err != nil {
			return nil, fmt.Errorf("failed to unmarshal additional info: %w", err)
		}
	}

	return provisioning.ReconstructProcessingFailure(
		model.ID,
		model.ServiceInstanceID,
		model.Username,
		model.PlanID,
		model.PlanName,
		model.ErrorType,
		model.ErrorMessage,
		model.StackTrace,
		model.RetryCount,
		provisioning.ProcessingStatus(model.ProcessingStatus),
		model.FailureDate,
		model.LastRetryDate,
		model.ResolvedDate,
		model.BatchID,
		info,
	)
}

func (m *processingFailureMapper) ToModel(entity *provisioning.ProcessingFailure) (*models.ProcessingFailureModel, error) {
	if entity == nil {
		return nil, nil
	}

	var info datatypes.JSON
	if len(entity.AdditionalInfo()) > 0 {
		raw, err := json.Marshal(entity.AdditionalInfo())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal additional info: %w", err)
		}
		info = raw
	}

	return &models.ProcessingFailureModel{
		ID:                entity.ID(),
		ServiceInstanceID: entity.ServiceInstanceID(),
		Username:          entity.Username(),
		PlanID:            entity.PlanID(),
		PlanName:          entity.PlanName(),
		ErrorType:         entity.ErrorType(),
		ErrorMessage:      entity.ErrorMessage(),
		StackTrace:        entity.StackTrace(),
		RetryCount:        entity.RetryCount(),
		ProcessingStatus:  string(entity.Status()),
		FailureDate:       utc(entity.FailureDate()),
		LastRetryDate:     utcPtr(entity.LastRetryDate()),
		ResolvedDate:      utcPtr(entity.ResolvedDate()),
		BatchID:           entity.BatchID(),
		AdditionalInfo:    info,
	}, nil
}

func (m *processingFailureMapper) ToEntities(ms []*models.ProcessingFailureModel) ([]*provisioning.ProcessingFailure, error) {
	return mapper.MapSliceWithError(ms, m.ToEntity)
}
