package dto

import (
	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/shared/mapper"
)

func ToProcessingFailureDTO(f *provisioning.ProcessingFailure) *ProcessingFailureDTO {
	if f == nil {
		return nil
	}
	return &ProcessingFailureDTO{
		ID:                f.ID(),
		ServiceInstanceID: f.ServiceInstanceID(),
		Username:          f.Username(),
		PlanID:            f.PlanID(),
		PlanName:          f.PlanName(),
		ErrorType:         f.ErrorType(),
		ErrorMessage:      f.ErrorMessage(),
		StackTrace:        f.StackTrace(),
		RetryCount:        f.RetryCount(),
		ProcessingStatus:  string(f.Status()),
		FailureDate:       f.FailureDate(),
		LastRetryDate:     f.LastRetryDate(),
		ResolvedDate:      f.ResolvedDate(),
		BatchID:           f.BatchID(),
		AdditionalInfo:    f.AdditionalInfo(),
	}
}

// ToProcessingFailureDTOList never returns nil so listings encode as [].
func ToProcessingFailureDTOList(failures []*provisioning.ProcessingFailure) []*ProcessingFailureDTO {
	if len(failures) == 0 {
		return []*ProcessingFailureDTO{}
	}
	return mapper.MapSlice(failures, ToProcessingFailureDTO)
}
