package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/axonect/quotacycle/internal/shared/constants"
)

// ProcessingFailureModel is the audit row of a record that failed renewal
type ProcessingFailureModel struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"`
	ServiceInstanceID int64     `gorm:"index:idx_failure_service"`
	Username          string    `gorm:"size:128;index:idx_failure_username"`
	PlanID            string    `gorm:"size:64"`
	PlanName          string    `gorm:"size:255"`
	ErrorType         string    `gorm:"size:64"`
	ErrorMessage      string    `gorm:"size:4000"`
	StackTrace        string    `gorm:"size:4000"`
	RetryCount        int       `gorm:"not null;default:0"`
	ProcessingStatus  string    `gorm:"size:32;not null;index:idx_failure_status"`
	FailureDate       time.Time `gorm:"index:idx_failure_date"`
	LastRetryDate     *time.Time
	ResolvedDate      *time.Time
	BatchID           string `gorm:"size:64;index:idx_failure_batch"`
	AdditionalInfo    datatypes.JSON
}

func (ProcessingFailureModel) TableName() string {
	return constants.TableProcessingFailures
}
