package models

import (
	"time"

	"github.com/axonect/quotacycle/internal/shared/constants"
)

// ServiceInstanceModel represents the database persistence model for service instances
type ServiceInstanceModel struct {
	ID                    int64  `gorm:"primaryKey;autoIncrement"`
	PlanID                string `gorm:"size:64;not null;index:idx_service_plan"`
	PlanName              string `gorm:"size:255"`
	PlanType              string `gorm:"size:64"`
	RecurringFlag         bool   `gorm:"not null;default:false;index:idx_service_renewal,priority:1"`
	Username              string `gorm:"size:128;not null;index:idx_service_username"`
	ServiceCycleStartDate *time.Time
	ServiceCycleEndDate   *time.Time
	NextCycleStartDate    *time.Time `gorm:"index:idx_service_renewal,priority:2"`
	ServiceStartDate      *time.Time
	ExpiryDate            time.Time `gorm:"not null"`
	Status                string    `gorm:"size:32"`
	IsGroup               bool      `gorm:"not null;default:false"`
	RequestID             string    `gorm:"size:64"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TableName specifies the table name for GORM
func (ServiceInstanceModel) TableName() string {
	return constants.TableServiceInstances
}
