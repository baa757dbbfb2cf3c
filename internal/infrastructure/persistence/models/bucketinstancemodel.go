package models

import (
	"time"

	"github.com/axonect/quotacycle/internal/shared/constants"
)

// BucketInstanceModel represents the database persistence model for bucket instances
type BucketInstanceModel struct {
	ID                     int64  `gorm:"primaryKey;autoIncrement"`
	BucketID               string `gorm:"size:64;not null"`
	ServiceID              int64  `gorm:"not null;index:idx_bucket_instance_service"`
	BucketType             string `gorm:"size:64"`
	Rule                   string `gorm:"size:64"`
	Priority               int64
	InitialBalance         int64
	CurrentBalance         int64
	Usage                  int64
	CarryForward           bool
	MaxCarryForward        int64
	TotalCarryForward      int64
	CarryForwardValidity   int
	TimeWindow             string `gorm:"size:64"`
	ConsumptionLimit       int64
	ConsumptionLimitWindow string    `gorm:"size:32"`
	Expiration             time.Time `gorm:"not null;index:idx_bucket_instance_expiration"`
	UpdatedAt              time.Time
}

// TableName specifies the table name for GORM
func (BucketInstanceModel) TableName() string {
	return constants.TableBucketInstances
}
