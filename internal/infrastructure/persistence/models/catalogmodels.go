package models

import (
	"time"

	"github.com/axonect/quotacycle/internal/shared/constants"
)

// PlanModel represents the database persistence model for plans
type PlanModel struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	PlanID          string `gorm:"size:64;not null;uniqueIndex"`
	PlanName        string `gorm:"size:255"`
	PlanType        string `gorm:"size:64"`
	RecurringFlag   bool   `gorm:"not null;default:false"`
	RecurringPeriod string `gorm:"size:32"`
	Status          string `gorm:"size:32"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PlanModel) TableName() string {
	return constants.TablePlans
}

// PlanToBucketModel is one quota template row of a plan
type PlanToBucketModel struct {
	ID                     int64  `gorm:"primaryKey;autoIncrement"`
	PlanID                 string `gorm:"size:64;not null;index:idx_plan_to_bucket_plan"`
	BucketID               string `gorm:"size:64;not null"`
	InitialQuota           int64  `gorm:"not null;default:0"`
	CarryForward           bool   `gorm:"not null;default:false"`
	MaxCarryForward        int64  `gorm:"not null;default:0"`
	TotalCarryForward      int64  `gorm:"not null;default:0"`
	CarryForwardValidity   int    `gorm:"not null;default:0"`
	ConsumptionLimit       int64  `gorm:"not null;default:0"`
	ConsumptionLimitWindow string `gorm:"size:32"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (PlanToBucketModel) TableName() string {
	return constants.TablePlanToBuckets
}

// BucketModel is the catalog definition of a bucket
type BucketModel struct {
	BucketID   string `gorm:"primaryKey;size:64"`
	BucketName string `gorm:"size:255"`
	BucketType string `gorm:"size:64"`
	QOSID      int64  `gorm:"column:qos_id"`
	Priority   int64
	TimeWindow string `gorm:"size:64"`
}

func (BucketModel) TableName() string {
	return constants.TableBuckets
}

// QOSProfileModel carries BNG rule codes
type QOSProfileModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	BNGCode        string `gorm:"column:bng_code;size:64"`
	QOSProfileName string `gorm:"column:qos_profile_name;size:255"`
	UpLink         string `gorm:"size:32"`
	DownLink       string `gorm:"size:32"`
	IsDefault      bool   `gorm:"not null;default:false"`
}

func (QOSProfileModel) TableName() string {
	return constants.TableQOSProfiles
}

// SubscriberModel is the read side of the AAA user table
type SubscriberModel struct {
	UserID         string `gorm:"primaryKey;size:64"`
	UserName       string `gorm:"size:128;not null;uniqueIndex"`
	GroupID        string `gorm:"size:64"`
	Billing        string `gorm:"size:8"`
	Concurrency    int
	SessionTimeout string `gorm:"size:32"`
	Status         string `gorm:"size:32"`
	CreatedDate    time.Time
	UpdatedDate    time.Time
}

func (SubscriberModel) TableName() string {
	return constants.TableSubscribers
}
