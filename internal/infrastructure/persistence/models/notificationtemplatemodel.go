package models

import (
	"time"

	"github.com/axonect/quotacycle/internal/shared/constants"
)

// NotificationTemplateModel is a child template row
type NotificationTemplateModel struct {
	ID              int64 `gorm:"primaryKey;autoIncrement"`
	SuperTemplateID int64
	MessageType     string `gorm:"size:32;index:idx_template_type"`
	MessageContent  string `gorm:"size:2000"`
	DaysToExpire    *int
	QuotaPercentage *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (NotificationTemplateModel) TableName() string {
	return constants.TableNotificationTemplates
}
