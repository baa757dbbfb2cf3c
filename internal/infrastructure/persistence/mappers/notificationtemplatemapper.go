package mappers

import (
	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
)

func NotificationTemplateToEntity(m *models.NotificationTemplateModel) (*notification.NotificationTemplate, error) {
	return notification.ReconstructNotificationTemplate(
		m.ID,
		m.SuperTemplateID,
		notification.MessageType(m.MessageType),
		m.MessageContent,
		m.DaysToExpire,
		m.QuotaPercentage,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
