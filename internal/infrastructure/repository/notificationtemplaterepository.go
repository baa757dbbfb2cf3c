package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/mappers"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/db"
	"github.com/axonect/quotacycle/internal/shared/mapper"
)

type NotificationTemplateRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationTemplateRepository(db *gorm.DB) notification.NotificationTemplateRepository {
	return &NotificationTemplateRepositoryImpl{db: db}
}

func (r *NotificationTemplateRepositoryImpl) ListByMessageType(ctx context.Context, messageType notification.MessageType) ([]*notification.NotificationTemplate, error) {
	var modelList []*models.NotificationTemplateModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("message_type = ?", string(messageType)).
		Order("days_to_expire ASC").
		Order("id ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notification templates by type: %w", err)
	}

	entities, err := mapper.MapSliceWithError(modelList, mappers.NotificationTemplateToEntity)
	if err != nil {
		return nil, fmt.Errorf("failed to map notification template models to entities: %w", err)
	}
	return entities, nil
}
