package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/mappers"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/db"
	"github.com/axonect/quotacycle/internal/shared/mapper"
)

type SubscriberRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) provisioning.SubscriberRepository {
	return &SubscriberRepositoryImpl{db: db}
}

func (r *SubscriberRepositoryImpl) GetByUserNames(ctx context.Context, userNames []string) ([]*provisioning.Subscriber, error) {
	if len(userNames) == 0 {
		return nil, nil
	}

	var modelList []*models.SubscriberModel
	if err := db.GetTxFromContext(ctx, r.db).Where("user_name IN ?", userNames).Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to get subscribers by user names: %w", err)
	}
	return mapper.MapSlice(modelList, mappers.SubscriberToEntity), nil
}
