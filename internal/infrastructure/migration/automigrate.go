package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

const gormAutoMigrateName = "gorm_auto_migrate"

// GormAutoMigrateStrategy derives the schema from the persistence models.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{logger: log.Named("migration.automigrate")}
}

// Migrate migrates the given models, or every model when none are passed.
func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, targets ...any) error {
	if len(targets) == 0 {
		targets = models.All()
	}

	s.logger.Infow("running gorm auto migrate", "models_count", len(targets))

	if err := db.AutoMigrate(targets...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return gormAutoMigrateName
}
