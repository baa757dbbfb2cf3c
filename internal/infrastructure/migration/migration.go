package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/axonect/quotacycle/internal/shared/constants"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks a strategy for the environment: development and sqlite databases use
// gorm AutoMigrate, everything else runs the versioned goose scripts.
func NewManager(environment, driver string, log logger.Interface) *Manager {
	var strategy Strategy

	switch {
	case strings.EqualFold(environment, constants.EnvDevelopment), driver == "sqlite":
		strategy = NewGormAutoMigrateStrategy(log)
	default:
		strategy = NewGooseStrategy(driver, log)
	}

	return NewManagerWithStrategy(strategy, log)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.Named("migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB, models ...any) error {
	m.logger.Infow("starting database migration",
		"strategy", m.strategy.GetName(),
		"models_count", len(models))

	if err := m.strategy.Migrate(db, models...); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully",
		"strategy", m.strategy.GetName())

	return nil
}

func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

func (m *Manager) SetStrategy(strategy Strategy) {
	m.logger.Infow("changing migration strategy",
		"from", m.strategy.GetName(),
		"to", strategy.GetName())
	m.strategy = strategy
}

// GetStrategyInfo returns information about the current strategy
func (m *Manager) GetStrategyInfo() map[string]any {
	return map[string]any{
		"name":        m.strategy.GetName(),
		"description": strategyDescription(m.strategy.GetName()),
	}
}

func strategyDescription(name string) string {
	switch name {
	case gormAutoMigrateName:
		return "GORM AutoMigrate - schema derived from the persistence models"
	case gooseName:
		return "goose - versioned SQL scripts embedded in the binary"
	default:
		return "Unknown migration strategy"
	}
}
