package migration

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"path/filepath"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/axonect/quotacycle/internal/shared/logger"
)

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Migrate executes the migration strategy
	Migrate(db *gorm.DB, models ...any) error
	// GetName returns the strategy name
	GetName() string
}

const gooseName = "goose"

// SourceScriptsDir is where `migrate create` writes new scripts, relative to the repo root.
const SourceScriptsDir = "internal/infrastructure/migration/scripts"

//go:embed scripts
var embeddedScripts embed.FS

// goose keeps its dialect, filesystem and logger in package globals.
var gooseMu sync.Mutex

// GooseStrategy runs the versioned SQL scripts embedded for one dialect.
type GooseStrategy struct {
	driver string
	logger logger.Interface
}

func NewGooseStrategy(driver string, log logger.Interface) *GooseStrategy {
	if driver == "" {
		driver = "mysql"
	}
	return &GooseStrategy{
		driver: driver,
		logger: log.Named("migration.goose"),
	}
}

func (s *GooseStrategy) dialect() string {
	if s.driver == "sqlite" {
		return "sqlite3"
	}
	return s.driver
}

// scriptsDir is the per-driver directory inside the embedded scripts.
func (s *GooseStrategy) scriptsDir() string {
	return path.Join("scripts", s.driver)
}

// with prepares goose for this strategy and runs fn against the underlying sql.DB.
func (s *GooseStrategy) with(db *gorm.DB, fn func(sqlDB *sql.DB) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embeddedScripts)
	goose.SetLogger(gooseLogger{s.logger})
	if err := goose.SetDialect(s.dialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn(sqlDB)
}

// Migrate applies every pending script. Models are ignored; the scripts are authoritative.
func (s *GooseStrategy) Migrate(db *gorm.DB, _ ...any) error {
	return s.with(db, func(sqlDB *sql.DB) error {
		currentVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			s.logger.Errorw("failed to get current version", "error", err)
			return fmt.Errorf("failed to get current version: %w", err)
		}

		s.logger.Infow("current migration status", "version", currentVersion, "driver", s.driver)

		if err := goose.Up(sqlDB, s.scriptsDir()); err != nil {
			s.logger.Errorw("migration failed", "error", err)
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		finalVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get final version: %w", err)
		}

		s.logger.Infow("migration completed successfully",
			"from_version", currentVersion,
			"to_version", finalVersion)
		return nil
	})
}

func (s *GooseStrategy) GetName() string {
	return gooseName
}

func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	s.logger.Infow("starting down migration", "steps", steps)

	return s.with(db, func(sqlDB *sql.DB) error {
		for i := 0; i < steps; i++ {
			if err := goose.Down(sqlDB, s.scriptsDir()); err != nil {
				s.logger.Errorw("down migration failed", "error", err)
				return fmt.Errorf("failed to run down migration: %w", err)
			}
		}
		s.logger.Infow("down migration completed successfully")
		return nil
	})
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	var version int64
	err := s.with(db, func(sqlDB *sql.DB) error {
		v, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// Status logs the applied state of every script.
func (s *GooseStrategy) Status(db *gorm.DB) error {
	return s.with(db, func(sqlDB *sql.DB) error {
		if err := goose.Status(sqlDB, s.scriptsDir()); err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}
		return nil
	})
}

// Create writes an empty SQL script for this driver under rootDir/SourceScriptsDir.
func (s *GooseStrategy) Create(rootDir, name string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(nil)
	defer goose.SetBaseFS(embeddedScripts)

	if err := goose.SetDialect(s.dialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	dir := filepath.Join(rootDir, SourceScriptsDir, s.driver)
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	s.logger.Infow("migration created successfully", "name", name, "dir", dir)
	return nil
}

// gooseLogger routes goose output through the structured logger.
type gooseLogger struct {
	log logger.Interface
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Infow(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Errorw(fmt.Sprintf(format, v...))
}
