// Package bootstrap prepares the process-wide state every command needs.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/axonect/quotacycle/internal/infrastructure/config"
	"github.com/axonect/quotacycle/internal/infrastructure/database"
	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

// Flags are the options shared by all commands.
type Flags struct {
	Env        string
	ConfigPath string
	Verbose    bool
}

// ResolveEnv lets the ENV variable override the --env flag.
func (f *Flags) ResolveEnv() string {
	if v := os.Getenv("ENV"); v != "" {
		f.Env = v
	}
	return f.Env
}

// Init loads configuration, then initializes the logger, the business timezone and the
// database connection in that order.
func Init(f *Flags) (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(f.ResolveEnv(), f.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputPath: cfg.Logger.OutputPath,
		Verbose:    f.Verbose,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Business.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, log, nil
}

// Close releases what Init opened.
func Close(log logger.Interface) {
	if err := database.Close(); err != nil && log != nil {
		log.Warnw("failed to close database", "error", err)
	}
}
