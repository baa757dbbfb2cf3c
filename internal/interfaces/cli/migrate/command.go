package migrate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axonect/quotacycle/internal/infrastructure/config"
	"github.com/axonect/quotacycle/internal/infrastructure/database"
	"github.com/axonect/quotacycle/internal/infrastructure/migration"
	"github.com/axonect/quotacycle/internal/interfaces/cli/bootstrap"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

var (
	flags bootstrap.Flags
	name  string
	steps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back and inspect the versioned SQL migrations embedded in the binary.`,
	}

	cmd.PersistentFlags().StringVarP(&flags.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new SQL migration for the configured driver",
		RunE:  runCreate,
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// withGoose opens the database and hands the goose strategy for the configured driver to fn.
func withGoose(fn func(s *migration.GooseStrategy, log logger.Interface) error) error {
	cfg, log, err := bootstrap.Init(&flags)
	if err != nil {
		return err
	}
	defer bootstrap.Close(log)

	return fn(migration.NewGooseStrategy(cfg.Database.Driver, log), log)
}

func runUp(cmd *cobra.Command, args []string) error {
	return withGoose(func(s *migration.GooseStrategy, log logger.Interface) error {
		log.Infow("running up migrations", "environment", flags.Env)
		if err := s.Migrate(database.Get()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Infow("migrations completed successfully")
		return nil
	})
}

func runDown(cmd *cobra.Command, args []string) error {
	return withGoose(func(s *migration.GooseStrategy, log logger.Interface) error {
		log.Infow("running down migrations", "environment", flags.Env, "steps", steps)
		if err := s.MigrateDown(database.Get(), steps); err != nil {
			return fmt.Errorf("down migration failed: %w", err)
		}
		log.Infow("down migration completed successfully")
		return nil
	})
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withGoose(func(s *migration.GooseStrategy, log logger.Interface) error {
		version, err := s.GetVersion(database.Get())
		if err != nil {
			return fmt.Errorf("failed to get migration version: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\nMigration Status:\n")
		fmt.Fprintf(out, "  Environment:     %s\n", flags.Env)
		fmt.Fprintf(out, "  Current Version: %d\n", version)

		return s.Status(database.Get())
	})
}

// runCreate only needs the driver name, so it skips the database connection.
func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flags.ResolveEnv(), flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.NewLogger()

	root, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := migration.NewGooseStrategy(cfg.Database.Driver, log).Create(root, name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migration %q created for %s\n", name, cfg.Database.Driver)
	return nil
}
