package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/axonect/quotacycle/internal/infrastructure/database"
	"github.com/axonect/quotacycle/internal/infrastructure/migration"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/models"
	httpRouter "github.com/axonect/quotacycle/internal/interfaces/http"
	"github.com/axonect/quotacycle/internal/interfaces/cli/bootstrap"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

const shutdownTimeout = 30 * time.Second

var (
	flags         bootstrap.Flags
	autoMigrate   bool
	withScheduler bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the admin HTTP API: job triggers, failure audit, cache management, health and metrics.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&flags.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&flags.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Attach source locations to every log record")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "Also run the cron jobs in this process")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Init(&flags)
	if err != nil {
		return err
	}
	defer bootstrap.Close(log)

	log.Infow("starting server",
		"environment", flags.Env,
		"auto_migrate", autoMigrate,
		"with_scheduler", withScheduler)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if autoMigrate {
		if flags.Env == "production" {
			log.Warnw("auto-migration is enabled in production environment")
		}
		if err := migration.NewManager(flags.Env, cfg.Database.Driver, log).Migrate(database.Get(), models.All()...); err != nil {
			return err
		}
	}

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	if withScheduler {
		container.Scheduler().Start()
	}

	srv := &http.Server{
		Addr:              cfg.Server.GetAddr(),
		Handler:           container.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server listening", "address", srv.Addr, "mode", gin.Mode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infow("shutting down server", "signal", sig.String())
	case err := <-serveErr:
		if err != nil {
			_ = container.Shutdown(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	}

	return shutdown(srv, container, log)
}

func shutdown(srv *http.Server, container *httpRouter.Container, log logger.Interface) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// stop accepting requests first; a running manual trigger finishes before the scheduler stops
	httpErr := srv.Shutdown(ctx)
	if httpErr != nil {
		log.Errorw("server forced to shutdown", "error", httpErr)
	}
	if err := container.Shutdown(ctx); err != nil {
		log.Errorw("failed to release resources", "error", err)
		return errors.Join(httpErr, err)
	}

	log.Infow("server exited gracefully")
	return httpErr
}
