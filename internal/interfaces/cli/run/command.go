// Package run executes one batch job in the foreground and prints its result.
package run

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/axonect/quotacycle/internal/infrastructure/database"
	"github.com/axonect/quotacycle/internal/infrastructure/metrics"
	httpRouter "github.com/axonect/quotacycle/internal/interfaces/http"
	"github.com/axonect/quotacycle/internal/interfaces/cli/bootstrap"
)

var (
	flags   bootstrap.Flags
	timeout time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch job once",
	}

	cmd.PersistentFlags().StringVarP(&flags.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Abort the run after this long (0 uses the job's configured run_timeout)")

	cmd.AddCommand(
		newJobCommand("renew", metrics.JobRenewal, "Renew recurring services due tomorrow"),
		newJobCommand("reap", metrics.JobReaper, "Delete bucket instances that expired before today"),
		newJobCommand("notify", metrics.JobNotification, "Publish bucket expiry notifications"),
	)
	return cmd
}

func newJobCommand(use, job, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd, job)
		},
	}
}

func runJob(cmd *cobra.Command, job string) error {
	cfg, log, err := bootstrap.Init(&flags)
	if err != nil {
		return err
	}
	defer bootstrap.Close(log)

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = container.Shutdown(context.Background()) }()

	batch, ok := container.Job(job)
	if !ok {
		return fmt.Errorf("unknown job %q", job)
	}

	limit := timeout
	if limit == 0 {
		switch job {
		case metrics.JobRenewal:
			limit = cfg.Renewal.RunTimeout
		case metrics.JobReaper:
			limit = cfg.Reaper.RunTimeout
		case metrics.JobNotification:
			limit = cfg.Notification.RunTimeout
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	started := time.Now()
	n, err := batch.Execute(ctx)
	log.Infow("job finished", "job", job, "count", n, "duration", time.Since(started), "error", err)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(map[string]any{"job": job, "count": n}); encErr != nil {
		return encErr
	}
	return err
}
