package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/axonect/quotacycle/internal/infrastructure/database"
	httpRouter "github.com/axonect/quotacycle/internal/interfaces/http"
	"github.com/axonect/quotacycle/internal/interfaces/cli/bootstrap"
)

func main() {
	var flags bootstrap.Flags
	flag.StringVar(&flags.Env, "env", "production", "Environment (development, test, production)")
	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file (default: ./configs/config.yaml)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Attach source locations to every log record")
	flag.Parse()

	if err := run(&flags); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *bootstrap.Flags) error {
	cfg, log, err := bootstrap.Init(flags)
	if err != nil {
		return err
	}
	defer bootstrap.Close(log)

	log.Infow("starting batch worker", "environment", flags.Env)

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return err
	}

	// metrics only; job triggers stay on the server process
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, container.MetricsHandler())
		metricsSrv = &http.Server{Addr: cfg.Server.GetAddr(), Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics listener failed", "error", err)
			}
		}()
	}

	container.Scheduler().Start()
	for name, next := range container.Scheduler().NextRuns() {
		log.Infow("job scheduled", "job", name, "next_run", next)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infow("received signal, shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(ctx)
	}
	if err := container.Shutdown(ctx); err != nil {
		return err
	}
	log.Infow("batch worker stopped")
	return nil
}
