package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/axonect/quotacycle/internal/interfaces/cli/migrate"
	"github.com/axonect/quotacycle/internal/interfaces/cli/run"
	"github.com/axonect/quotacycle/internal/interfaces/cli/seed"
	"github.com/axonect/quotacycle/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quotacycle",
		Short: "Quotacycle - recurring quota provisioning",
		Long: `Quotacycle renews recurring service instances, provisions their quota buckets with
carry-forward, reaps expired buckets and publishes expiry notifications.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		run.NewCommand(),
		seed.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
