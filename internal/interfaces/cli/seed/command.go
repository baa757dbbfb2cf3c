package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axonect/quotacycle/internal/infrastructure/database"
	"github.com/axonect/quotacycle/internal/infrastructure/persistence/seeds"
	"github.com/axonect/quotacycle/internal/interfaces/cli/bootstrap"
)

var (
	flags bootstrap.Flags
	file  string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data from a YAML file",
		Long: `Upsert QoS profiles, buckets, plans with their bucket templates, subscribers,
service instances and expiry notification templates from a YAML catalog.`,
		Args: cobra.NoArgs,
		RunE: run,
	}

	cmd.Flags().StringVarP(&flags.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&flags.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed catalog file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	catalog, err := seeds.LoadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	_, log, err := bootstrap.Init(&flags)
	if err != nil {
		return err
	}
	defer bootstrap.Close(log)

	result, err := seeds.NewSeeder(database.Get(), log).Seed(context.Background(), catalog)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
