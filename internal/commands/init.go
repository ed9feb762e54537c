package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenbooks-dev/greenbooks/internal/config"
	"github.com/greenbooks-dev/greenbooks/internal/sqlite"
)

func newInitCommand(configPath *string) *cobra.Command {
	var dbPath string
	var regime string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration and create the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(*configPath); err == nil {
				return fmt.Errorf("config %s already exists", *configPath)
			}

			cfg := config.Default()
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}
			if regime != "" {
				cfg.Tax.Regime = regime
			}
			if err := config.Save(*configPath, cfg); err != nil {
				return err
			}

			db, err := sqlite.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s (database %s, tax regime %s)\n",
				*configPath, cfg.Database.Path, cfg.Tax.Regime)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file path (default greenbooks.db)")
	cmd.Flags().StringVar(&regime, "tax-regime", "", "tax regime, sales_tax or vat")

	return cmd
}
