// Package commands wires the ledger engines into the greenbooks CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenbooks-dev/greenbooks/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "greenbooks",
		Short:   "Multi-tenant ledger posting and period-close engine",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "greenbooks.yaml", "path to the configuration file")

	rootCmd.AddCommand(newInitCommand(&configPath))
	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newSeedCommand(&configPath))
	rootCmd.AddCommand(newCloseCommand(&configPath))
	rootCmd.AddCommand(newDepreciateCommand(&configPath))
	rootCmd.AddCommand(newImportCommand(&configPath))

	return rootCmd
}
