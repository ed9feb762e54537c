package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCommand(configPath *string) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the core chart of accounts for a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.registry.EnsureCoreSet(cmd.Context(), tenant); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded core accounts for tenant %s\n", tenant)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}
