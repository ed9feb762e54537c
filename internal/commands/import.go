package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenbooks-dev/greenbooks/internal/importer"
)

func newImportCommand(configPath *string) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import expenses from a CSV file",
		Long:  "Import expenses from a CSV file with header " + importer.Header + ". Rows already posted under the same reference are replayed, not duplicated.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			rows, err := importer.Parse(f)
			if err != nil {
				return err
			}

			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			result := importer.Import(cmd.Context(), e.posting, tenant, rows)

			out := cmd.OutOrStdout()
			for _, f := range result.Failed {
				fmt.Fprintf(out, "row %d failed: %s\n", f.Row, f.Err)
			}
			fmt.Fprintf(out, "%d posted, %d replayed, %d failed\n",
				result.Posted, result.Replayed, len(result.Failed))
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d rows failed", len(result.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}
