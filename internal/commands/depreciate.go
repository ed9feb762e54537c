package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDepreciateCommand(configPath *string) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "depreciate",
		Short: "Post straight-line depreciation for all elapsed periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			result, err := e.assets.Run(cmd.Context(), tenant)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, ev := range result.Posted {
				fmt.Fprintf(out, "posted  %-20s %s %s\n", ev.UniqueKey, ev.Period, ev.Amount.StringFixed(2))
			}
			for _, sk := range result.Skipped {
				fmt.Fprintf(out, "skipped %-20s %s\n", sk.UniqueKey, sk.Reason)
			}
			for _, f := range result.Failed {
				fmt.Fprintf(out, "failed  %-20s %s\n", f.UniqueKey, f.Err)
			}
			fmt.Fprintf(out, "%d posted, %d skipped, %d failed\n",
				len(result.Posted), len(result.Skipped), len(result.Failed))
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (default all tenants)")

	return cmd
}
