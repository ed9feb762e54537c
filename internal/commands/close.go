package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCloseCommand(configPath *string) *cobra.Command {
	var tenant string
	var asOfStr string

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close the period: zero revenue and expense into retained earnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf := time.Now().UTC()
			if asOfStr != "" {
				var err error
				asOf, err = time.Parse("2006-01-02", asOfStr)
				if err != nil {
					return fmt.Errorf("parsing --as-of %q: %w", asOfStr, err)
				}
			}

			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			result, err := e.closing.ClosePeriod(cmd.Context(), tenant, asOf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case result.IsExisting:
				fmt.Fprintf(out, "Period through %s already closed (transaction %s)\n",
					asOf.Format("2006-01-02"), result.TransactionID)
			case !result.Closed:
				fmt.Fprintln(out, result.Message)
			default:
				fmt.Fprintf(out, "Closed period through %s: net income %s (transaction %s)\n",
					asOf.Format("2006-01-02"), result.NetIncome.StringFixed(2), result.TransactionID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&asOfStr, "as-of", "", "closing date YYYY-MM-DD (default today)")

	return cmd
}
