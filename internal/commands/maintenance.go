package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/maintenance"
)

func newMaintenanceCommand(opts *globalOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Repair stored transactions",
	}
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report changes without writing them")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "standardize-dates",
			Short: "Rewrite stored dates as YYYY-MM-DD",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd.Context(), opts)
				if err != nil {
					return err
				}
				defer a.Close()

				rep, err := maintenance.New(a.store.Transactions, dryRun, a.log).StandardizeDates(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d, updated %d, unparseable %d, conflicts %d%s\n",
					rep.Scanned, rep.Updated, rep.Unparseable, rep.Conflicts, dryRunSuffix(dryRun))
				return nil
			},
		},
		&cobra.Command{
			Use:   "cleanup-test-rows",
			Short: "Delete stored rows that look like test data",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd.Context(), opts)
				if err != nil {
					return err
				}
				defer a.Close()

				removed, err := maintenance.New(a.store.Transactions, dryRun, a.log).CleanupTestRows(cmd.Context())
				if err != nil {
					return err
				}
				for _, tx := range removed {
					fmt.Fprintf(cmd.OutOrStdout(), "  %d %s %s\n", tx.ID, tx.TransactionDate, tx.Description1)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d test rows%s\n", len(removed), dryRunSuffix(dryRun))
				return nil
			},
		},
	)

	return cmd
}

func dryRunSuffix(dryRun bool) string {
	if dryRun {
		return " (dry run)"
	}
	return ""
}
