package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/categories"
	"github.com/spendlens/spendlens/internal/categorize"
	"github.com/spendlens/spendlens/internal/dates"
	"github.com/spendlens/spendlens/internal/export"
)

func newTransactionsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Inspect and export stored transactions",
	}
	cmd.AddCommand(
		newTransactionsListCommand(opts),
		newTransactionsExportCommand(opts),
		newTransactionsCategorizeCommand(opts),
	)
	return cmd
}

func newTransactionsListCommand(opts *globalOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			txns, err := a.store.Transactions.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			cats, err := categories.Load(cmd.Context(), a.store.Categories)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "Date", "Account", "Description", "Debit", "Credit", "Category", "Status"})
			for _, tx := range txns {
				table.Append([]string{
					strconv.FormatInt(tx.ID, 10), tx.TransactionDate, tx.AccountNumber, tx.Description1,
					tx.DebitAmount, tx.CreditAmount, cats.Path(tx.CategoryID), string(tx.Status()),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")

	return cmd
}

func newTransactionsExportCommand(opts *globalOptions) *cobra.Command {
	var out, from, to string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := parseBound("from", from)
			if err != nil {
				return err
			}
			toDate, err := parseBound("to", to)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			txns, err := a.store.Transactions.List(cmd.Context(), 0, 0)
			if err != nil {
				return err
			}
			txns = export.FilterByDate(txns, fromDate, toDate)
			cats, err := categories.Load(cmd.Context(), a.store.Categories)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := export.WriteTransactions(w, txns, cats); err != nil {
				return err
			}

			if out != "" {
				sum := export.Summarize(txns)
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s (debits %s, credits %s, net %s)\n",
					sum.Count, out, sum.Debits.StringFixed(2), sum.Credits.StringFixed(2), sum.Net().StringFixed(2))
				if sum.Unparsed > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%d amounts were not numeric and are excluded from totals\n", sum.Unparsed)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to include (YYYY-MM-DD)")

	return cmd
}

func parseBound(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, ok := dates.ParseCanonical(s)
	if !ok {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD, got %q", name, s)
	}
	return t, nil
}

func newTransactionsCategorizeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categorize",
		Short: "Apply patterns to uncategorized transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			txns, err := a.store.Transactions.ListUncategorized(cmd.Context())
			if err != nil {
				return err
			}

			c := categorize.New(a.store, a.log)
			var matched int
			for _, tx := range txns {
				_, ok, err := c.Apply(cmd.Context(), tx.ID, tx.Description1)
				if err != nil {
					return fmt.Errorf("transaction %d: %w", tx.ID, err)
				}
				if ok {
					matched++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categorized %d of %d uncategorized transactions\n", matched, len(txns))
			return nil
		},
	}
}
