package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/categories"
)

func newCategoriesCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Category taxonomy",
	}
	cmd.AddCommand(newCategoriesListCommand(opts), newCategoriesSeedCommand(opts))
	return cmd
}

func newCategoriesListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := categories.Load(cmd.Context(), a.store.Categories)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "Category", "Description"})
			for _, top := range svc.Children(0) {
				table.Append([]string{strconv.FormatInt(top.ID, 10), svc.Path(top.ID), top.Description})
				for _, c := range svc.Children(top.ID) {
					table.Append([]string{strconv.FormatInt(c.ID, 10), svc.Path(c.ID), c.Description})
				}
			}
			table.Render()
			return nil
		},
	}
}

func newCategoriesSeedCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the default categories if none exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := categories.SeedIfEmpty(cmd.Context(), a.store.Categories, categories.DefaultTaxonomy())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Categories already present, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories\n", n)
			return nil
		},
	}
}
