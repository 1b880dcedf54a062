package commands

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/logger"
)

func newImportersCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "importers",
		Short: "List available bank importers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			reg := newRegistry(cfg, logger.Nop())

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Code", "Name", "File types", "Default"})
			for _, imp := range reg.List() {
				def := ""
				if strings.EqualFold(imp.Code(), cfg.Import.DefaultImporter) {
					def = "yes"
				}
				table.Append([]string{imp.Code(), imp.Name(), strings.Join(imp.SupportedFileTypes(), " "), def})
			}
			table.Render()
			return nil
		},
	}
}

func importerCodes(a *app) string {
	var codes []string
	for _, imp := range a.registry.List() {
		codes = append(codes, imp.Code())
	}
	return strings.Join(codes, ", ")
}
