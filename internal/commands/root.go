package commands

import (
	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/buildinfo"
	"github.com/spendlens/spendlens/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "spendlens",
		Short:   "Bank statement import and auto-categorization",
		Version: buildinfo.Current().String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "path to config file")

	opts := &globalOptions{configPath: &configPath}
	rootCmd.AddCommand(
		newInitCommand(opts),
		newImportCommand(opts),
		newInboxCommand(opts),
		newServeCommand(opts),
		newImportersCommand(opts),
		newCategoriesCommand(opts),
		newPatternsCommand(opts),
		newTransactionsCommand(opts),
		newMaintenanceCommand(opts),
	)

	return rootCmd
}

// globalOptions carries persistent flag values into subcommands.
type globalOptions struct {
	configPath *string
}
