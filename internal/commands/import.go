package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/ingest"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var (
		importerCode string
		noCategorize bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import bank CSV exports",
		Long: "Import one or more bank CSV exports. Without --importer each file's importer\n" +
			"is detected from its header and name, falling back to the default.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			autoApply := a.cfg.Import.AutoApplyCategories && !noCategorize

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"File", "Importer", "Parsed", "Added", "Duplicates", "Failed"})

			var failed []string
			for _, path := range args {
				res, err := importPath(cmd, a, path, importerCode, autoApply)
				if err != nil {
					a.log.Error().Err(err).Str("file", path).Msg("Import failed")
					failed = append(failed, filepath.Base(path))
					table.Append([]string{filepath.Base(path), res.Importer, "-", "-", "-", "error"})
					continue
				}
				table.Append([]string{
					filepath.Base(path), res.Importer, strconv.Itoa(res.Parsed),
					strconv.Itoa(res.Added), strconv.Itoa(res.Duplicates), strconv.Itoa(res.Failed),
				})
			}
			table.Render()

			if len(failed) > 0 {
				return fmt.Errorf("%d of %d files failed: %v", len(failed), len(args), failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&importerCode, "importer", "", "importer code (see `spendlens importers`)")
	cmd.Flags().BoolVar(&noCategorize, "no-categorize", false, "skip automatic categorization")

	return cmd
}

func importPath(cmd *cobra.Command, a *app, path, code string, autoApply bool) (ingest.FileResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ingest.FileResult{}, err
	}
	defer f.Close()

	res, err := a.ingest.ImportFile(cmd.Context(), f, filepath.Base(path), code, ingest.Options{AutoApply: autoApply})
	if errors.Is(err, ingest.ErrUnknownImporter) {
		return res, fmt.Errorf("%w (available: %s)", err, importerCodes(a))
	}
	return res, err
}
