package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/ingest"
)

func newInboxCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox [dir]",
		Short: "Import every CSV waiting in the inbox directory once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			dir := a.cfg.Import.InboxDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return errors.New("no inbox directory: pass one or set import.inbox_dir")
			}

			rep, err := a.ingest.ProcessInbox(cmd.Context(), dir, ingest.Options{AutoApply: a.cfg.Import.AutoApplyCategories})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d files: %d imported, %d failed; %d added, %d duplicates\n",
				rep.Files, rep.Imported, rep.Failed, rep.Added, rep.Duplicates)
			if rep.Failed > 0 {
				return fmt.Errorf("%d inbox files failed", rep.Failed)
			}
			return nil
		},
	}
}
