package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/categories"
	"github.com/spendlens/spendlens/internal/ingest"
	"github.com/spendlens/spendlens/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: "Run the HTTP API. When import.inbox_dir is configured, CSV files dropped\n" +
			"there are imported on the import.inbox_schedule cron schedule.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if n, err := categories.SeedIfEmpty(ctx, a.store.Categories, categories.DefaultTaxonomy()); err != nil {
				return err
			} else if n > 0 {
				a.log.Info().Int("count", n).Msg("Seeded default categories")
			}

			if port == 0 {
				port = a.cfg.Server.Port
			}
			if err := os.MkdirAll(a.cfg.Server.UploadDir, 0o755); err != nil {
				return fmt.Errorf("creating upload dir: %w", err)
			}

			srv := server.New(server.Config{
				Port:            port,
				UploadDir:       a.cfg.Server.UploadDir,
				AllowedOrigins:  a.cfg.Server.AllowedOrigins,
				DefaultImporter: a.cfg.Import.DefaultImporter,
				AutoApply:       a.cfg.Import.AutoApplyCategories,
				Log:             a.log,
				Store:           a.store,
				Registry:        a.registry,
				Ingest:          a.ingest,
			})

			if a.cfg.Import.InboxDir != "" {
				scheduler, err := startInbox(ctx, a)
				if err != nil {
					return err
				}
				defer func() { <-scheduler.Stop().Done() }()
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.log.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")

	return cmd
}

// startInbox schedules inbox sweeps. A sweep still running when the next
// one is due is skipped.
func startInbox(ctx context.Context, a *app) (*cron.Cron, error) {
	dir := a.cfg.Import.InboxDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating inbox dir: %w", err)
	}

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	opts := ingest.Options{AutoApply: a.cfg.Import.AutoApplyCategories}
	_, err := scheduler.AddFunc(a.cfg.Import.InboxSchedule, func() {
		rep, err := a.ingest.ProcessInbox(ctx, dir, opts)
		if err != nil {
			a.log.Error().Err(err).Str("dir", dir).Msg("Inbox sweep failed")
			return
		}
		if rep.Files > 0 {
			a.log.Info().Int("files", rep.Files).Int("imported", rep.Imported).Int("failed", rep.Failed).
				Int("added", rep.Added).Int("duplicates", rep.Duplicates).Msg("Inbox sweep done")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid inbox schedule %q: %w", a.cfg.Import.InboxSchedule, err)
	}

	scheduler.Start()
	a.log.Info().Str("dir", dir).Str("schedule", a.cfg.Import.InboxSchedule).Msg("Watching import inbox")
	return scheduler, nil
}
