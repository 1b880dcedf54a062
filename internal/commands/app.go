package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/config"
	"github.com/spendlens/spendlens/internal/database"
	"github.com/spendlens/spendlens/internal/importer"
	"github.com/spendlens/spendlens/internal/importlog"
	"github.com/spendlens/spendlens/internal/ingest"
	"github.com/spendlens/spendlens/internal/logger"
	"github.com/spendlens/spendlens/internal/store"
)

// app is the wiring shared by commands that touch the database.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *database.DB
	store    *store.Store
	registry *importer.Registry
	ingest   *ingest.Service
	runLog   *importlog.Log
}

func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(*opts.configPath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)
	return cfg, nil
}

// openApp loads config, connects and brings the schema up to date.
func openApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s := store.New(db, log)
	reg := newRegistry(cfg, log)
	runLog := importlog.New(cfg.ImportLog.Path)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		store:    s,
		registry: reg,
		ingest:   ingest.NewService(s, reg, runLog, log),
		runLog:   runLog,
	}, nil
}

// newRegistry builds the built-in importers, re-registering Chase when a
// custom account number is configured.
func newRegistry(cfg *config.Config, log zerolog.Logger) *importer.Registry {
	reg := importer.DefaultRegistry(log)
	if cfg.Import.ChaseAccount != "" {
		if err := reg.Register(importer.NewChase(log, cfg.Import.ChaseAccount)); err != nil {
			log.Warn().Err(err).Msg("Configuring Chase importer failed")
		}
	}
	return reg
}

func (a *app) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
