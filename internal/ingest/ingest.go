// Package ingest persists parsed bank transactions, skipping duplicates and
// optionally categorizing each new row.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/categorize"
	"github.com/spendlens/spendlens/internal/dedupe"
	"github.com/spendlens/spendlens/internal/importer"
	"github.com/spendlens/spendlens/internal/importlog"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/store"
)

var (
	// ErrUnknownImporter is returned for an importer code nobody registered.
	ErrUnknownImporter = errors.New("unknown importer")
	// ErrNoTransactions is returned when a file parses to zero rows.
	ErrNoTransactions = errors.New("no transactions found in file")
)

// Options control one import batch.
type Options struct {
	AutoApply bool
}

// Result counts what happened to a batch. Rows whose insert failed are in
// neither Added nor Duplicates.
type Result struct {
	Added      int
	Duplicates int
	Failed     int
	BatchID    string
}

// FileResult is a Result for a whole file.
type FileResult struct {
	Result
	Importer string
	Parsed   int
}

// Service runs batch imports.
type Service struct {
	store       *store.Store
	detector    *dedupe.Detector
	categorizer *categorize.Categorizer
	registry    *importer.Registry
	runLog      *importlog.Log
	log         zerolog.Logger

	// mu keeps concurrent batches from interleaving their duplicate checks.
	mu sync.Mutex
}

// NewService wires the import pipeline. runLog may be nil.
func NewService(s *store.Store, registry *importer.Registry, runLog *importlog.Log, log zerolog.Logger) *Service {
	return &Service{
		store:       s,
		detector:    dedupe.New(s.Transactions),
		categorizer: categorize.New(s, log),
		registry:    registry,
		runLog:      runLog,
		log:         log.With().Str("component", "ingest").Logger(),
	}
}

// Import persists txns in order. Rows are handled one at a time so a later
// row's duplicate check sees earlier inserts from the same batch. Per-row
// failures are logged and the batch carries on.
func (s *Service) Import(ctx context.Context, txns []model.NormalizedTransaction, opts Options) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result{BatchID: uuid.NewString()}
	log := s.log.With().Str("batch_id", res.BatchID).Logger()

	for i, tx := range txns {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		existing, err := s.detector.FindExisting(ctx, tx)
		if err != nil {
			log.Error().Err(err).Int("row", i).Msg("Duplicate check failed")
			res.Failed++
			continue
		}
		if existing != nil {
			log.Debug().Int("row", i).Int64("existing_id", existing.ID).Msg("Skipping duplicate")
			res.Duplicates++
			continue
		}

		id, err := s.store.Transactions.Insert(ctx, tx)
		if err != nil {
			log.Error().Err(err).Int("row", i).Str("description", tx.Description1).Msg("Insert failed")
			res.Failed++
			continue
		}

		if opts.AutoApply {
			if _, _, err := s.categorizer.Apply(ctx, id, tx.Description1); err != nil {
				log.Warn().Err(err).Int64("transaction_id", id).Msg("Categorization failed")
			}
		}
		res.Added++
	}

	log.Info().Int("added", res.Added).Int("duplicates", res.Duplicates).Int("failed", res.Failed).
		Bool("auto_apply", opts.AutoApply).Msg("Import batch done")
	return res, nil
}

// ImportFile parses r with the importer named by code, or the detected or
// default importer when code is empty, and imports the rows. Nothing is
// written if parsing fails.
func (s *Service) ImportFile(ctx context.Context, r io.Reader, fileName, code string, opts Options) (FileResult, error) {
	entry := importlog.Entry{Timestamp: time.Now(), Source: fileName, Importer: code}

	fr, err := s.importFile(ctx, r, fileName, code, opts)
	entry.BatchID = fr.BatchID
	entry.Parsed = fr.Parsed
	entry.Added = fr.Added
	entry.Duplicates = fr.Duplicates
	entry.Failed = fr.Failed
	if fr.Importer != "" {
		entry.Importer = fr.Importer
	}
	if err != nil {
		entry.Status = importlog.StatusError
		entry.Details = err.Error()
	} else {
		entry.Status = importlog.StatusOK
	}
	if logErr := s.runLog.Append(entry); logErr != nil {
		s.log.Warn().Err(logErr).Msg("Writing import log failed")
	}
	return fr, err
}

func (s *Service) importFile(ctx context.Context, r io.Reader, fileName, code string, opts Options) (FileResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return FileResult{}, fmt.Errorf("reading %s: %w", fileName, err)
	}

	imp, ok := s.registry.Resolve(code, importer.HeaderLine(data), fileName)
	if !ok {
		if code == "" {
			return FileResult{}, fmt.Errorf("no importers registered: %w", ErrUnknownImporter)
		}
		return FileResult{}, fmt.Errorf("%w: %s", ErrUnknownImporter, code)
	}
	fr := FileResult{Importer: imp.Code()}

	txns, err := imp.Parse(bytes.NewReader(data))
	if err != nil {
		return fr, fmt.Errorf("parsing %s with %s: %w", fileName, imp.Code(), err)
	}
	fr.Parsed = len(txns)
	if len(txns) == 0 {
		return fr, ErrNoTransactions
	}

	s.log.Info().Str("file", fileName).Str("importer", imp.Code()).Int("rows", len(txns)).Msg("Parsed file")

	res, err := s.Import(ctx, txns, opts)
	fr.Result = res
	return fr, err
}
