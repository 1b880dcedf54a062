// Package maintenance repairs stored transactions: it rewrites dates into
// canonical form and removes synthetic test rows.
package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/dates"
	"github.com/spendlens/spendlens/internal/importer"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/store"
)

// Repository is the transaction storage maintenance works on.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]model.Transaction, error)
	FindByKey(ctx context.Context, account, date, description1 string) (*model.Transaction, error)
	UpdateDate(ctx context.Context, id int64, date string) error
	Delete(ctx context.Context, id int64) error
}

// DateReport summarizes a date standardization run.
type DateReport struct {
	Scanned     int
	Updated     int
	Unparseable int
	// Conflicts are rows whose fixed date would collide with a stored row.
	Conflicts int
}

// Runner runs maintenance jobs.
type Runner struct {
	repo   Repository
	dryRun bool
	log    zerolog.Logger
}

// New creates a Runner. With dryRun set nothing is written.
func New(repo Repository, dryRun bool, log zerolog.Logger) *Runner {
	return &Runner{repo: repo, dryRun: dryRun, log: log.With().Str("component", "maintenance").Logger()}
}

// StandardizeDates rewrites every stored date that is not YYYY-MM-DD.
func (r *Runner) StandardizeDates(ctx context.Context) (DateReport, error) {
	txns, err := r.repo.List(ctx, 0, 0)
	if err != nil {
		return DateReport{}, err
	}

	var rep DateReport
	for _, tx := range txns {
		rep.Scanned++
		if dates.IsCanonical(tx.TransactionDate) {
			continue
		}

		fixed := dates.Normalize(tx.TransactionDate)
		if !dates.IsCanonical(fixed) {
			r.log.Warn().Int64("id", tx.ID).Str("date", tx.TransactionDate).Msg("Cannot standardize date")
			rep.Unparseable++
			continue
		}

		existing, err := r.repo.FindByKey(ctx, tx.AccountNumber, fixed, tx.Description1)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return rep, err
		}
		if existing != nil {
			r.log.Warn().Int64("id", tx.ID).Int64("existing_id", existing.ID).Msg("Standardized date collides with stored row")
			rep.Conflicts++
			continue
		}

		if !r.dryRun {
			if err := r.repo.UpdateDate(ctx, tx.ID, fixed); err != nil {
				return rep, fmt.Errorf("transaction %d: %w", tx.ID, err)
			}
		}
		r.log.Debug().Int64("id", tx.ID).Str("from", tx.TransactionDate).Str("to", fixed).Msg("Standardized date")
		rep.Updated++
	}
	return rep, nil
}

// CleanupTestRows deletes stored rows whose description1 hits the test
// marker denylist, along with their category links. It returns the rows
// matched.
func (r *Runner) CleanupTestRows(ctx context.Context) ([]model.Transaction, error) {
	txns, err := r.repo.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	var removed []model.Transaction
	for _, tx := range txns {
		if !importer.IsTestMarker(tx.Description1) {
			continue
		}
		if !r.dryRun {
			if err := r.repo.Delete(ctx, tx.ID); err != nil {
				return removed, fmt.Errorf("transaction %d: %w", tx.ID, err)
			}
		}
		removed = append(removed, tx)
	}
	r.log.Info().Int("removed", len(removed)).Bool("dry_run", r.dryRun).Msg("Test row cleanup done")
	return removed, nil
}
