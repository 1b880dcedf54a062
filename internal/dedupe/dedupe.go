// Package dedupe finds already-stored copies of incoming transactions.
package dedupe

import (
	"context"
	"errors"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/store"
)

// Finder is the storage lookup the detector needs.
type Finder interface {
	FindByKey(ctx context.Context, account, date, description1 string) (*model.Transaction, error)
}

// Detector matches on account number, transaction date and description1
// using exact, case-sensitive equality.
type Detector struct {
	finder Finder
}

// New creates a Detector.
func New(finder Finder) *Detector {
	return &Detector{finder: finder}
}

// FindExisting returns the stored row matching tx, or nil if there is none.
func (d *Detector) FindExisting(ctx context.Context, tx model.NormalizedTransaction) (*model.Transaction, error) {
	existing, err := d.finder.FindByKey(ctx, tx.AccountNumber, tx.TransactionDate, tx.Description1)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return existing, nil
}
