package categorize

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/store"
)

// Categorizer applies the best matching pattern to stored transactions.
type Categorizer struct {
	store *store.Store
	log   zerolog.Logger
}

// New creates a Categorizer.
func New(s *store.Store, log zerolog.Logger) *Categorizer {
	return &Categorizer{store: s, log: log.With().Str("component", "categorize").Logger()}
}

// Preview reports which pattern would win for description without writing
// anything.
func (c *Categorizer) Preview(ctx context.Context, description string) (model.SimilarityPattern, bool, error) {
	patterns, err := c.store.Patterns.List(ctx)
	if err != nil {
		return model.SimilarityPattern{}, false, err
	}
	best, ok := Best(Matches(description, patterns, c.log))
	return best, ok, nil
}

// Apply links transaction txID to the category of the winning pattern for
// description, marks it auto and bumps the pattern's usage count. No match,
// or a winner without a category, leaves the transaction untouched. A failed
// usage update is only logged.
func (c *Categorizer) Apply(ctx context.Context, txID int64, description string) (int64, bool, error) {
	best, ok, err := c.Preview(ctx, description)
	if err != nil {
		return 0, false, fmt.Errorf("loading patterns: %w", err)
	}
	if !ok || best.CategoryID == 0 {
		return 0, false, nil
	}

	parentID, err := c.parentFor(ctx, best)
	if err != nil {
		return 0, false, err
	}

	if err := c.store.Assignments.Assign(ctx, model.TransactionCategory{
		TransactionID:    txID,
		CategoryID:       best.CategoryID,
		ParentCategoryID: parentID,
	}); err != nil {
		return 0, false, err
	}
	if err := c.store.Transactions.SetGroupingStatus(ctx, txID, model.GroupingAuto); err != nil {
		// A link without the auto status would hide the row from recategorization.
		if rmErr := c.store.Assignments.Remove(ctx, txID); rmErr != nil {
			c.log.Error().Err(rmErr).Int64("transaction_id", txID).Msg("Removing category link failed")
		}
		return 0, false, err
	}
	if err := c.store.Patterns.IncrementUsage(ctx, best.ID); err != nil {
		c.log.Warn().Err(err).Int64("pattern_id", best.ID).Msg("Updating pattern usage failed")
	}

	c.log.Debug().Int64("transaction_id", txID).Int64("pattern_id", best.ID).
		Int64("category_id", best.CategoryID).Msg("Categorized transaction")
	return best.CategoryID, true, nil
}

// Assign sets a category by hand, replacing any automatic link.
func (c *Categorizer) Assign(ctx context.Context, txID, categoryID int64) error {
	if _, err := c.store.Transactions.Get(ctx, txID); err != nil {
		return err
	}
	cat, err := c.store.Categories.Get(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("category %d: %w", categoryID, err)
	}

	if err := c.store.Assignments.Replace(ctx, model.TransactionCategory{
		TransactionID:    txID,
		CategoryID:       cat.ID,
		ParentCategoryID: cat.ParentID,
	}); err != nil {
		return err
	}
	return c.store.Transactions.SetGroupingStatus(ctx, txID, model.GroupingManual)
}

func (c *Categorizer) parentFor(ctx context.Context, p model.SimilarityPattern) (int64, error) {
	if p.ParentCategoryID != 0 {
		return p.ParentCategoryID, nil
	}
	cat, err := c.store.Categories.Get(ctx, p.CategoryID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cat.ParentID, nil
}
