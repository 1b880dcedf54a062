package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/database"
	"github.com/spendlens/spendlens/internal/model"
)

// AssignmentRepository persists transaction to category links. A
// transaction has at most one.
type AssignmentRepository struct {
	db  *database.DB
	log zerolog.Logger
}

// Assign links a transaction to a category. A second link for the same
// transaction fails with ErrAlreadyCategorized.
func (r *AssignmentRepository) Assign(ctx context.Context, tc model.TransactionCategory) error {
	if _, err := r.Get(ctx, tc.TransactionID); err == nil {
		return ErrAlreadyCategorized
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err := r.db.Execute(ctx, `INSERT INTO transaction_categories (transaction_id, category_id, parent_category_id)
		VALUES (?, ?, ?) RETURNING id`,
		tc.TransactionID, tc.CategoryID, database.NullID(tc.ParentCategoryID))
	if database.IsUniqueViolation(err) {
		return ErrAlreadyCategorized
	}
	if err != nil {
		return fmt.Errorf("assigning category: %w", err)
	}
	return nil
}

// Replace drops any existing link for the transaction and writes tc.
func (r *AssignmentRepository) Replace(ctx context.Context, tc model.TransactionCategory) error {
	if err := r.Remove(ctx, tc.TransactionID); err != nil {
		return err
	}
	return r.Assign(ctx, tc)
}

// Remove deletes the link for a transaction, if any.
func (r *AssignmentRepository) Remove(ctx context.Context, transactionID int64) error {
	if _, err := r.db.Execute(ctx, `DELETE FROM transaction_categories WHERE transaction_id = ?`, transactionID); err != nil {
		return fmt.Errorf("removing category link: %w", err)
	}
	return nil
}

// Get returns the link for a transaction.
func (r *AssignmentRepository) Get(ctx context.Context, transactionID int64) (*model.TransactionCategory, error) {
	var (
		tc     model.TransactionCategory
		parent sql.NullInt64
	)
	err := r.db.FetchOne(ctx, `SELECT transaction_id, category_id, parent_category_id
		FROM transaction_categories WHERE transaction_id = ?`, transactionID).
		Scan(&tc.TransactionID, &tc.CategoryID, &parent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting category link: %w", err)
	}
	tc.ParentCategoryID = parent.Int64
	return &tc, nil
}
