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

// TransactionRepository persists imported transactions.
type TransactionRepository struct {
	db  *database.DB
	log zerolog.Logger
}

const transactionColumns = `t.id, t.account_number, t.transaction_date, t.description1, t.description2,
	t.description3, t.debit_amount, t.credit_amount, t.balance, t.currency, t.transaction_type,
	t.local_currency_amount, t.local_currency, t.grouping_status, t.created_at, tc.category_id`

const transactionFrom = ` FROM transactions t
	LEFT JOIN transaction_categories tc ON tc.transaction_id = t.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (model.Transaction, error) {
	var (
		tx         model.Transaction
		status     string
		createdAt  database.Timestamp
		categoryID sql.NullInt64
	)
	err := s.Scan(&tx.ID, &tx.AccountNumber, &tx.TransactionDate, &tx.Description1, &tx.Description2,
		&tx.Description3, &tx.DebitAmount, &tx.CreditAmount, &tx.Balance, &tx.Currency, &tx.TransactionType,
		&tx.LocalCurrencyAmount, &tx.LocalCurrency, &status, &createdAt, &categoryID)
	if err != nil {
		return model.Transaction{}, err
	}
	tx.GroupingStatus = model.GroupingStatus(status)
	tx.CreatedAt = createdAt.Time
	tx.CategoryID = categoryID.Int64
	return tx, nil
}

// Insert stores a new transaction with grouping status none and returns its id.
func (r *TransactionRepository) Insert(ctx context.Context, tx model.NormalizedTransaction) (int64, error) {
	res, err := r.db.Execute(ctx, `INSERT INTO transactions (
		account_number, transaction_date, description1, description2, description3,
		debit_amount, credit_amount, balance, currency, transaction_type,
		local_currency_amount, local_currency, grouping_status
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		tx.AccountNumber, tx.TransactionDate, tx.Description1, tx.Description2, tx.Description3,
		tx.DebitAmount, tx.CreditAmount, tx.Balance, tx.Currency, tx.TransactionType,
		tx.LocalCurrencyAmount, tx.LocalCurrency, string(model.GroupingNone))
	if err != nil {
		return 0, fmt.Errorf("inserting transaction: %w", err)
	}
	return res.GeneratedID, nil
}

// FindByKey returns the first transaction matching the duplicate key exactly.
func (r *TransactionRepository) FindByKey(ctx context.Context, account, date, description1 string) (*model.Transaction, error) {
	row := r.db.FetchOne(ctx, `SELECT `+transactionColumns+transactionFrom+`
		WHERE t.account_number = ? AND t.transaction_date = ? AND t.description1 = ?
		ORDER BY t.id LIMIT 1`, account, date, description1)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding transaction: %w", err)
	}
	return &tx, nil
}

// Get returns one transaction by id.
func (r *TransactionRepository) Get(ctx context.Context, id int64) (*model.Transaction, error) {
	row := r.db.FetchOne(ctx, `SELECT `+transactionColumns+transactionFrom+` WHERE t.id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting transaction %d: %w", id, err)
	}
	return &tx, nil
}

// List returns transactions newest date first. A limit of 0 means no limit.
func (r *TransactionRepository) List(ctx context.Context, limit, offset int) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + transactionFrom + ` ORDER BY t.transaction_date DESC, t.id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	return r.fetch(ctx, query, args...)
}

// ListUncategorized returns transactions with grouping status none, oldest first.
func (r *TransactionRepository) ListUncategorized(ctx context.Context) ([]model.Transaction, error) {
	return r.fetch(ctx, `SELECT `+transactionColumns+transactionFrom+`
		WHERE t.grouping_status = ? ORDER BY t.id`, string(model.GroupingNone))
}

func (r *TransactionRepository) fetch(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.FetchMany(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var result []model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// Count returns the number of stored transactions.
func (r *TransactionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.FetchOne(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return n, nil
}

// SetGroupingStatus updates how a transaction was categorized.
func (r *TransactionRepository) SetGroupingStatus(ctx context.Context, id int64, status model.GroupingStatus) error {
	res, err := r.db.Execute(ctx, `UPDATE transactions SET grouping_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("setting grouping status: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDate rewrites a stored transaction date.
func (r *TransactionRepository) UpdateDate(ctx context.Context, id int64, date string) error {
	if _, err := r.db.Execute(ctx, `UPDATE transactions SET transaction_date = ? WHERE id = ?`, date, id); err != nil {
		return fmt.Errorf("updating transaction date: %w", err)
	}
	return nil
}

// Delete removes a transaction and its category link.
func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Execute(ctx, `DELETE FROM transaction_categories WHERE transaction_id = ?`, id); err != nil {
		return fmt.Errorf("deleting category link: %w", err)
	}
	if _, err := r.db.Execute(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return nil
}
