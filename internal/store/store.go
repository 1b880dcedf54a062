// Package store holds the repositories over the spendlens schema.
package store

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/database"
)

var (
	// ErrNotFound is returned when a row lookup finds nothing.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyCategorized is returned when a transaction already has a
	// category link.
	ErrAlreadyCategorized = errors.New("transaction already categorized")
)

// Store groups the repositories that share one database.
type Store struct {
	Transactions *TransactionRepository
	Categories   *CategoryRepository
	Patterns     *PatternRepository
	Assignments  *AssignmentRepository
}

// New creates all repositories over db.
func New(db *database.DB, log zerolog.Logger) *Store {
	return &Store{
		Transactions: &TransactionRepository{db: db, log: log.With().Str("repo", "transactions").Logger()},
		Categories:   &CategoryRepository{db: db, log: log.With().Str("repo", "categories").Logger()},
		Patterns:     &PatternRepository{db: db, log: log.With().Str("repo", "patterns").Logger()},
		Assignments:  &AssignmentRepository{db: db, log: log.With().Str("repo", "transaction_categories").Logger()},
	}
}
