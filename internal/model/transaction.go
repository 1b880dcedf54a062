package model

import "time"

// GroupingStatus records how a stored transaction acquired its category.
type GroupingStatus string

const (
	GroupingManual GroupingStatus = "manual"
	GroupingAuto   GroupingStatus = "auto"
	GroupingNone   GroupingStatus = "none"
)

// NormalizedTransaction is a bank-agnostic row produced by an importer.
type NormalizedTransaction struct {
	AccountNumber       string
	TransactionDate     string // YYYY-MM-DD once normalized
	Description1        string
	Description2        string
	Description3        string
	DebitAmount         string // empty if credit side
	CreditAmount        string // empty if debit side
	Balance             string
	Currency            string
	TransactionType     string
	LocalCurrencyAmount string
	LocalCurrency       string
}

// DuplicateKey returns the fields that identify a transaction for duplicate detection.
func (t NormalizedTransaction) DuplicateKey() [3]string {
	return [3]string{t.AccountNumber, t.TransactionDate, t.Description1}
}

// IsDebit reports whether the row carries a debit amount.
func (t NormalizedTransaction) IsDebit() bool {
	return t.DebitAmount != ""
}

// Transaction is a persisted transaction row.
type Transaction struct {
	NormalizedTransaction

	ID             int64
	GroupingStatus GroupingStatus
	CategoryID     int64 // 0 = uncategorized
	CreatedAt      time.Time
}

// Status returns the grouping status, treating an empty value as none.
func (t Transaction) Status() GroupingStatus {
	if t.GroupingStatus == "" {
		return GroupingNone
	}
	return t.GroupingStatus
}
