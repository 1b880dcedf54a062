// Package export writes stored transactions out as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/dates"
	"github.com/spendlens/spendlens/internal/model"
)

// Header is the CSV header of an export.
const Header = "id,account_number,date,description1,description2,description3,debit,credit,balance,currency,transaction_type,category,grouping_status"

const (
	numFields  = 13
	colID      = 0
	colAccount = 1
	colDate    = 2
	colDesc1   = 3
	colDesc2   = 4
	colDesc3   = 5
	colDebit   = 6
	colCredit  = 7
	colBalance = 8
	colCurr    = 9
	colType    = 10
	colCat     = 11
	colStatus  = 12
)

// CategoryNamer renders a category id for display.
type CategoryNamer interface {
	Path(id int64) string
}

// WriteTransactions writes txns with a header row.
func WriteTransactions(w io.Writer, txns []model.Transaction, names CategoryNamer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range txns {
		if err := cw.Write(MarshalTransaction(tx, names)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row. names may be nil.
func MarshalTransaction(tx model.Transaction, names CategoryNamer) []string {
	row := make([]string, numFields)
	row[colID] = strconv.FormatInt(tx.ID, 10)
	row[colAccount] = tx.AccountNumber
	row[colDate] = tx.TransactionDate
	row[colDesc1] = tx.Description1
	row[colDesc2] = tx.Description2
	row[colDesc3] = tx.Description3
	row[colDebit] = formatAmount(tx.DebitAmount)
	row[colCredit] = formatAmount(tx.CreditAmount)
	row[colBalance] = formatAmount(tx.Balance)
	row[colCurr] = tx.Currency
	row[colType] = tx.TransactionType
	if tx.CategoryID != 0 && names != nil {
		row[colCat] = names.Path(tx.CategoryID)
	}
	row[colStatus] = string(tx.Status())
	return row
}

// formatAmount pads numeric amounts to two places and passes anything else
// through untouched.
func formatAmount(s string) string {
	if s == "" {
		return ""
	}
	d, err := parseAmount(s)
	if err != nil {
		return s
	}
	return d.StringFixed(2)
}

func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}

// Summary totals an export.
type Summary struct {
	Count   int
	Debits  decimal.Decimal
	Credits decimal.Decimal
	// Unparsed counts amounts that were not numbers.
	Unparsed int
}

// Net is credits minus debits.
func (s Summary) Net() decimal.Decimal {
	return s.Credits.Sub(s.Debits)
}

// Summarize totals debits and credits.
func Summarize(txns []model.Transaction) Summary {
	var s Summary
	for _, tx := range txns {
		s.Count++
		if tx.DebitAmount != "" {
			if d, err := parseAmount(tx.DebitAmount); err == nil {
				s.Debits = s.Debits.Add(d)
			} else {
				s.Unparsed++
			}
		}
		if tx.CreditAmount != "" {
			if c, err := parseAmount(tx.CreditAmount); err == nil {
				s.Credits = s.Credits.Add(c)
			} else {
				s.Unparsed++
			}
		}
	}
	return s
}

// FilterByDate keeps transactions dated within [from, to]. A zero bound is
// open. Rows whose date is not canonical are dropped when any bound is set.
func FilterByDate(txns []model.Transaction, from, to time.Time) []model.Transaction {
	if from.IsZero() && to.IsZero() {
		return txns
	}
	var result []model.Transaction
	for _, tx := range txns {
		d, ok := dates.ParseCanonical(tx.TransactionDate)
		if !ok {
			continue
		}
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		result = append(result, tx)
	}
	return result
}
