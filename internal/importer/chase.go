package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/dates"
	"github.com/spendlens/spendlens/internal/model"
)

// Chase parses Chase bank checking CSV exports.
type Chase struct {
	accountNumber string
	log           zerolog.Logger
}

const (
	chaseDateFormat     = "01/02/2006"
	chaseDefaultAccount = "CHASE"
)

var (
	chaseDate        = []string{"Posting Date", "Transaction Date"}
	chaseDescription = []string{"Description"}
	chaseDetails     = []string{"Details"}
	chaseAmount      = []string{"Amount"}
	chaseType        = []string{"Type"}
	chaseBalance     = []string{"Balance"}
	chaseCheck       = []string{"Check or Slip #"}

	chaseFingerprints = []string{"posting date", "check or slip #"}
)

// NewChase creates the Chase importer. Chase exports carry no account
// column, so rows are stamped with accountNumber (default "CHASE").
func NewChase(log zerolog.Logger, accountNumber string) *Chase {
	if accountNumber == "" {
		accountNumber = chaseDefaultAccount
	}
	return &Chase{accountNumber: accountNumber, log: log}
}

// Name returns the display name.
func (p *Chase) Name() string { return "Chase" }

// Code returns the registry code.
func (p *Chase) Code() string { return "chase" }

// SupportedFileTypes returns the accepted file extensions.
func (p *Chase) SupportedFileTypes() []string { return csvFileTypes }

// CanHandleFile recognizes Chase headers or a "chase" file name.
func (p *Chase) CanHandleFile(header, fileName string) bool {
	return matchesFingerprint(header, fileName, chaseFingerprints, "chase")
}

// Parse reads a Chase CSV and returns normalized transactions.
func (p *Chase) Parse(r io.Reader) ([]model.NormalizedTransaction, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("parsing Chase export: %w", err)
	}

	var txns []model.NormalizedTransaction
	for i, rec := range t.rows {
		debit, credit := splitSignedAmount(t.get(rec, chaseAmount...))
		txn := model.NormalizedTransaction{
			AccountNumber:   p.accountNumber,
			TransactionDate: chaseDateToISO(t.get(rec, chaseDate...)),
			Description1:    t.get(rec, chaseDescription...),
			Description2:    t.get(rec, chaseDetails...),
			Description3:    t.get(rec, chaseCheck...),
			DebitAmount:     debit,
			CreditAmount:    credit,
			Balance:         t.get(rec, chaseBalance...),
			Currency:        "USD",
			TransactionType: t.get(rec, chaseType...),
		}
		if !accept(p.log, p.Code(), i+2, &txn) {
			continue
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// chaseDateToISO reorders Chase's month-first dates before the shared
// day-first normalization sees them.
func chaseDateToISO(s string) string {
	d, err := time.Parse(chaseDateFormat, s)
	if err != nil {
		return s
	}
	return d.Format(dates.CanonicalLayout)
}
