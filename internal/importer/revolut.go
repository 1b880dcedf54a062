package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

// Revolut parses Revolut account statement exports. Amounts arrive as one
// signed column.
type Revolut struct {
	log zerolog.Logger
}

// NewRevolut creates the Revolut importer.
func NewRevolut(log zerolog.Logger) *Revolut {
	return &Revolut{log: log}
}

const revolutAccountPrefix = "REVOLUT"

var (
	revolutType        = []string{"Type"}
	revolutProduct     = []string{"Product"}
	revolutDate        = []string{"Completed Date", "Started Date", "Date"}
	revolutDescription = []string{"Description"}
	revolutAmount      = []string{"Amount"}
	revolutFee         = []string{"Fee"}
	revolutCurrency    = []string{"Currency"}
	revolutState       = []string{"State"}
	revolutBalance     = []string{"Balance"}

	revolutFingerprints = []string{"started date", "completed date"}

	// revolutDroppedStates never settled on the account.
	revolutDroppedStates = map[string]bool{"DECLINED": true, "REVERTED": true, "FAILED": true}
)

// Name returns the display name.
func (p *Revolut) Name() string { return "Revolut" }

// Code returns the registry code.
func (p *Revolut) Code() string { return "revolut" }

// SupportedFileTypes returns the accepted file extensions.
func (p *Revolut) SupportedFileTypes() []string { return csvFileTypes }

// CanHandleFile recognizes Revolut headers or a "revolut" file name.
func (p *Revolut) CanHandleFile(header, fileName string) bool {
	return matchesFingerprint(header, fileName, revolutFingerprints, "revolut")
}

// Parse reads a Revolut CSV export.
func (p *Revolut) Parse(r io.Reader) ([]model.NormalizedTransaction, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("parsing Revolut export: %w", err)
	}

	var txns []model.NormalizedTransaction
	for i, rec := range t.rows {
		state := strings.ToUpper(t.get(rec, revolutState...))
		if revolutDroppedStates[state] {
			p.log.Debug().Int("line", i+2).Str("state", state).Msg("Skipping unsettled Revolut row")
			continue
		}

		debit, credit := splitSignedAmount(t.get(rec, revolutAmount...))
		txn := model.NormalizedTransaction{
			AccountNumber:   revolutAccount(t.get(rec, revolutProduct...)),
			TransactionDate: t.get(rec, revolutDate...),
			Description1:    t.get(rec, revolutDescription...),
			Description2:    state,
			Description3:    revolutFeeNote(t.get(rec, revolutFee...)),
			DebitAmount:     debit,
			CreditAmount:    credit,
			Balance:         t.get(rec, revolutBalance...),
			Currency:        t.get(rec, revolutCurrency...),
			TransactionType: t.get(rec, revolutType...),
		}
		if !accept(p.log, p.Code(), i+2, &txn) {
			continue
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func revolutAccount(product string) string {
	product = strings.ToUpper(strings.TrimSpace(product))
	if product == "" {
		return revolutAccountPrefix
	}
	return revolutAccountPrefix + "-" + product
}

func revolutFeeNote(fee string) string {
	d, err := decimal.NewFromString(fee)
	if err != nil || d.IsZero() {
		return ""
	}
	return "Fee " + fee
}
