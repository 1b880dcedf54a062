package importer

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/model"
)

// AIB parses Allied Irish Banks transaction exports. Column spellings vary
// between the online banking and business banking export tools.
type AIB struct {
	log zerolog.Logger
}

// NewAIB creates the AIB importer.
func NewAIB(log zerolog.Logger) *AIB {
	return &AIB{log: log}
}

var (
	aibAccount       = []string{"Posted Account", "Account", "Account Number"}
	aibDate          = []string{"Posted Transactions Date", "Posted Transaction Date", "Transaction Date", "Date"}
	aibDesc1         = []string{"Description1", "Description 1", "Description"}
	aibDesc2         = []string{"Description2", "Description 2"}
	aibDesc3         = []string{"Description3", "Description 3"}
	aibDebit         = []string{"Debit Amount", "Debit"}
	aibCredit        = []string{"Credit Amount", "Credit"}
	aibBalance       = []string{"Balance"}
	aibCurrency      = []string{"Posted Currency", "Currency"}
	aibType          = []string{"Transaction Type", "Type"}
	aibLocalAmount   = []string{"Local Currency Amount"}
	aibLocalCurrency = []string{"Local Currency"}

	aibFingerprints = []string{"posted account", "posted transactions date", "description1"}
)

// Name returns the display name.
func (p *AIB) Name() string { return "AIB" }

// Code returns the registry code.
func (p *AIB) Code() string { return "aib" }

// SupportedFileTypes returns the accepted file extensions.
func (p *AIB) SupportedFileTypes() []string { return csvFileTypes }

// CanHandleFile recognizes AIB headers or an "aib" file name.
func (p *AIB) CanHandleFile(header, fileName string) bool {
	return matchesFingerprint(header, fileName, aibFingerprints, "aib")
}

// Parse reads an AIB CSV export.
func (p *AIB) Parse(r io.Reader) ([]model.NormalizedTransaction, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("parsing AIB export: %w", err)
	}

	var txns []model.NormalizedTransaction
	for i, rec := range t.rows {
		debit, credit := exclusiveAmounts(t.get(rec, aibDebit...), t.get(rec, aibCredit...))
		txn := model.NormalizedTransaction{
			AccountNumber:       t.get(rec, aibAccount...),
			TransactionDate:     t.get(rec, aibDate...),
			Description1:        t.get(rec, aibDesc1...),
			Description2:        t.get(rec, aibDesc2...),
			Description3:        t.get(rec, aibDesc3...),
			DebitAmount:         debit,
			CreditAmount:        credit,
			Balance:             t.get(rec, aibBalance...),
			Currency:            t.get(rec, aibCurrency...),
			TransactionType:     t.get(rec, aibType...),
			LocalCurrencyAmount: t.get(rec, aibLocalAmount...),
			LocalCurrency:       t.get(rec, aibLocalCurrency...),
		}
		if !accept(p.log, p.Code(), i+2, &txn) {
			continue
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
