package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/dates"
	"github.com/spendlens/spendlens/internal/model"
)

var csvFileTypes = []string{".csv"}

// testMarkers are description fragments that only appear on synthetic rows.
// Kept narrow so real descriptions mentioning "test" survive.
var testMarkers = []string{"DUMMY", "TEST TRANSACTION"}

// table is a fully read CSV export with a header index.
type table struct {
	index map[string]int
	rows  [][]string
}

// readTable reads a whole export. Any framing error fails the file.
func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return &table{index: map[string]int{}}, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		key := normalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return &table{index: index, rows: records[1:]}, nil
}

// get returns the first non-empty value among the header spellings.
func (t *table) get(rec []string, aliases ...string) string {
	for _, alias := range aliases {
		i, ok := t.index[normalizeHeader(alias)]
		if !ok || i >= len(rec) {
			continue
		}
		if v := strings.TrimSpace(rec[i]); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// accept normalizes the row date and applies the shared row filters.
// line is the 1-based CSV line, for logging.
func accept(log zerolog.Logger, importer string, line int, txn *model.NormalizedTransaction) bool {
	txn.TransactionDate = dates.Normalize(txn.TransactionDate)

	if txn.AccountNumber == "" || txn.Description1 == "" || txn.TransactionDate == "" {
		log.Debug().Str("importer", importer).Int("line", line).Msg("Skipping row with missing required fields")
		return false
	}
	if isTestMarker(txn.Description1) {
		log.Debug().Str("importer", importer).Int("line", line).Str("description", txn.Description1).Msg("Skipping test row")
		return false
	}
	return true
}

func isTestMarker(desc string) bool {
	upper := strings.ToUpper(desc)
	for _, marker := range testMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// IsTestMarker reports whether a description matches the synthetic-row denylist.
func IsTestMarker(desc string) bool {
	return isTestMarker(desc)
}

// splitSignedAmount maps a signed amount onto debit/credit. Negative values
// become a debit without the sign; anything else is a credit as given, with
// a negative zero losing its sign. Non-numeric input yields neither.
func splitSignedAmount(s string) (debit, credit string) {
	raw := strings.TrimSpace(s)
	clean := strings.ReplaceAll(raw, ",", "")
	if clean == "" {
		return "", ""
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return "", ""
	}
	if d.IsNegative() {
		return strings.TrimPrefix(clean, "-"), ""
	}
	if d.IsZero() {
		return "", strings.TrimPrefix(raw, "-")
	}
	return "", raw
}

// exclusiveAmounts keeps at most one of debit/credit. A zero side is
// dropped; two non-zero sides are netted.
func exclusiveAmounts(debit, credit string) (string, string) {
	if debit == "" || credit == "" {
		return debit, credit
	}
	d, errD := decimal.NewFromString(strings.ReplaceAll(debit, ",", ""))
	c, errC := decimal.NewFromString(strings.ReplaceAll(credit, ",", ""))
	switch {
	case errD != nil && errC != nil:
		return "", ""
	case errD != nil || d.IsZero():
		return "", credit
	case errC != nil || c.IsZero():
		return debit, ""
	}
	return splitSignedAmount(c.Sub(d.Abs()).StringFixed(2))
}

// matchesFingerprint implements the shared CanHandleFile heuristic.
func matchesFingerprint(header, fileName string, fingerprints []string, nameHint string) bool {
	h := strings.ToLower(header)
	for _, fp := range fingerprints {
		if strings.Contains(h, fp) {
			return true
		}
	}
	return nameHint != "" && strings.Contains(strings.ToLower(fileName), nameHint)
}
