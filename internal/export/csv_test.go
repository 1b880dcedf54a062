package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/model"
)

type namer map[int64]string

func (n namer) Path(id int64) string { return n[id] }

func txn(id int64, date, desc, debit, credit string) model.Transaction {
	return model.Transaction{
		ID: id,
		NormalizedTransaction: model.NormalizedTransaction{
			AccountNumber:   "ACC",
			TransactionDate: date,
			Description1:    desc,
			DebitAmount:     debit,
			CreditAmount:    credit,
			Currency:        "EUR",
		},
	}
}

func TestWriteTransactions(t *testing.T) {
	a := txn(1, "2025-01-03", "TESCO", "42.1", "")
	a.CategoryID = 7
	a.GroupingStatus = model.GroupingAuto
	b := txn(2, "2025-01-06", "SALARY, ACME", "", "3,200")

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, []model.Transaction{a, b}, namer{7: "Food > Groceries"}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Len(t, records[0], numFields)

	assert.Equal(t, "1", records[1][colID])
	assert.Equal(t, "42.10", records[1][colDebit])
	assert.Equal(t, "Food > Groceries", records[1][colCat])
	assert.Equal(t, "auto", records[1][colStatus])

	assert.Equal(t, "SALARY, ACME", records[2][colDesc1])
	assert.Equal(t, "3200.00", records[2][colCredit])
	assert.Equal(t, "", records[2][colCat])
	assert.Equal(t, "none", records[2][colStatus])
}

func TestMarshalTransaction_KeepsOddAmounts(t *testing.T) {
	row := MarshalTransaction(txn(1, "2025-01-01", "X", "n/a", ""), nil)
	assert.Equal(t, "n/a", row[colDebit])
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.Transaction{
		txn(1, "2025-01-01", "A", "10.50", ""),
		txn(2, "2025-01-02", "B", "4.25", ""),
		txn(3, "2025-01-03", "C", "", "100"),
		txn(4, "2025-01-04", "D", "junk", ""),
	})
	assert.Equal(t, 4, s.Count)
	assert.True(t, s.Debits.Equal(decimal.RequireFromString("14.75")))
	assert.True(t, s.Credits.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "85.25", s.Net().StringFixed(2))
	assert.Equal(t, 1, s.Unparsed)
}

func TestFilterByDate(t *testing.T) {
	all := []model.Transaction{
		txn(1, "2025-01-01", "A", "1", ""),
		txn(2, "2025-01-15", "B", "1", ""),
		txn(3, "2025-02-01", "C", "1", ""),
		txn(4, "01/02/2025", "D", "1", ""),
	}

	assert.Len(t, FilterByDate(all, time.Time{}, time.Time{}), 4)

	from := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	got := FilterByDate(all, from, to)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Description1)

	got = FilterByDate(all, from, time.Time{})
	assert.Len(t, got, 2)
}
