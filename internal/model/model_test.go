package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionStatus(t *testing.T) {
	tests := []struct {
		status GroupingStatus
		want   GroupingStatus
	}{
		{"", GroupingNone},
		{GroupingNone, GroupingNone},
		{GroupingAuto, GroupingAuto},
		{GroupingManual, GroupingManual},
	}
	for _, tt := range tests {
		txn := Transaction{GroupingStatus: tt.status}
		assert.Equal(t, tt.want, txn.Status(), "Status(%q)", tt.status)
	}
}

func TestDuplicateKey(t *testing.T) {
	txn := NormalizedTransaction{
		AccountNumber:   "12345",
		TransactionDate: "2024-12-25",
		Description1:    "TESCO",
		DebitAmount:     "10.00",
	}
	assert.Equal(t, [3]string{"12345", "2024-12-25", "TESCO"}, txn.DuplicateKey())
	assert.True(t, txn.IsDebit())
}

func TestParsePatternType(t *testing.T) {
	for _, s := range []string{"exact", "contains", "starts_with", "regex"} {
		pt, err := ParsePatternType(s)
		require.NoError(t, err)
		assert.Equal(t, PatternType(s), pt)
	}

	_, err := ParsePatternType("fuzzy")
	assert.Error(t, err)
}
