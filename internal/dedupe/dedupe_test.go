package dedupe

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/database"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/store"
)

func TestDetector(t *testing.T) {
	s := store.New(database.OpenTest(t), zerolog.Nop())
	ctx := context.Background()
	d := New(s.Transactions)

	tx := model.NormalizedTransaction{AccountNumber: "ACC", TransactionDate: "2025-01-03", Description1: "TESCO", DebitAmount: "1.00"}

	existing, err := d.FindExisting(ctx, tx)
	require.NoError(t, err)
	assert.Nil(t, existing)

	id, err := s.Transactions.Insert(ctx, tx)
	require.NoError(t, err)

	existing, err = d.FindExisting(ctx, tx)
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, id, existing.ID)

	// Amounts are not part of the key
	other := tx
	other.DebitAmount = "99.00"
	existing, err = d.FindExisting(ctx, other)
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, id, existing.ID)

	tests := []struct {
		name   string
		mutate func(*model.NormalizedTransaction)
	}{
		{"account", func(t *model.NormalizedTransaction) { t.AccountNumber = "ACC2" }},
		{"date", func(t *model.NormalizedTransaction) { t.TransactionDate = "2025-01-04" }},
		{"description case", func(t *model.NormalizedTransaction) { t.Description1 = "Tesco" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tx
			tt.mutate(&c)
			found, err := d.FindExisting(ctx, c)
			require.NoError(t, err)
			assert.Nil(t, found)
		})
	}
}

type failingFinder struct{}

func (failingFinder) FindByKey(context.Context, string, string, string) (*model.Transaction, error) {
	return nil, assert.AnError
}

func TestDetector_PropagatesErrors(t *testing.T) {
	_, err := New(failingFinder{}).FindExisting(context.Background(), model.NormalizedTransaction{})
	assert.ErrorIs(t, err, assert.AnError)
}
