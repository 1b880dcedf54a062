package categorize

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

func TestMatch(t *testing.T) {
	tests := []struct {
		name  string
		ptype model.PatternType
		value string
		desc  string
		want  bool
	}{
		{"exact equal ignoring case", model.PatternExact, "spotify", "SPOTIFY", true},
		{"exact needs full string", model.PatternExact, "SPOTIFY", "SPOTIFY P2B4", false},
		{"contains", model.PatternContains, "tesco", "CARD TESCO STORES", true},
		{"contains miss", model.PatternContains, "lidl", "TESCO", false},
		{"starts with", model.PatternStartsWith, "circle k", "CIRCLE K MAYNOOTH", true},
		{"starts with not prefix", model.PatternStartsWith, "maynooth", "CIRCLE K MAYNOOTH", false},
		{"regex case-insensitive", model.PatternRegex, `^uber\s*\*?eats`, "UBER *EATS DUBLIN", true},
		{"regex miss", model.PatternRegex, `^uber`, "AN UBER", false},
		{"invalid regex never matches", model.PatternRegex, `([unclosed`, "([unclosed", false},
		{"unknown type", model.PatternType("fuzzy"), "x", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.SimilarityPattern{PatternType: tt.ptype, PatternValue: tt.value}
			assert.Equal(t, tt.want, Match(tt.desc, p, zerolog.Nop()))
		})
	}
}

func TestBest_HigherConfidenceWins(t *testing.T) {
	patterns := []model.SimilarityPattern{
		{ID: 1, PatternType: model.PatternContains, PatternValue: "GROCERY", CategoryID: 1, ConfidenceScore: 0.5},
		{ID: 2, PatternType: model.PatternContains, PatternValue: "GROCERY STORE", CategoryID: 2, ConfidenceScore: 0.9},
		{ID: 3, PatternType: model.PatternContains, PatternValue: "RESTAURANT", CategoryID: 3, ConfidenceScore: 1.0},
	}
	matches := Matches("GROCERY STORE PURCHASE", patterns, zerolog.Nop())
	require.Len(t, matches, 2)

	best, ok := Best(matches)
	require.True(t, ok)
	assert.Equal(t, int64(2), best.CategoryID)
}

func TestBest_TieGoesToLowestID(t *testing.T) {
	matches := []model.SimilarityPattern{
		{ID: 9, CategoryID: 90, ConfidenceScore: 0.7},
		{ID: 4, CategoryID: 40, ConfidenceScore: 0.7},
		{ID: 6, CategoryID: 60, ConfidenceScore: 0.7},
	}
	best, ok := Best(matches)
	require.True(t, ok)
	assert.Equal(t, int64(4), best.ID)
	// input untouched
	assert.Equal(t, int64(9), matches[0].ID)
}

func TestBest_Empty(t *testing.T) {
	_, ok := Best(nil)
	assert.False(t, ok)
}

type fixture struct {
	db        *database.DB
	store     *store.Store
	cat       *Categorizer
	food      int64
	groceries int64
	dining    int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db := database.OpenTest(t)
	s := store.New(db, zerolog.Nop())

	food, err := s.Categories.Create(ctx, model.Category{Name: "Food"})
	require.NoError(t, err)
	groceries, err := s.Categories.Create(ctx, model.Category{Name: "Groceries", ParentID: food})
	require.NoError(t, err)
	dining, err := s.Categories.Create(ctx, model.Category{Name: "Dining Out", ParentID: food})
	require.NoError(t, err)

	return fixture{db: db, store: s, cat: New(s, zerolog.Nop()), food: food, groceries: groceries, dining: dining}
}

func (f fixture) insert(t *testing.T, desc string) int64 {
	t.Helper()
	id, err := f.store.Transactions.Insert(context.Background(), model.NormalizedTransaction{
		AccountNumber: "ACC", TransactionDate: "2025-01-03", Description1: desc,
	})
	require.NoError(t, err)
	return id
}

func TestCategorizer_Apply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	patternID, err := f.store.Patterns.Create(ctx, model.SimilarityPattern{
		PatternType: model.PatternContains, PatternValue: "GROCERY", CategoryID: f.groceries,
	})
	require.NoError(t, err)

	txID := f.insert(t, "GROCERY OUTLET")
	catID, ok, err := f.cat.Apply(ctx, txID, "GROCERY OUTLET")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.groceries, catID)

	tx, err := f.store.Transactions.Get(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupingAuto, tx.Status())
	assert.Equal(t, f.groceries, tx.CategoryID)

	tc, err := f.store.Assignments.Get(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, f.food, tc.ParentCategoryID)

	patterns, err := f.store.Patterns.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, patternID, patterns[0].ID)
	assert.Equal(t, 1, patterns[0].UsageCount)

	// A second attempt conflicts on the unique link
	_, _, err = f.cat.Apply(ctx, txID, "GROCERY OUTLET")
	assert.ErrorIs(t, err, store.ErrAlreadyCategorized)
}

func TestCategorizer_NoMatchLeavesTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Patterns.Create(ctx, model.SimilarityPattern{
		PatternType: model.PatternContains, PatternValue: "GROCERY", CategoryID: f.groceries,
	})
	require.NoError(t, err)
	// matches but has nowhere to go
	_, err = f.store.Patterns.Create(ctx, model.SimilarityPattern{
		PatternType: model.PatternContains, PatternValue: "PHARMACY",
	})
	require.NoError(t, err)

	for _, desc := range []string{"BOOKSHOP", "PHARMACY"} {
		txID := f.insert(t, desc)
		_, ok, err := f.cat.Apply(ctx, txID, desc)
		require.NoError(t, err)
		assert.False(t, ok)

		tx, err := f.store.Transactions.Get(ctx, txID)
		require.NoError(t, err)
		assert.Equal(t, model.GroupingNone, tx.Status())
		assert.Zero(t, tx.CategoryID)
	}
}

func TestCategorizer_PatternParentOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Patterns.Create(ctx, model.SimilarityPattern{
		PatternType: model.PatternStartsWith, PatternValue: "BURGER", CategoryID: f.dining, ParentCategoryID: f.groceries,
	})
	require.NoError(t, err)

	txID := f.insert(t, "BURGER KING")
	_, ok, err := f.cat.Apply(ctx, txID, "BURGER KING")
	require.NoError(t, err)
	require.True(t, ok)

	tc, err := f.store.Assignments.Get(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, f.groceries, tc.ParentCategoryID)
}

func TestCategorizer_ManualAssignReplacesAuto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Patterns.Create(ctx, model.SimilarityPattern{
		PatternType: model.PatternContains, PatternValue: "TESCO", CategoryID: f.groceries,
	})
	require.NoError(t, err)

	txID := f.insert(t, "TESCO CAFE")
	_, ok, err := f.cat.Apply(ctx, txID, "TESCO CAFE")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.cat.Assign(ctx, txID, f.dining))

	tx, err := f.store.Transactions.Get(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupingManual, tx.Status())
	assert.Equal(t, f.dining, tx.CategoryID)

	assert.ErrorIs(t, f.cat.Assign(ctx, txID, 999), store.ErrNotFound)
	assert.ErrorIs(t, f.cat.Assign(ctx, 999, f.dining), store.ErrNotFound)
}

func TestCategorizer_Preview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Patterns.Create(ctx, model.SimilarityPattern{
		PatternType: model.PatternRegex, PatternValue: `deliveroo|just ?eat`, CategoryID: f.dining, ConfidenceScore: 0.8,
	})
	require.NoError(t, err)

	best, ok, err := f.cat.Preview(ctx, "JUST EAT DUBLIN")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, f.dining, best.CategoryID)

	_, ok, err = f.cat.Preview(ctx, "RENT")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := f.store.Transactions.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func (f fixture) blockUpdates(t *testing.T, table string) {
	t.Helper()
	_, err := f.db.Execute(context.Background(), `CREATE TRIGGER block_`+table+`_update BEFORE UPDATE ON `+table+`
		BEGIN SELECT RAISE(ABORT, 'updates blocked'); END`)
	require.NoError(t, err)
}

func TestCategorizer_StatusFailureDropsLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Patterns.Create(ctx, model.SimilarityPattern{
		PatternType: model.PatternContains, PatternValue: "GROCERY", CategoryID: f.groceries,
	})
	require.NoError(t, err)
	txID := f.insert(t, "GROCERY OUTLET")
	f.blockUpdates(t, "transactions")

	_, ok, err := f.cat.Apply(ctx, txID, "GROCERY OUTLET")
	require.Error(t, err)
	assert.False(t, ok)

	_, err = f.store.Assignments.Get(ctx, txID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	tx, err := f.store.Transactions.Get(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupingNone, tx.Status())
	assert.Zero(t, tx.CategoryID)
}

func TestCategorizer_UsageFailureStillCategorizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Patterns.Create(ctx, model.SimilarityPattern{
		PatternType: model.PatternContains, PatternValue: "GROCERY", CategoryID: f.groceries,
	})
	require.NoError(t, err)
	txID := f.insert(t, "GROCERY OUTLET")
	f.blockUpdates(t, "similarity_patterns")

	catID, ok, err := f.cat.Apply(ctx, txID, "GROCERY OUTLET")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.groceries, catID)

	tx, err := f.store.Transactions.Get(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupingAuto, tx.Status())

	patterns, err := f.store.Patterns.List(ctx)
	require.NoError(t, err)
	assert.Zero(t, patterns[0].UsageCount)
}

func TestMatcher_CompilesEachRegexOnce(t *testing.T) {
	m := newMatcher(zerolog.Nop())
	p := model.SimilarityPattern{PatternType: model.PatternRegex, PatternValue: `^tesco`}
	bad := model.SimilarityPattern{PatternType: model.PatternRegex, PatternValue: `([`}

	assert.True(t, m.match("TESCO STORES", p))
	assert.False(t, m.match("SPAR", p))
	assert.False(t, m.match("([", bad))
	assert.False(t, m.match("([", bad))
	assert.Len(t, m.regexes, 2)
	assert.Nil(t, m.regexes[`([`])

	assert.Empty(t, newMatcher(zerolog.Nop()).regexes)
}
