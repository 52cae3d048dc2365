package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Veraticus/smsledger/internal/categorize"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchMessages() []model.RawMessage {
	return []model.RawMessage{
		{Body: starbucksMsg},
		{Body: otpMsg, Sender: "Zalo"},
		{Body: grabMsg},
		{Body: badAmountMsg},
		{Body: starbucksMsg},
		{Body: salaryMsg},
	}
}

func TestImportBatch(t *testing.T) {
	for _, workers := range []int{0, 1, 4, 64} {
		store := newFakeStore(categorize.DefaultCategories())
		imp := New(newParser(), store, store)

		var progress []int
		summary, err := imp.ImportBatch(context.Background(), batchMessages(), BatchOptions{
			Workers:    workers,
			OnProgress: func(done, total int) { progress = append(progress, done); assert.Equal(t, 6, total) },
		})
		require.NoError(t, err)
		require.Len(t, summary.Results, 6)

		for i, r := range summary.Results {
			assert.Equal(t, i, r.Index, "results keep input order")
			assert.Equal(t, batchMessages()[i], r.Message)
		}

		assert.Equal(t, OutcomeUnrecognized, summary.Results[1].Outcome)
		assert.Equal(t, OutcomeUnreadable, summary.Results[3].Outcome)
		assert.Equal(t, model.DialectTechcombank, summary.Results[3].Dialect)

		// One of the two identical messages wins; which one depends on scheduling.
		outcomes := []Outcome{summary.Results[0].Outcome, summary.Results[4].Outcome}
		assert.ElementsMatch(t, []Outcome{OutcomeImported, OutcomeDuplicate}, outcomes)

		s := summary.Stats
		assert.Equal(t, 6, s.Total)
		assert.Equal(t, 3, s.Imported)
		assert.Equal(t, 3, s.Categorized)
		assert.Equal(t, 1, s.Duplicates)
		assert.Equal(t, 1, s.Unrecognized)
		assert.Equal(t, 1, s.Unreadable)
		assert.Zero(t, s.Failed)
		assert.Equal(t, 3, s.ByDialect[model.DialectTechcombank])
		assert.Equal(t, 1, s.ByDialect[model.DialectVietcombank])
		assert.Equal(t, 1, s.ByDialect[model.DialectACB])

		assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, progress)
		assert.Len(t, summary.Imported(), 3)
		assert.Equal(t, 3, store.count())
	}
}

func TestImportBatch_DryRun(t *testing.T) {
	store := newFakeStore(categorize.DefaultCategories())
	imp := New(newParser(), store, store)

	summary, err := imp.ImportBatch(context.Background(), batchMessages(), BatchOptions{DryRun: true, Workers: 2})
	require.NoError(t, err)

	assert.Zero(t, store.count())
	// Without storage, repeated messages are not detected as duplicates.
	assert.Equal(t, 4, summary.Stats.Imported)
	for _, r := range summary.Imported() {
		require.NotNil(t, r.Transaction)
		assert.NotEmpty(t, r.Transaction.ID)
	}
}

func TestImportBatch_Empty(t *testing.T) {
	store := newFakeStore(nil)
	store.categoriesErr = assert.AnError
	imp := New(newParser(), store, store)

	summary, err := imp.ImportBatch(context.Background(), nil, BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.Equal(t, `{"message":"No messages to import"}`, summary.Stats.GetDisplay())
}

func TestImportBatch_CategoriesError(t *testing.T) {
	store := newFakeStore(nil)
	store.categoriesErr = assert.AnError
	imp := New(newParser(), store, store)

	_, err := imp.ImportBatch(context.Background(), batchMessages(), BatchOptions{})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestImportBatch_Cancelled(t *testing.T) {
	store := newFakeStore(categorize.DefaultCategories())
	imp := New(newParser(), store, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := imp.ImportBatch(ctx, batchMessages(), BatchOptions{Workers: 2})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, len(batchMessages()), summary.Stats.Failed)
	assert.Zero(t, store.count())
}

func TestStats_GetDisplay(t *testing.T) {
	s := NewStats()
	s.Add(BatchResult{Outcome: OutcomeImported, Dialect: model.DialectHSBC})
	s.Add(BatchResult{Outcome: OutcomeUnrecognized})
	s.Add(BatchResult{Outcome: OutcomeNearDuplicate, Dialect: model.DialectHSBC})
	s.Add(BatchResult{Outcome: OutcomeImported, DuplicateOf: &model.Transaction{ID: "earlier"}})

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(s.GetDisplay()), &got))
	assert.InDelta(t, 4, got["total"], 0)
	assert.InDelta(t, 2, got["imported"], 0)
	assert.InDelta(t, 1, got["flagged"], 0)
	assert.InDelta(t, 0, got["categorized"], 0)
	assert.InDelta(t, 1, got["near_duplicates"], 0)
	assert.Equal(t, map[string]any{"hsbc": float64(2)}, got["by_dialect"])
}
