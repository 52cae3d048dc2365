package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/smsledger/internal/categorize"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/sms"
	"github.com/Veraticus/smsledger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	starbucksMsg = "TK ...1234 -150,000 VND 05/03/25 09:15. Tai STARBUCKS. SD: 2,000,000 VND"
	grabMsg      = "VCB: TK 0071000123456 -250,000VND luc 12-03-2025 14:30:05. SD 5,120,000VND. ND: THANH TOAN GRABBIKE"
	salaryMsg    = "ACB: TK 123456789(VND) + 5,000,000 luc 10:20 09/03/2025. So du 15,000,000. GD: LUONG THANG 3"
	otpMsg       = "Your verification code is 482913. Do not share it with anyone."
	badAmountMsg = "TK ...1234 -ABC VND 05/03/25 09:15. Tai STARBUCKS. SD: 2,000,000 VND"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newParser() *sms.Parser {
	return sms.NewParser(
		sms.WithClock(func() time.Time { return fixedNow }),
		sms.WithLocation(time.UTC),
	)
}

// fakeStore is an in-memory CategorySource and TransactionCreator.
type fakeStore struct {
	categoriesErr error
	createErr     error
	byHash        map[string]*model.Transaction
	categories    []model.Category
	created       []string
	mu            sync.Mutex
}

func newFakeStore(cats []model.Category) *fakeStore {
	return &fakeStore{categories: cats, byHash: make(map[string]*model.Transaction)}
}

func (f *fakeStore) GetCategories(_ context.Context) ([]model.Category, error) {
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, txn *model.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byHash[txn.Hash]; ok {
		return fmt.Errorf("hash %s: %w", txn.Hash, common.ErrDuplicateEntry)
	}
	stored := *txn
	f.byHash[txn.Hash] = &stored
	f.created = append(f.created, txn.ID)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byHash)
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestImport(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantOutcome  Outcome
		wantCategory string
		wantStored   bool
	}{
		{name: "end to end", body: starbucksMsg, wantOutcome: OutcomeImported, wantCategory: "Food & Dining", wantStored: true},
		{name: "transport", body: grabMsg, wantOutcome: OutcomeImported, wantCategory: "Transportation", wantStored: true},
		{name: "income", body: salaryMsg, wantOutcome: OutcomeImported, wantCategory: "Salary & Income", wantStored: true},
		{name: "not a bank message", body: otpMsg, wantOutcome: OutcomeUnrecognized},
		{name: "amount unreadable", body: badAmountMsg, wantOutcome: OutcomeUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(categorize.DefaultCategories())
			imp := New(newParser(), store, store)

			outcome, txn, err := imp.Import(context.Background(), model.RawMessage{Body: tt.body})
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, outcome)

			if !tt.wantStored {
				assert.Nil(t, txn)
				assert.Zero(t, store.count())
				return
			}

			require.NotNil(t, txn)
			assert.NotEmpty(t, txn.ID)
			assert.Equal(t, txn.GenerateHash(), txn.Hash)
			assert.Equal(t, 1, store.count())
			require.NotNil(t, txn.CategoryID)
			assert.Equal(t, tt.wantCategory, categoryName(t, *txn.CategoryID))
		})
	}
}

func categoryName(t *testing.T, id int) string {
	t.Helper()
	for _, c := range categorize.DefaultCategories() {
		if c.ID == id {
			return c.Name
		}
	}
	t.Fatalf("no default category with id %d", id)
	return ""
}

func TestImport_EndToEndFields(t *testing.T) {
	store := newFakeStore(categorize.DefaultCategories())
	imp := New(newParser(), store, store)

	_, txn, err := imp.Import(context.Background(), model.RawMessage{Body: starbucksMsg})
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.True(t, decimal.NewFromInt(150000).Equal(txn.Amount))
	assert.Equal(t, model.DirectionDebit, txn.Direction)
	assert.Equal(t, "STARBUCKS", txn.Merchant)
	assert.Equal(t, model.DialectTechcombank, txn.Dialect)
	assert.Equal(t, time.Date(2025, 3, 5, 9, 15, 0, 0, time.UTC), txn.OccurredAt)
	assert.Equal(t, starbucksMsg, txn.RawText)
}

func TestImport_UncategorizedWithoutCandidates(t *testing.T) {
	store := newFakeStore(nil)
	imp := New(newParser(), store, store)

	outcome, txn, err := imp.Import(context.Background(), model.RawMessage{Body: starbucksMsg})
	require.NoError(t, err)
	assert.Equal(t, OutcomeImported, outcome)
	require.NotNil(t, txn)
	assert.Nil(t, txn.CategoryID)
}

func TestImport_DuplicateMessage(t *testing.T) {
	store := newFakeStore(categorize.DefaultCategories())
	imp := New(newParser(), store, store)
	ctx := context.Background()

	outcome, _, err := imp.Import(ctx, model.RawMessage{Body: starbucksMsg})
	require.NoError(t, err)
	require.Equal(t, OutcomeImported, outcome)

	outcome, _, err = imp.Import(ctx, model.RawMessage{Body: starbucksMsg})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	assert.Equal(t, 1, store.count())
}

func TestImport_CollaboratorErrors(t *testing.T) {
	boom := errors.New("disk on fire")

	t.Run("categories", func(t *testing.T) {
		store := newFakeStore(nil)
		store.categoriesErr = boom
		imp := New(newParser(), store, store)

		outcome, _, err := imp.Import(context.Background(), model.RawMessage{Body: starbucksMsg})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, OutcomeFailed, outcome)
	})

	t.Run("create", func(t *testing.T) {
		store := newFakeStore(nil)
		store.createErr = boom
		imp := New(newParser(), store, store)

		outcome, _, err := imp.Import(context.Background(), model.RawMessage{Body: starbucksMsg})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, OutcomeFailed, outcome)
	})
}

func TestImport_NearDuplicateAgainstDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.NewID = sequentialIDs()
	cfg.SkipNearDuplicates = true
	imp := NewWithConfig(newParser(), db.Storage, db.Storage, cfg)

	outcome, first, err := imp.Import(ctx, model.RawMessage{Body: starbucksMsg})
	require.NoError(t, err)
	require.Equal(t, OutcomeImported, outcome)
	assert.Equal(t, db.MustGetCategory("Food & Dining").ID, *first.CategoryID)

	// Same payment, reworded balance line: different hash, same amount and payee.
	resent := "TK ...1234 -150,000 VND 05/03/25 09:17. Tai STARBUCKS. SD: 1,999,000 VND"
	outcome, _, err = imp.Import(ctx, model.RawMessage{Body: resent})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNearDuplicate, outcome)

	outcome, _, err = imp.Import(ctx, model.RawMessage{Body: starbucksMsg})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome, "identical text is an exact duplicate")

	n, err := db.Storage.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestImportBatch_SimilarPurchasesAreStored(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.NewID = sequentialIDs()
	imp := NewWithConfig(newParser(), db.Storage, db.Storage, cfg)

	// Two coffees minutes apart, then two debits without a merchant. Every
	// message carries its own balance, so each is a separate purchase.
	msgs := []model.RawMessage{
		{Body: "TK ...1234 -150,000 VND 05/03/25 09:15. Tai STARBUCKS. SD: 2,000,000 VND"},
		{Body: "TK ...1234 -150,000 VND 05/03/25 09:20. Tai STARBUCKS. SD: 1,850,000 VND"},
		{Body: "TK ...1234 -80,000 VND 05/03/25 10:00. SD: 1,770,000 VND"},
		{Body: "TK ...1234 -80,000 VND 05/03/25 10:05. SD: 1,690,000 VND"},
	}

	summary, err := imp.ImportBatch(ctx, msgs, BatchOptions{Workers: 1})
	require.NoError(t, err)

	for _, r := range summary.Results {
		assert.Equal(t, OutcomeImported, r.Outcome, "message %d", r.Index)
	}
	assert.Equal(t, 4, summary.Stats.Imported)
	assert.Zero(t, summary.Stats.NearDuplicates)

	n, err := db.Storage.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// Only the second coffee resembles an earlier entry; placeholder
	// merchants are never compared.
	flagged := summary.Flagged()
	require.Len(t, flagged, 1)
	assert.Equal(t, 1, flagged[0].Index)
	assert.Equal(t, summary.Results[0].Transaction.ID, flagged[0].DuplicateOf.ID)
	assert.Equal(t, 1, summary.Stats.Flagged)
	assert.Equal(t, sms.FallbackTechcombank, summary.Results[2].Transaction.Merchant)
	assert.Nil(t, summary.Results[3].DuplicateOf)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "imported", OutcomeImported.String())
	assert.Equal(t, "unrecognized", OutcomeUnrecognized.String())
	assert.Equal(t, "unreadable", OutcomeUnreadable.String())
	assert.Equal(t, "duplicate", OutcomeDuplicate.String())
	assert.Equal(t, "near_duplicate", OutcomeNearDuplicate.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
