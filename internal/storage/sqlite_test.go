package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

var baseTime = time.Date(2025, 3, 5, 9, 15, 0, 0, time.UTC)

// Helper function to create a valid test transaction.
func createTestTransaction(n int, mutate ...func(*model.Transaction)) *model.Transaction {
	txn := &model.Transaction{
		ID:         fmt.Sprintf("txn-%d", n),
		OccurredAt: baseTime.Add(time.Duration(n) * time.Hour),
		Amount:     decimal.NewFromInt(int64(n) * 10000),
		Direction:  model.DirectionDebit,
		Merchant:   fmt.Sprintf("MERCHANT %d", n),
		Dialect:    model.DialectVietcombank,
		RawText:    fmt.Sprintf("VCB: TK 001 -%d VND", n*10000),
	}
	for _, m := range mutate {
		m(txn)
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "a", "b", "ledger.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
		assert.Equal(t, dbPath, store.Path())
	})

	t.Run("in memory", func(t *testing.T) {
		store, err := NewSQLiteStorage(":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
		require.NoError(t, store.Migrate(context.Background()))
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Re-running is a no-op.
	require.NoError(t, store.Migrate(ctx))
	version, err = store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrationsAreSequential(t *testing.T) {
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.Description)
	}
	assert.Equal(t, ExpectedSchemaVersion, migrations[len(migrations)-1].Version)
}

func TestValidation_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // testing nil context handling
	_, err := store.GetCategories(nil)
	assert.ErrorIs(t, err, ErrNilContext)
	//nolint:staticcheck // testing nil context handling
	assert.ErrorIs(t, store.CreateTransaction(nil, createTestTransaction(1)), ErrNilContext)
	//nolint:staticcheck // testing nil context handling
	assert.ErrorIs(t, store.Migrate(nil), ErrNilContext)
}

func TestValidateTransaction(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.Transaction)
		wantErr bool
	}{
		{name: "valid", mutate: func(*model.Transaction) {}},
		{name: "missing id", mutate: func(tx *model.Transaction) { tx.ID = "" }, wantErr: true},
		{name: "missing hash", mutate: func(tx *model.Transaction) { tx.Hash = "" }, wantErr: true},
		{name: "zero time", mutate: func(tx *model.Transaction) { tx.OccurredAt = time.Time{} }, wantErr: true},
		{name: "negative amount", mutate: func(tx *model.Transaction) { tx.Amount = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "bad direction", mutate: func(tx *model.Transaction) { tx.Direction = "sideways" }, wantErr: true},
		{name: "blank merchant", mutate: func(tx *model.Transaction) { tx.Merchant = " " }, wantErr: true},
		{name: "missing dialect", mutate: func(tx *model.Transaction) { tx.Dialect = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := createTestTransaction(1)
			tt.mutate(txn)
			err := validateTransaction(txn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, validateTransaction(nil), ErrNilParameter)
}
