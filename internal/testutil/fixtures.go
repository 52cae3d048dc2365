package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/shopspring/decimal"
)

var fixtureSeq atomic.Int64

// TransactionOption customizes a fixture transaction.
type TransactionOption func(*model.Transaction)

// WithAmount sets the amount from a decimal string.
func WithAmount(amount string) TransactionOption {
	return func(t *model.Transaction) {
		t.Amount = decimal.RequireFromString(amount)
	}
}

// WithMerchant sets the merchant text.
func WithMerchant(merchant string) TransactionOption {
	return func(t *model.Transaction) {
		t.Merchant = merchant
	}
}

// WithOccurredAt sets the occurrence time.
func WithOccurredAt(at time.Time) TransactionOption {
	return func(t *model.Transaction) {
		t.OccurredAt = at
	}
}

// WithDirection sets the direction.
func WithDirection(d model.Direction) TransactionOption {
	return func(t *model.Transaction) {
		t.Direction = d
	}
}

// WithCategory sets the category ID.
func WithCategory(id int) TransactionOption {
	return func(t *model.Transaction) {
		t.CategoryID = &id
	}
}

// NewTransaction returns a valid, uniquely hashed debit transaction.
func NewTransaction(opts ...TransactionOption) *model.Transaction {
	n := fixtureSeq.Add(1)
	txn := &model.Transaction{
		ID:         fmt.Sprintf("txn-%d", n),
		OccurredAt: time.Date(2025, 3, 5, 9, 15, 0, 0, time.UTC),
		Amount:     decimal.NewFromInt(150000),
		Direction:  model.DirectionDebit,
		Merchant:   "STARBUCKS",
		Dialect:    model.DialectTechcombank,
		RawText:    fmt.Sprintf("fixture message %d", n),
	}
	for _, opt := range opts {
		opt(txn)
	}
	txn.Hash = txn.GenerateHash()
	return txn
}
