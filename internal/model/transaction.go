package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a ledger entry created from a parsed bank message.
type Transaction struct {
	OccurredAt time.Time
	CreatedAt  time.Time
	CategoryID *int
	ID         string
	Hash       string
	Merchant   string
	RawText    string
	Dialect    BankDialect
	Direction  Direction
	Amount     decimal.Decimal
}

// NewTransactionFromParsed builds a ledger entry from a parse result and an
// optional category suggestion. The caller assigns the ID.
func NewTransactionFromParsed(p *ParsedTransaction, s CategorySuggestion) Transaction {
	txn := Transaction{
		OccurredAt: p.OccurredAt,
		Amount:     p.Amount,
		Direction:  p.Direction,
		Merchant:   p.MerchantText,
		Dialect:    p.SourceDialect,
		RawText:    p.RawText,
	}
	if s.CategoryID != nil {
		id := *s.CategoryID
		txn.CategoryID = &id
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

// GenerateHash creates a unique hash for duplicate detection.
// Two copies of the same notification hash identically even when the
// timestamp fell back to the time of parsing.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Dialect,
		t.Direction,
		t.Amount.String(),
		strings.Join(strings.Fields(strings.ToUpper(t.RawText)), " "))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// SignedAmount returns the amount negated for debits.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
