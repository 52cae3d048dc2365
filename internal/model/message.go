// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawMessage is an SMS notification as read from the device inbox.
// An empty Sender means the sender identifier was not supplied.
type RawMessage struct {
	Body   string `json:"body"`
	Sender string `json:"sender,omitempty"`
}

// ParsedTransaction is the structured record extracted from a RawMessage.
type ParsedTransaction struct {
	OccurredAt    time.Time
	Amount        decimal.Decimal // never negative; Direction carries the sign
	Direction     Direction
	MerchantText  string
	SourceDialect BankDialect
	RawText       string

	// Set when the dialect's merchant or timestamp sub-pattern did not match
	// and the documented fallback value was used instead.
	MerchantFallback  bool
	TimestampFallback bool
}

// SignedAmount returns the amount negated for debits.
func (p *ParsedTransaction) SignedAmount() decimal.Decimal {
	if p.Direction == DirectionDebit {
		return p.Amount.Neg()
	}
	return p.Amount
}
