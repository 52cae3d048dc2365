// Package sms turns bank SMS notifications into structured transactions.
//
// Each supported bank writes its notifications in its own dialect. The
// parser first detects the dialect from recognition markers in the sender
// and body, then applies that dialect's grammar. The amount is load-bearing:
// if it cannot be read the message is reported as not recognized. Merchant
// and timestamp are best effort and fall back to documented defaults.
//
// A Parser holds no mutable state and is safe for concurrent use.
package sms

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/smsledger/internal/model"
)

// Outcome classifies the result of inspecting a message.
type Outcome int

// Inspection outcomes.
const (
	OutcomeParsed Outcome = iota
	OutcomeUnknownDialect
	OutcomeUnreadableAmount
)

func (o Outcome) String() string {
	switch o {
	case OutcomeParsed:
		return "parsed"
	case OutcomeUnknownDialect:
		return "unknown_dialect"
	case OutcomeUnreadableAmount:
		return "unreadable_amount"
	default:
		return "unknown"
	}
}

// Result is the detailed outcome of Inspect. Transaction is non-nil only
// when Outcome is OutcomeParsed; Dialect is set whenever detection succeeded.
type Result struct {
	Transaction *model.ParsedTransaction
	Dialect     model.BankDialect
	Outcome     Outcome
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the clock used for the timestamp fallback.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the time zone message timestamps are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// Parser extracts transactions from raw bank messages.
type Parser struct {
	now func() time.Time
	loc *time.Location
}

// NewParser creates a parser using the local time zone and the system clock.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Detect returns the first dialect, in priority order, whose markers occur
// in the sender and body.
func Detect(body, sender string) (model.BankDialect, bool) {
	g := detectGrammar(body, sender)
	if g == nil {
		return "", false
	}
	return g.dialect, true
}

func detectGrammar(body, sender string) *grammar {
	haystack := strings.ToUpper(sender + " " + body)
	for i := range grammars {
		if grammars[i].detect(haystack) {
			return &grammars[i]
		}
	}
	return nil
}

// Parse extracts a transaction from msg. It returns false when the dialect
// is unknown or the amount cannot be read; no partial record is returned.
func (p *Parser) Parse(msg model.RawMessage) (*model.ParsedTransaction, bool) {
	res := p.Inspect(msg)
	return res.Transaction, res.Outcome == OutcomeParsed
}

// Inspect is Parse with the reason for a missing result.
func (p *Parser) Inspect(msg model.RawMessage) Result {
	g := detectGrammar(msg.Body, msg.Sender)
	if g == nil {
		return Result{Outcome: OutcomeUnknownDialect}
	}

	amount, direction, amountEnd, ok := g.extractAmount(msg.Body)
	if !ok {
		slog.Debug("bank message amount unreadable", "dialect", g.dialect)
		return Result{Dialect: g.dialect, Outcome: OutcomeUnreadableAmount}
	}

	txn := &model.ParsedTransaction{
		Amount:        amount,
		Direction:     direction,
		SourceDialect: g.dialect,
		RawText:       msg.Body,
	}

	txn.MerchantText = g.extractMerchant(msg.Body, amountEnd)
	if txn.MerchantText == "" {
		txn.MerchantText = g.fallbackMerchant
		txn.MerchantFallback = true
	}

	if ts, ok := g.extractTimestamp(msg.Body, p.loc); ok {
		txn.OccurredAt = ts
	} else {
		txn.OccurredAt = p.now().In(p.loc)
		txn.TimestampFallback = true
	}

	return Result{Transaction: txn, Dialect: g.dialect, Outcome: OutcomeParsed}
}
