// Package engine imports bank notifications into the ledger: it parses each
// message, suggests a category and stores the resulting transaction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/smsledger/internal/categorize"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/sms"
	"github.com/google/uuid"
)

// Outcome is what happened to a single imported message.
type Outcome int

// Import outcomes.
const (
	OutcomeImported Outcome = iota
	OutcomeUnrecognized
	OutcomeUnreadable
	OutcomeDuplicate
	OutcomeNearDuplicate
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeImported:
		return "imported"
	case OutcomeUnrecognized:
		return "unrecognized"
	case OutcomeUnreadable:
		return "unreadable"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeNearDuplicate:
		return "near_duplicate"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config holds configuration options for the importer.
//
// A message whose text differs from every stored one is a separate
// notification, even when it resembles a recent entry. Such entries are
// stored and flagged through BatchResult.DuplicateOf; SkipNearDuplicates
// drops them instead.
type Config struct {
	NewID              func() string
	DuplicateWindow    time.Duration
	SkipNearDuplicates bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		NewID:              uuid.NewString,
		DuplicateWindow:    10 * time.Minute,
		SkipNearDuplicates: false,
	}
}

// Importer orchestrates parsing, categorization and persistence.
type Importer struct {
	parser     MessageInspector
	categories CategorySource
	creator    TransactionCreator
	config     Config
}

// New creates an importer with the default configuration.
func New(parser MessageInspector, categories CategorySource, creator TransactionCreator) *Importer {
	return NewWithConfig(parser, categories, creator, DefaultConfig())
}

// NewWithConfig creates an importer with custom configuration.
func NewWithConfig(parser MessageInspector, categories CategorySource, creator TransactionCreator, config Config) *Importer {
	if config.NewID == nil {
		config.NewID = uuid.NewString
	}
	return &Importer{
		parser:     parser,
		categories: categories,
		creator:    creator,
		config:     config,
	}
}

// Import processes one message. Messages that cannot be parsed produce an
// outcome, not an error; errors are reserved for collaborator failures.
func (i *Importer) Import(ctx context.Context, msg model.RawMessage) (Outcome, *model.Transaction, error) {
	cats, err := i.categories.GetCategories(ctx)
	if err != nil {
		return OutcomeFailed, nil, fmt.Errorf("failed to load categories: %w", err)
	}
	r := i.importOne(ctx, msg, cats, false)
	return r.Outcome, r.Transaction, r.Err
}

// Prepare parses and categorizes a message without storing it.
func (i *Importer) Prepare(msg model.RawMessage, cats []model.Category) (sms.Result, *model.Transaction, model.CategorySuggestion) {
	res := i.parser.Inspect(msg)
	if res.Outcome != sms.OutcomeParsed {
		return res, nil, model.CategorySuggestion{}
	}

	suggestion := categorize.Suggest(res.Transaction.MerchantText, "", cats)
	txn := model.NewTransactionFromParsed(res.Transaction, suggestion)
	txn.ID = i.config.NewID()
	return res, &txn, suggestion
}

func (i *Importer) importOne(ctx context.Context, msg model.RawMessage, cats []model.Category, dryRun bool) BatchResult {
	res, txn, suggestion := i.Prepare(msg, cats)
	result := BatchResult{
		Message:     msg,
		Dialect:     res.Dialect,
		Transaction: txn,
		Suggestion:  suggestion,
	}

	switch res.Outcome {
	case sms.OutcomeUnknownDialect:
		result.Outcome = OutcomeUnrecognized
		return result
	case sms.OutcomeUnreadableAmount:
		result.Outcome = OutcomeUnreadable
		return result
	}

	// A placeholder merchant says nothing about the payee, so two such
	// entries are never treated as the same purchase.
	finder, ok := i.creator.(DuplicateFinder)
	if ok && i.config.DuplicateWindow > 0 && !res.Transaction.MerchantFallback {
		dup, err := finder.FindNearDuplicate(ctx, txn, i.config.DuplicateWindow)
		if err != nil {
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("failed to check for near duplicates: %w", err)
			return result
		}
		if dup != nil && dup.Hash == txn.Hash {
			result.Outcome = OutcomeDuplicate
			return result
		}
		if dup != nil {
			slog.Debug("possible duplicate notification",
				"existing_id", dup.ID,
				"merchant", txn.Merchant,
				"amount", txn.Amount.String())
			result.DuplicateOf = dup
			if i.config.SkipNearDuplicates {
				result.Outcome = OutcomeNearDuplicate
				return result
			}
		}
	}

	if dryRun {
		result.Outcome = OutcomeImported
		return result
	}

	if err := i.creator.CreateTransaction(ctx, txn); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			result.Outcome = OutcomeDuplicate
			return result
		}
		result.Outcome = OutcomeFailed
		result.Err = fmt.Errorf("failed to store transaction: %w", err)
		return result
	}

	result.Outcome = OutcomeImported
	return result
}
