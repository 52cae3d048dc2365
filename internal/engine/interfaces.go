package engine

import (
	"context"
	"time"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/sms"
)

// MessageInspector turns a raw notification into a parse result.
type MessageInspector interface {
	Inspect(msg model.RawMessage) sms.Result
}

// CategorySource supplies the candidate categories in suggestion order.
type CategorySource interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
}

// TransactionCreator persists ledger entries. Implementations return an
// error wrapping common.ErrDuplicateEntry for an already stored hash.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
}

// DuplicateFinder is implemented by creators that can spot the same payment
// reported by a second notification with slightly different text.
type DuplicateFinder interface {
	FindNearDuplicate(ctx context.Context, txn *model.Transaction, window time.Duration) (*model.Transaction, error)
}
