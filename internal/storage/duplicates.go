package storage

import (
	"context"
	"strings"
	"time"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/agnivade/levenshtein"
)

// MerchantSimilarityThreshold is the minimum similarity for two merchant
// strings to be considered the same payee.
const MerchantSimilarityThreshold = 0.8

// merchantSimilarity scores two merchant strings in [0, 1] using their
// case-insensitive edit distance.
func merchantSimilarity(a, b string) float64 {
	a = strings.Join(strings.Fields(strings.ToUpper(a)), " ")
	b = strings.Join(strings.Fields(strings.ToUpper(b)), " ")
	if a == b {
		return 1
	}

	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

// FindNearDuplicate looks for a stored transaction with the same amount
// and direction, occurring within window of txn, whose merchant is
// similar enough. It returns nil when there is none.
func (s *SQLiteStorage) FindNearDuplicate(ctx context.Context, txn *model.Transaction, window time.Duration) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrNilParameter
	}
	if window < 0 {
		window = -window
	}

	candidates, err := queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE amount = ? AND direction = ?
		  AND occurred_at BETWEEN ? AND ?
		  AND id != ?
		ORDER BY ABS(occurred_at - ?), id
	`,
		txn.Amount.String(),
		string(txn.Direction),
		txn.OccurredAt.Add(-window).Unix(),
		txn.OccurredAt.Add(window).Unix(),
		txn.ID,
		txn.OccurredAt.Unix(),
	)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		if merchantSimilarity(candidates[i].Merchant, txn.Merchant) >= MerchantSimilarityThreshold {
			return &candidates[i], nil
		}
	}
	return nil, nil //nolint:nilnil // nil signals "no near duplicate"
}
