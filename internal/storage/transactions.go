package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, hash, occurred_at, amount, direction, merchant, dialect, raw_text, category_id, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (model.Transaction, error) {
	var (
		txn        model.Transaction
		occurredAt int64
		amount     string
		direction  string
		dialect    string
		categoryID sql.NullInt64
	)

	err := row.Scan(&txn.ID, &txn.Hash, &occurredAt, &amount, &direction,
		&txn.Merchant, &dialect, &txn.RawText, &categoryID, &txn.CreatedAt)
	if err != nil {
		return txn, err
	}

	txn.OccurredAt = time.Unix(occurredAt, 0).UTC()
	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return txn, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	if txn.Direction, err = model.ParseDirection(direction); err != nil {
		return txn, err
	}
	d, ok := model.ParseDialect(dialect)
	if !ok {
		return txn, fmt.Errorf("invalid stored dialect %q", dialect)
	}
	txn.Dialect = d
	if categoryID.Valid {
		id := int(categoryID.Int64)
		txn.CategoryID = &id
	}
	return txn, nil
}

func queryTransactions(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Transaction, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

func nullableCategory(id *int) any {
	if id == nil {
		return nil
	}
	return *id
}

// CreateTransaction stores a transaction. A transaction whose hash is
// already stored yields common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, hash, occurred_at, amount, direction, merchant, dialect, raw_text, category_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.ID,
		txn.Hash,
		txn.OccurredAt.Unix(),
		txn.Amount.String(),
		string(txn.Direction),
		txn.Merchant,
		string(txn.Dialect),
		txn.RawText,
		nullableCategory(txn.CategoryID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", mapConstraintError(err))
	}
	return nil
}

// GetTransactionByID returns a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

// GetTransactions returns the most recent transactions first. A limit of
// zero or less returns all of them.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	return queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY occurred_at DESC, created_at DESC, id
		LIMIT ?
	`, limit)
}

// GetTransactionsByDateRange returns transactions that occurred in
// [start, end), oldest first.
func (s *SQLiteStorage) GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, ErrInvalidDateRange
	}

	return queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at, id
	`, start.Unix(), end.Unix())
}

// SetTransactionCategory assigns a category to a transaction. A nil
// categoryID clears it.
func (s *SQLiteStorage) SetTransactionCategory(ctx context.Context, id string, categoryID *int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if categoryID != nil {
		if _, err := s.GetCategoryByID(ctx, *categoryID); err != nil {
			return err
		}
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE id = ?`, nullableCategory(categoryID), id)
	if err != nil {
		return fmt.Errorf("failed to update transaction category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// DeleteTransaction removes a transaction, typically one the user confirmed
// as a repeat of another notification.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// CountTransactions returns the number of stored transactions.
func (s *SQLiteStorage) CountTransactions(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}
