package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
)

const categoryColumns = `id, name, position, is_active, created_at`

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Position, &c.IsActive, &c.CreatedAt)
	return c, err
}

// GetCategories returns all active categories in suggestion order.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE is_active = 1
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		c, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByName returns the active category with the given name,
// or nil when none exists.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE name = ? AND is_active = 1
	`, strings.TrimSpace(name))
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil signals "not found"
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// GetCategoryByID returns the category with the given ID, active or not.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// CreateCategory appends a category to the end of the ordering. A previously
// deleted category with the same name is reactivated instead.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	var id int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var nextPosition int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position) + 1, 0) FROM categories WHERE is_active = 1`,
		).Scan(&nextPosition); err != nil {
			return fmt.Errorf("failed to get next position: %w", err)
		}

		var active bool
		err := tx.QueryRowContext(ctx,
			`SELECT id, is_active FROM categories WHERE name = ?`, name,
		).Scan(&id, &active)
		switch {
		case err == nil && active:
			return fmt.Errorf("category %q: %w", name, common.ErrDuplicateEntry)
		case err == nil:
			_, err = tx.ExecContext(ctx,
				`UPDATE categories SET is_active = 1, position = ? WHERE id = ?`, nextPosition, id)
			if err != nil {
				return fmt.Errorf("failed to reactivate category: %w", err)
			}
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to check existing category: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, position, is_active) VALUES (?, ?, 1)`, name, nextPosition)
		if err != nil {
			return fmt.Errorf("failed to create category: %w", mapConstraintError(err))
		}
		lastID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get category ID: %w", err)
		}
		id = int(lastID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCategoryByID(ctx, id)
}

// DeleteCategory soft-deletes a category. Transactions keep their reference.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// MoveCategory moves an active category to the given zero-based index in
// the ordering and renumbers the rest. Out-of-range indexes clamp.
func (s *SQLiteStorage) MoveCategory(ctx context.Context, id, index int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	categories, err := s.GetCategories(ctx)
	if err != nil {
		return err
	}

	from := -1
	for i, c := range categories {
		if c.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}

	moved := categories[from]
	categories = append(categories[:from], categories[from+1:]...)
	index = max(0, min(index, len(categories)))
	categories = append(categories[:index], append([]model.Category{moved}, categories[index:]...)...)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE categories SET position = ? WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for pos, c := range categories {
			if _, err := stmt.ExecContext(ctx, pos, c.ID); err != nil {
				return fmt.Errorf("failed to update position of %q: %w", c.Name, err)
			}
		}
		return nil
	})
}

// SeedDefaultCategories creates every category in defaults that is not
// already active, preserving their order. It returns how many were created.
func (s *SQLiteStorage) SeedDefaultCategories(ctx context.Context, defaults []model.Category) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	created := 0
	for _, c := range defaults {
		existing, err := s.GetCategoryByName(ctx, c.Name)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		if _, err := s.CreateCategory(ctx, c.Name); err != nil {
			return created, fmt.Errorf("failed to seed %q: %w", c.Name, err)
		}
		created++
	}
	return created, nil
}
