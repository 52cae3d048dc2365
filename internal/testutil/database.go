// Package testutil provides shared helpers for tests that need a real
// database or canned ledger data.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/smsledger/internal/categorize"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/storage"
)

// TestDB wraps a migrated in-memory database.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Categories []model.Category
}

// SetupTestDB creates a migrated in-memory database seeded with the named
// categories, in order. With no names it seeds the default category set.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T, names ...string) *TestDB {
	t.Helper()

	store := SetupEmptyDB(t)
	ctx := context.Background()

	if len(names) == 0 {
		if _, err := store.SeedDefaultCategories(ctx, categorize.DefaultCategories()); err != nil {
			t.Fatalf("failed to seed default categories: %v", err)
		}
	} else {
		for _, name := range names {
			if _, err := store.CreateCategory(ctx, name); err != nil {
				t.Fatalf("failed to seed category %q: %v", name, err)
			}
		}
	}

	cats, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("failed to load categories: %v", err)
	}

	return &TestDB{
		Storage:    store,
		Categories: cats,
		t:          t,
	}
}

// SetupEmptyDB creates a migrated in-memory database with no rows.
func SetupEmptyDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return store
}

// MustGetCategory returns the seeded category with the given name or fails the test.
func (db *TestDB) MustGetCategory(name string) model.Category {
	db.t.Helper()
	for _, c := range db.Categories {
		if c.Name == name {
			return c
		}
	}
	db.t.Fatalf("category %q not seeded", name)
	return model.Category{}
}
