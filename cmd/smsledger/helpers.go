package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/config"
	"github.com/Veraticus/smsledger/internal/engine"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/sms"
	"github.com/Veraticus/smsledger/internal/storage"
	"github.com/spf13/viper"
)

// loadConfig materializes the configuration read by initConfig.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("invalid configuration", err)
	}
	return cfg, nil
}

// initStorage opens and migrates the configured database.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, common.NewUserError("failed to open database "+cfg.DatabasePath, err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func newParser(cfg *config.Config) *sms.Parser {
	return sms.NewParser(sms.WithLocation(cfg.Location))
}

func newImporter(cfg *config.Config, store *storage.SQLiteStorage) *engine.Importer {
	ecfg := engine.DefaultConfig()
	ecfg.DuplicateWindow = cfg.DuplicateWindow
	ecfg.SkipNearDuplicates = cfg.SkipDuplicates
	return engine.NewWithConfig(newParser(cfg), store, store, ecfg)
}

// loadMessages reads notifications from path, or stdin when path is "-".
func loadMessages(path string) ([]model.RawMessage, error) {
	if path == "-" {
		return cli.ReadMessages(os.Stdin)
	}

	f, err := os.Open(path) //nolint:gosec // user-supplied input file
	if err != nil {
		return nil, common.NewUserError("cannot open "+path, err)
	}
	defer func() { _ = f.Close() }()

	return cli.ReadMessages(f)
}

// categoryNames maps category IDs to names, including inactive ones that
// stored transactions may still reference.
func categoryNames(ctx context.Context, store *storage.SQLiteStorage, txns []model.Transaction) (map[int]string, error) {
	cats, err := store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	for _, t := range txns {
		if t.CategoryID == nil {
			continue
		}
		if _, ok := names[*t.CategoryID]; ok {
			continue
		}
		c, err := store.GetCategoryByID(ctx, *t.CategoryID)
		if err != nil {
			return nil, err
		}
		names[c.ID] = c.Name
	}
	return names, nil
}
