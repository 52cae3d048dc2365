package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/smsledger/internal/categorize"
	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/storage"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage spending categories",
		Long: `Manage the categories transactions are sorted into. Order matters: when
merchant text matches several categories, the first one in the list wins.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(moveCategoryCmd())
	cmd.AddCommand(seedCategoriesCmd())

	return cmd
}

// withStore opens the configured ledger for the duration of fn.
func withStore(cmd *cobra.Command, fn func(*storage.SQLiteStorage) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

func parseCategoryID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("invalid category ID %q", arg), common.ErrInvalidInput)
	}
	return id, nil
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in suggestion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(store *storage.SQLiteStorage) error {
				cats, err := store.GetCategories(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get categories: %w", err)
				}
				if len(cats) == 0 {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render(
						"No categories found. Use 'smsledger categories seed' to add the defaults."))
					return err
				}
				return cli.RenderCategories(cmd.OutOrStdout(), cats)
			})
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category at the end of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return withStore(cmd, func(store *storage.SQLiteStorage) error {
				c, err := store.CreateCategory(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("failed to create category: %w", err)
				}

				msg := fmt.Sprintf("Created category %q (ID: %d)", c.Name, c.ID)
				if _, ok := categorize.GroupFor(c.Name); !ok {
					msg += ". It matches merchants containing its own name only."
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
				return err
			})
		},
	}
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long:  "Delete a category. Transactions keep their assignment; adding the name again restores it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCategoryID(args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, func(store *storage.SQLiteStorage) error {
				if err := store.DeleteCategory(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete category: %w", err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
				return err
			})
		},
	}
}

func moveCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a category to a zero-based position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCategoryID(args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil || pos < 0 {
				return common.NewUserError(fmt.Sprintf("invalid position %q", args[1]), common.ErrInvalidInput)
			}
			return withStore(cmd, func(store *storage.SQLiteStorage) error {
				if err := store.MoveCategory(cmd.Context(), id, pos); err != nil {
					return fmt.Errorf("failed to move category: %w", err)
				}
				cats, err := store.GetCategories(cmd.Context())
				if err != nil {
					return err
				}
				return cli.RenderCategories(cmd.OutOrStdout(), cats)
			})
		},
	}
}

func seedCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add any missing default categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(store *storage.SQLiteStorage) error {
				created, err := store.SeedDefaultCategories(cmd.Context(), categorize.DefaultCategories())
				if err != nil {
					return fmt.Errorf("failed to seed categories: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %d default categories", created)))
				return err
			})
		},
	}
}
