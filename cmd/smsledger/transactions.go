package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/ofx"
	"github.com/Veraticus/smsledger/internal/storage"
	"github.com/Veraticus/smsledger/internal/tui"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Inspect and export the ledger",
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(exportTransactionsCmd())
	cmd.AddCommand(reviewTransactionsCmd())
	cmd.AddCommand(setCategoryCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return withStore(cmd, func(store *storage.SQLiteStorage) error {
				txns, err := store.GetTransactions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(txns) == 0 {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("The ledger is empty. Import messages with 'smsledger scan'."))
					return err
				}
				names, err := categoryNames(cmd.Context(), store, txns)
				if err != nil {
					return err
				}
				return cli.RenderTransactions(cmd.OutOrStdout(), txns, names)
			})
		},
	}
	cmd.Flags().Int("limit", 20, "number of transactions to show (0 for all)")
	return cmd
}

// exportRecord is the JSON export shape of a transaction.
type exportRecord struct {
	OccurredAt time.Time `json:"occurred_at"`
	ID         string    `json:"id"`
	Amount     string    `json:"amount"`
	Direction  string    `json:"direction"`
	Merchant   string    `json:"merchant"`
	Bank       string    `json:"bank"`
	Category   string    `json:"category,omitempty"`
	RawText    string    `json:"raw_text"`
}

func exportTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as OFX or JSON",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	cmd.Flags().String("format", "ofx", "export format (ofx, json)")
	cmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
	cmd.Flags().String("from", "", "only transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "only transactions before this date (YYYY-MM-DD)")
	cmd.Flags().String("account", ofx.DefaultAccountID, "OFX account ID")
	return cmd
}

func parseDateFlag(cmd *cobra.Command, name string, fallback time.Time) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid --%s date %q", name, value), common.ErrInvalidInput)
	}
	return t, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	account, _ := cmd.Flags().GetString("account")

	format = strings.ToLower(format)
	if format != "ofx" && format != "json" {
		return common.NewUserError(fmt.Sprintf("unknown format %q (want ofx or json)", format), common.ErrInvalidInput)
	}

	from, err := parseDateFlag(cmd, "from", time.Unix(0, 0))
	if err != nil {
		return err
	}
	to, err := parseDateFlag(cmd, "to", time.Now().AddDate(100, 0, 0))
	if err != nil {
		return err
	}

	return withStore(cmd, func(store *storage.SQLiteStorage) error {
		ctx := cmd.Context()
		txns, err := store.GetTransactionsByDateRange(ctx, from, to)
		if err != nil {
			return err
		}
		names, err := categoryNames(ctx, store, txns)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if output != "-" {
			f, err := os.Create(output) //nolint:gosec // user-chosen output path
			if err != nil {
				return common.NewUserError("cannot create "+output, err)
			}
			defer func() { _ = f.Close() }()
			w = f
		}

		if format == "json" {
			err = writeJSONExport(w, txns, names)
		} else {
			err = ofx.WriteStatement(w, txns, ofx.StatementOptions{AccountID: account, CategoryNames: names})
		}
		if err != nil {
			return err
		}

		if output != "-" {
			_, err = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(txns), output)))
		}
		return err
	})
}

func writeJSONExport(w io.Writer, txns []model.Transaction, names map[int]string) error {
	records := make([]exportRecord, len(txns))
	for i, t := range txns {
		records[i] = exportRecord{
			ID:         t.ID,
			OccurredAt: t.OccurredAt,
			Amount:     t.SignedAmount().String(),
			Direction:  string(t.Direction),
			Merchant:   t.Merchant,
			Bank:       t.Dialect.DisplayName(),
			RawText:    t.RawText,
		}
		if t.CategoryID != nil {
			records[i].Category = names[*t.CategoryID]
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func reviewTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review categories of recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			uncategorized, _ := cmd.Flags().GetBool("uncategorized")

			return withStore(cmd, func(store *storage.SQLiteStorage) error {
				txns, err := store.GetTransactions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				items := reviewItems(txns, uncategorized)
				if len(items) == 0 {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("Nothing to review."))
					return err
				}
				return runReview(cmd.Context(), cmd, store, items)
			})
		},
	}
	cmd.Flags().Int("limit", 50, "number of recent transactions to consider (0 for all)")
	cmd.Flags().Bool("uncategorized", false, "only transactions without a category")
	return cmd
}

func reviewItems(txns []model.Transaction, uncategorizedOnly bool) []tui.Item {
	var items []tui.Item
	for _, t := range txns {
		if uncategorizedOnly && t.CategoryID != nil {
			continue
		}
		items = append(items, tui.Item{Transaction: t})
	}
	return items
}

func setCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-category <transaction-id> <category name | none>",
		Short: "Assign a category to a transaction",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			name := strings.Join(args[1:], " ")
			return withStore(cmd, func(store *storage.SQLiteStorage) error {
				categoryID, err := resolveCategoryName(cmd.Context(), store, name)
				if err != nil {
					return err
				}
				if err := store.SetTransactionCategory(cmd.Context(), id, categoryID); err != nil {
					return fmt.Errorf("failed to set category: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated transaction "+id))
				return err
			})
		},
	}
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Remove a transaction, such as a confirmed repeat notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store *storage.SQLiteStorage) error {
				if err := store.DeleteTransaction(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete transaction: %w", err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted transaction "+args[0]))
				return err
			})
		},
	}
}

func resolveCategoryName(ctx context.Context, store *storage.SQLiteStorage, name string) (*int, error) {
	if strings.EqualFold(name, "none") {
		return nil, nil
	}
	c, err := store.GetCategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, common.NewUserError(fmt.Sprintf("no category named %q", name), common.ErrNotFound)
	}
	return &c.ID, nil
}
