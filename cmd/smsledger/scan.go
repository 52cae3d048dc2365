package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/engine"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/storage"
	"github.com/Veraticus/smsledger/internal/tui"
	"github.com/spf13/cobra"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file.jsonl | ->",
		Short: "Import a batch of exported notifications",
		Long: `Import notifications exported from a phone, one per line. Each line is a
JSON object {"sender": "...", "body": "..."} or a bare message body.
Messages already in the ledger are skipped, so an inbox can be re-scanned.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().Int("workers", 0, "parallel workers (default: import.workers)")
	cmd.Flags().Bool("dry-run", false, "parse and categorize without storing anything")
	cmd.Flags().Bool("review", false, "review suggested categories interactively afterwards")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	workers, _ := cmd.Flags().GetInt("workers")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	review, _ := cmd.Flags().GetBool("review")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = cfg.Workers
	}

	msgs, err := loadMessages(args[0])
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return common.NewUserError("nothing to import in "+args[0], common.ErrNoMessages)
	}

	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := interrupts.HandleInterrupts(cmd.Context(),
		"Messages imported so far are kept. Run scan again to finish; duplicates are skipped.")
	defer stop()

	opts := engine.BatchOptions{Workers: workers, DryRun: dryRun}
	if !noProgress {
		bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(msgs), "Importing notifications...")
		opts.OnProgress = cli.ProgressFunc(bar)
	}

	summary, err := newImporter(cfg, store).ImportBatch(ctx, msgs, opts)
	if summary != nil {
		if printErr := printScanSummary(cmd.OutOrStdout(), summary, dryRun); printErr != nil {
			return printErr
		}
	}
	if err != nil {
		return err
	}

	if review && !dryRun {
		return reviewImported(ctx, cmd, store, summary.Imported())
	}
	return nil
}

func printScanSummary(w io.Writer, summary *engine.BatchSummary, dryRun bool) error {
	s := summary.Stats
	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}

	lines := []string{
		cli.FormatSuccess(fmt.Sprintf("%s %d of %d messages (%d categorized)", verb, s.Imported, s.Total, s.Categorized)),
	}
	if s.Flagged > 0 {
		lines = append(lines, cli.FormatWarning(fmt.Sprintf(
			"%d imported messages resemble an earlier entry; remove confirmed repeats with 'smsledger transactions delete <id>'",
			s.Flagged)))
		for _, r := range summary.Flagged() {
			lines = append(lines, cli.SubtleStyle.Render(fmt.Sprintf("  %s  %s %s  (like %s)",
				r.Transaction.ID, cli.FormatAmount(r.Transaction.Amount, r.Transaction.Direction), r.Transaction.Merchant, r.DuplicateOf.ID)))
		}
	}
	if skipped := s.Duplicates + s.NearDuplicates; skipped > 0 {
		lines = append(lines, cli.FormatInfo(fmt.Sprintf("Skipped %d duplicates (%d near-duplicates)", skipped, s.NearDuplicates)))
	}
	if s.Unrecognized > 0 {
		lines = append(lines, cli.FormatInfo(fmt.Sprintf("Ignored %d messages from unknown senders", s.Unrecognized)))
	}
	if s.Unreadable > 0 {
		lines = append(lines, cli.FormatWarning(fmt.Sprintf("%d bank messages had an unreadable amount", s.Unreadable)))
	}
	if s.Failed > 0 {
		lines = append(lines, cli.FormatError(fmt.Sprintf("%d messages failed", s.Failed)))
	}
	for _, d := range model.Dialects() {
		if n := s.ByDialect[d]; n > 0 {
			lines = append(lines, cli.SubtleStyle.Render(fmt.Sprintf("  %-12s %d", d.DisplayName(), n)))
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func reviewImported(ctx context.Context, cmd *cobra.Command, store *storage.SQLiteStorage, imported []engine.BatchResult) error {
	if len(imported) == 0 {
		return nil
	}

	items := make([]tui.Item, 0, len(imported))
	for _, r := range imported {
		items = append(items, tui.Item{Transaction: *r.Transaction, Keyword: r.Suggestion.Keyword})
	}
	return runReview(ctx, cmd, store, items)
}

// runReview shows the review screen and stores every changed category.
func runReview(ctx context.Context, cmd *cobra.Command, store *storage.SQLiteStorage, items []tui.Item) error {
	cats, err := store.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	decisions, err := tui.Run(ctx, items, cats, tui.RunOptions{
		Input:     os.Stdin,
		Output:    cmd.OutOrStdout(),
		AltScreen: true,
	})
	if err != nil {
		return err
	}

	current := make(map[string]*int, len(items))
	for _, it := range items {
		current[it.Transaction.ID] = it.Transaction.CategoryID
	}

	updated := 0
	for _, d := range decisions {
		if !d.Changed(current[d.TransactionID]) {
			continue
		}
		if err := store.SetTransactionCategory(ctx, d.TransactionID, d.CategoryID); err != nil {
			return fmt.Errorf("failed to update %s: %w", d.TransactionID, err)
		}
		updated++
	}

	slog.Debug("review finished", "decisions", len(decisions), "updated", updated)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %d categories", updated)))
	return err
}
