package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/smsledger/internal/categorize"
	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/spf13/cobra"
)

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <merchant text>",
		Short: "Suggest a category for merchant text",
		Long: `Match merchant text against the keyword profiles of your categories, in
their configured order, and print the first category that matches.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSuggest,
	}

	cmd.Flags().String("description", "", "additional free-text description")
	cmd.Flags().Bool("defaults", false, "use the default category set instead of the ledger's")

	return cmd
}

func runSuggest(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	useDefaults, _ := cmd.Flags().GetBool("defaults")
	merchant := strings.Join(args, " ")

	var cats []model.Category
	if useDefaults {
		cats = categorize.DefaultCategories()
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := initStorage(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if cats, err = store.GetCategories(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		if len(cats) == 0 {
			return common.NewUserError("no categories yet, run 'smsledger categories seed' first", common.ErrNotFound)
		}
	}

	suggestion := categorize.Suggest(merchant, description, cats)
	w := cmd.OutOrStdout()
	if suggestion.IsEmpty() {
		_, err := fmt.Fprintln(w, cli.FormatWarning("No category matches "+fmt.Sprintf("%q", merchant)))
		return err
	}

	_, err := fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("%s (matched %q)", suggestion.CategoryName, suggestion.Keyword)))
	return err
}
