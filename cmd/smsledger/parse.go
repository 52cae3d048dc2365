package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/smsledger/internal/categorize"
	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/sms"
	"github.com/spf13/cobra"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [message]",
		Short: "Parse a single bank notification",
		Long: `Parse one notification and show what would be recorded, without touching
the ledger. The message is read from the arguments, or from stdin when none
are given. The category is suggested from the default category set.`,
		RunE: runParse,
	}

	cmd.Flags().String("sender", "", "SMS sender name (helps detect the bank)")
	cmd.Flags().Bool("json", false, "print the result as JSON")

	return cmd
}

type parseOutput struct {
	OccurredAt        *time.Time `json:"occurred_at,omitempty"`
	Dialect           string     `json:"dialect,omitempty"`
	Outcome           string     `json:"outcome"`
	Amount            string     `json:"amount,omitempty"`
	Direction         string     `json:"direction,omitempty"`
	Merchant          string     `json:"merchant,omitempty"`
	Category          string     `json:"category,omitempty"`
	Keyword           string     `json:"keyword,omitempty"`
	MerchantFallback  bool       `json:"merchant_fallback,omitempty"`
	TimestampFallback bool       `json:"timestamp_fallback,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	sender, _ := cmd.Flags().GetString("sender")
	asJSON, _ := cmd.Flags().GetBool("json")

	body := strings.Join(args, " ")
	if body == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}
		body = strings.TrimSpace(string(data))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res := newParser(cfg).Inspect(model.RawMessage{Body: body, Sender: sender})
	out := parseOutput{
		Outcome: res.Outcome.String(),
		Dialect: string(res.Dialect),
	}

	var suggestion model.CategorySuggestion
	if p := res.Transaction; p != nil {
		suggestion = categorize.Suggest(p.MerchantText, "", categorize.DefaultCategories())
		at := p.OccurredAt
		out.OccurredAt = &at
		out.Amount = p.Amount.String()
		out.Direction = string(p.Direction)
		out.Merchant = p.MerchantText
		out.Category = suggestion.CategoryName
		out.Keyword = suggestion.Keyword
		out.MerchantFallback = p.MerchantFallback
		out.TimestampFallback = p.TimestampFallback
	}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else if err := printParseResult(w, res, suggestion); err != nil {
		return err
	}

	if res.Outcome != sms.OutcomeParsed {
		return common.NewUserError("message not recognized ("+res.Outcome.String()+")", common.ErrInvalidInput)
	}
	return nil
}

func printParseResult(w io.Writer, res sms.Result, suggestion model.CategorySuggestion) error {
	if res.Transaction == nil {
		_, err := fmt.Fprintln(w, cli.FormatWarning("Not a recognized bank notification"))
		return err
	}

	p := res.Transaction
	merchant := p.MerchantText
	if p.MerchantFallback {
		merchant += cli.SubtleStyle.Render(" (fallback)")
	}
	when := p.OccurredAt.Format("2006-01-02 15:04:05")
	if p.TimestampFallback {
		when += cli.SubtleStyle.Render(" (time of parsing)")
	}
	category := "Uncategorized"
	if !suggestion.IsEmpty() {
		category = fmt.Sprintf("%s %s", suggestion.CategoryName, cli.SubtleStyle.Render("("+suggestion.Keyword+")"))
	}

	content := strings.Join([]string{
		"Bank:      " + p.SourceDialect.DisplayName(),
		"Amount:    " + cli.StyleAmount(p.Amount, p.Direction) + " VND",
		"Direction: " + p.Direction.Label(),
		"Merchant:  " + merchant,
		"When:      " + when,
		"Category:  " + category,
	}, "\n")

	_, err := fmt.Fprintln(w, cli.RenderBox("Parsed notification", content))
	return err
}
