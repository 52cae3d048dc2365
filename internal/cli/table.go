package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with thousands separators and a sign for
// its direction, e.g. "-150,000".
func FormatAmount(amount decimal.Decimal, d model.Direction) string {
	sign := "+"
	if d == model.DirectionDebit {
		sign = "-"
	}

	whole := amount.Truncate(0)
	frac := amount.Sub(whole)

	digits := whole.Abs().String()
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if !frac.IsZero() {
		out += strings.TrimPrefix(frac.Abs().String(), "0")
	}
	return out
}

// StyleAmount colors a formatted amount by direction.
func StyleAmount(amount decimal.Decimal, d model.Direction) string {
	s := FormatAmount(amount, d)
	if d == model.DirectionDebit {
		return DebitStyle.Render(s)
	}
	return CreditStyle.Render(s)
}

// CategoryLabel returns the display name for an optional category ID.
func CategoryLabel(id *int, names map[int]string) string {
	if id == nil {
		return "-"
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return "#" + strconv.Itoa(*id)
}

// RenderTransactions writes a table of transactions.
func RenderTransactions(w io.Writer, txns []model.Transaction, categoryNames map[int]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeHeader(tw, "Date", "Amount", "Merchant", "Category", "Bank", "ID"); err != nil {
		return err
	}

	for _, t := range txns {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.OccurredAt.Format("2006-01-02 15:04"),
			FormatAmount(t.Amount, t.Direction),
			t.Merchant,
			CategoryLabel(t.CategoryID, categoryNames),
			t.Dialect.DisplayName(),
			shortID(t.ID),
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// RenderCategories writes a table of categories in order.
func RenderCategories(w io.Writer, cats []model.Category) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeHeader(tw, "#", "ID", "Name"); err != nil {
		return err
	}
	for i, c := range cats {
		if _, err := fmt.Fprintf(tw, "%d\t%d\t%s\n", i, c.ID, c.Name); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeHeader(w io.Writer, columns ...string) error {
	styled := make([]string, len(columns))
	for i, c := range columns {
		styled[i] = TableHeaderStyle.Render(c)
	}
	_, err := fmt.Fprintln(w, strings.Join(styled, "\t"))
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
