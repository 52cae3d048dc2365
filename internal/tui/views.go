package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return m.theme.StatusAbort.Render(
			fmt.Sprintf("Review stopped after %d of %d transactions.", len(m.decisions), len(m.items))) + "\n"
	}
	if m.Done() {
		return m.theme.StatusDone.Render(
			fmt.Sprintf("Reviewed %d transactions.", len(m.decisions))) + "\n"
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(fmt.Sprintf("Review %d/%d", m.cursor+1, len(m.items))))
	b.WriteString("\n\n")
	b.WriteString(m.theme.Box.Render(m.transactionView()))
	b.WriteString("\n\n")
	b.WriteString(m.categoryView())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keymap))
	b.WriteString("\n")
	return b.String()
}

func (m Model) transactionView() string {
	item := m.items[m.cursor]
	txn := item.Transaction

	amountStyle := m.theme.Credit
	if txn.Direction.IsExpense() {
		amountStyle = m.theme.Debit
	}

	rows := []string{
		m.row("Merchant", m.theme.Merchant.Render(txn.Merchant)),
		m.row("Amount", amountStyle.Render(cli.FormatAmount(txn.Amount, txn.Direction)+" VND")),
		m.row("When", txn.OccurredAt.Format("2006-01-02 15:04")),
		m.row("Bank", txn.Dialect.DisplayName()),
	}
	if item.Keyword != "" {
		rows = append(rows, m.row("Matched", m.theme.Suggested.Render(fmt.Sprintf("%q", item.Keyword))))
	}
	rows = append(rows, "", m.theme.Raw.Render(m.wrap(txn.RawText)))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.theme.Label.Render(label), value)
}

func (m Model) categoryView() string {
	suggested := m.suggestedIndex()

	label := "Uncategorized"
	if m.selected >= 0 {
		label = m.categories[m.selected].Name
	}

	line := m.theme.Subtitle.Render("Category ") + m.theme.Selected.Render(label)
	switch {
	case suggested >= 0 && m.selected == suggested:
		line += " " + m.theme.Suggested.Render("(suggested)")
	case suggested >= 0:
		line += " " + m.theme.Unselected.Render("suggested: "+m.categories[suggested].Name)
	}
	return line
}

func (m Model) wrap(s string) string {
	if m.width <= 10 {
		return s
	}
	return lipgloss.NewStyle().Width(m.width - 10).Render(s)
}
