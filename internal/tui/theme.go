package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style of the review screen.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Label       lipgloss.Style
	Merchant    lipgloss.Style
	Debit       lipgloss.Style
	Credit      lipgloss.Style
	Raw         lipgloss.Style
	Selected    lipgloss.Style
	Suggested   lipgloss.Style
	Unselected  lipgloss.Style
	Box         lipgloss.Style
	StatusDone  lipgloss.Style
	StatusAbort lipgloss.Style
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#2EC4B6")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Width(10),
	Merchant: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Debit: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF8C61")),
	Credit: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7BD389")),
	Raw: lipgloss.NewStyle().
		Italic(true).
		Foreground(lipgloss.Color("#737373")),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#2EC4B6")).
		Foreground(lipgloss.Color("#1a1a1a")).
		Bold(true).
		Padding(0, 1),
	Suggested: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")).
		Italic(true),
	Unselected: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")).
		Padding(0, 1),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(1, 2),
	StatusDone: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")).
		Bold(true),
	StatusAbort: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")).
		Bold(true),
}
