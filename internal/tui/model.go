// Package tui implements the interactive review of freshly imported
// transactions: the user confirms, changes or skips each suggested category.
package tui

import (
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Item is a transaction awaiting review.
type Item struct {
	Transaction model.Transaction
	Keyword     string // keyword behind the suggestion, if any
}

// Decision is the reviewer's verdict on one item. A nil CategoryID on an
// accepted decision leaves the transaction uncategorized.
type Decision struct {
	CategoryID    *int
	TransactionID string
	Accepted      bool
}

// Changed reports whether an accepted decision differs from the category
// the transaction already carries.
func (d Decision) Changed(current *int) bool {
	if !d.Accepted {
		return false
	}
	switch {
	case d.CategoryID == nil && current == nil:
		return false
	case d.CategoryID == nil || current == nil:
		return true
	default:
		return *d.CategoryID != *current
	}
}

// Model holds the review state.
type Model struct {
	theme      Theme
	help       help.Model
	keymap     KeyMap
	items      []Item
	categories []model.Category
	decisions  []Decision
	cursor     int
	selected   int // index into categories; -1 means uncategorized
	width      int
	quitting   bool
}

// NewModel creates a review model over items with the given category choices.
func NewModel(items []Item, categories []model.Category) Model {
	m := Model{
		theme:      DefaultTheme,
		help:       help.New(),
		keymap:     DefaultKeyMap(),
		items:      items,
		categories: categories,
	}
	m.selected = m.suggestedIndex()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if len(m.items) == 0 {
		return tea.Quit
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.Done() {
			return m, tea.Quit
		}
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keymap.Accept):
			return m.decide(true)
		case key.Matches(msg, m.keymap.Skip):
			return m.decide(false)
		case key.Matches(msg, m.keymap.Next):
			m.cycle(1)
		case key.Matches(msg, m.keymap.Previous):
			m.cycle(-1)
		}
	}
	return m, nil
}

func (m Model) decide(accept bool) (tea.Model, tea.Cmd) {
	d := Decision{
		TransactionID: m.items[m.cursor].Transaction.ID,
		Accepted:      accept,
	}
	if accept && m.selected >= 0 {
		id := m.categories[m.selected].ID
		d.CategoryID = &id
	}
	m.decisions = append(m.decisions, d)

	m.cursor++
	if m.Done() {
		return m, tea.Quit
	}
	m.selected = m.suggestedIndex()
	return m, nil
}

// cycle moves the selection through the categories and the uncategorized
// slot, wrapping at both ends.
func (m *Model) cycle(step int) {
	slots := len(m.categories) + 1
	slot := (m.selected + 1 + step + slots) % slots
	m.selected = slot - 1
}

func (m Model) suggestedIndex() int {
	if m.cursor >= len(m.items) {
		return -1
	}
	current := m.items[m.cursor].Transaction.CategoryID
	if current == nil {
		return -1
	}
	for i, c := range m.categories {
		if c.ID == *current {
			return i
		}
	}
	return -1
}

// Done reports whether every item has a decision.
func (m Model) Done() bool {
	return m.cursor >= len(m.items)
}

// Quitting reports whether the reviewer left before finishing.
func (m Model) Quitting() bool {
	return m.quitting
}

// Decisions returns the verdicts made so far, in review order.
func (m Model) Decisions() []Decision {
	return append([]Decision(nil), m.decisions...)
}
