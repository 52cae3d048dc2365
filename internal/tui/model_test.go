package tui

import (
	"testing"
	"time"

	"github.com/Veraticus/smsledger/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func testCategories() []model.Category {
	return []model.Category{
		{ID: 10, Name: "Food & Dining"},
		{ID: 20, Name: "Transportation"},
		{ID: 30, Name: "Shopping"},
	}
}

func testItems() []Item {
	return []Item{
		{
			Transaction: model.Transaction{
				ID:         "t1",
				Merchant:   "STARBUCKS",
				Amount:     decimal.NewFromInt(150000),
				Direction:  model.DirectionDebit,
				Dialect:    model.DialectTechcombank,
				OccurredAt: time.Date(2025, 3, 5, 9, 15, 0, 0, time.UTC),
				RawText:    "TK ...1234 -150,000 VND 05/03/25 09:15. Tai STARBUCKS.",
				CategoryID: intPtr(10),
			},
			Keyword: "starbucks",
		},
		{
			Transaction: model.Transaction{
				ID:        "t2",
				Merchant:  "NGUYEN VAN A",
				Amount:    decimal.NewFromInt(500000),
				Direction: model.DirectionCredit,
				Dialect:   model.DialectMBBank,
			},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_AcceptSuggestionAndSkip(t *testing.T) {
	m := NewModel(testItems(), testCategories())
	assert.Equal(t, 0, m.selected, "suggested category preselected")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, isQuit(cmd))
	assert.Equal(t, -1, m.selected, "second item has no suggestion")

	m, cmd = send(t, m, runes("n"))
	assert.True(t, isQuit(cmd))
	assert.True(t, m.Done())
	assert.False(t, m.Quitting())

	decisions := m.Decisions()
	require.Len(t, decisions, 2)
	assert.Equal(t, "t1", decisions[0].TransactionID)
	assert.True(t, decisions[0].Accepted)
	require.NotNil(t, decisions[0].CategoryID)
	assert.Equal(t, 10, *decisions[0].CategoryID)

	assert.Equal(t, "t2", decisions[1].TransactionID)
	assert.False(t, decisions[1].Accepted)
	assert.Nil(t, decisions[1].CategoryID)
}

func TestModel_CycleCategories(t *testing.T) {
	m := NewModel(testItems(), testCategories())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.selected)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, -1, m.selected, "wraps to uncategorized")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.selected)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 2, m.selected)

	m, _ = send(t, m, runes("y"))
	decisions := m.Decisions()
	require.Len(t, decisions, 1)
	require.NotNil(t, decisions[0].CategoryID)
	assert.Equal(t, 30, *decisions[0].CategoryID)
}

func TestModel_AcceptUncategorized(t *testing.T) {
	m := NewModel(testItems(), testCategories())
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, runes("y"))

	decisions := m.Decisions()
	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].Accepted)
	assert.Nil(t, decisions[0].CategoryID)
}

func TestModel_QuitEarly(t *testing.T) {
	m := NewModel(testItems(), testCategories())
	m, cmd := send(t, m, runes("q"))

	assert.True(t, isQuit(cmd))
	assert.True(t, m.Quitting())
	assert.Empty(t, m.Decisions())
	assert.Contains(t, m.View(), "Review stopped after 0 of 2")
}

func TestModel_HelpToggle(t *testing.T) {
	m := NewModel(testItems(), testCategories())
	assert.False(t, m.help.ShowAll)
	m, _ = send(t, m, runes("?"))
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "previous category")
}

func TestModel_View(t *testing.T) {
	m := NewModel(testItems(), testCategories())
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	for _, want := range []string{"Review 1/2", "STARBUCKS", "-150,000 VND", "Techcombank", "Food & Dining", "(suggested)", "starbucks"} {
		assert.Contains(t, view, want)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "suggested: Food & Dining")

	m, _ = send(t, m, runes("y"), runes("y"))
	assert.Contains(t, m.View(), "Reviewed 2 transactions.")
}

func TestModel_Empty(t *testing.T) {
	m := NewModel(nil, testCategories())
	assert.True(t, m.Done())
	assert.True(t, isQuit(m.Init()))
}

func TestDecision_Changed(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		current  *int
		want     bool
	}{
		{name: "skipped", decision: Decision{CategoryID: intPtr(1)}, current: nil, want: false},
		{name: "same category", decision: Decision{Accepted: true, CategoryID: intPtr(1)}, current: intPtr(1), want: false},
		{name: "different category", decision: Decision{Accepted: true, CategoryID: intPtr(2)}, current: intPtr(1), want: true},
		{name: "cleared", decision: Decision{Accepted: true}, current: intPtr(1), want: true},
		{name: "newly set", decision: Decision{Accepted: true, CategoryID: intPtr(1)}, want: true},
		{name: "both empty", decision: Decision{Accepted: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decision.Changed(tt.current))
		})
	}
}
