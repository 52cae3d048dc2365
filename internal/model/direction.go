package model

import "fmt"

// Direction records whether money left (debit) or entered (credit) the account.
type Direction string

// Direction values.
const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// ParseDirection converts a stored direction value.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionDebit, DirectionCredit:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("invalid direction %q", s)
	}
}

// IsExpense reports whether the direction maps to an expense.
func (d Direction) IsExpense() bool {
	return d == DirectionDebit
}

// IsIncome reports whether the direction maps to income.
func (d Direction) IsIncome() bool {
	return d == DirectionCredit
}

// Label returns the ledger-facing name of the direction.
func (d Direction) Label() string {
	if d.IsIncome() {
		return "income"
	}
	return "expense"
}
