package model

import "time"

// Category is a user-visible spending category.
type Category struct {
	CreatedAt time.Time
	Name      string
	ID        int
	Position  int // caller-defined ordering; lower comes first
	IsActive  bool
}

// CategorySuggestion is the advisory outcome of keyword matching.
// A nil CategoryID means no candidate matched (uncategorized).
type CategorySuggestion struct {
	CategoryID   *int
	CategoryName string
	Keyword      string // the keyword that produced the match
}

// IsEmpty reports whether the suggestion carries no category.
func (s CategorySuggestion) IsEmpty() bool {
	return s.CategoryID == nil
}
