// Package categorize suggests a spending category for merchant text.
//
// Each candidate category is mapped to a semantic group by its display name
// and the group's keyword set is tested against the merchant text. The first
// candidate, in caller order, with any keyword hit wins. Categories whose
// names map to no group match on their own normalized name.
//
// All tables are immutable after package initialization, so every function
// here is safe for concurrent use.
package categorize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/smsledger/internal/model"
)

// normalize lower-cases s and collapses runs of whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// matchText normalizes merchant text for keyword tests. The padding lets
// keywords that carry a trailing space, such as "pho ", match a word at the
// end of the text.
func matchText(s string) string {
	if s = normalize(s); s == "" {
		return ""
	}
	return " " + s + " "
}

// hasWordPrefix reports whether sub occurs in s at the start of a word.
func hasWordPrefix(s, sub string) bool {
	for offset := 0; ; {
		i := strings.Index(s[offset:], sub)
		if i < 0 {
			return false
		}
		at := offset + i
		if at == 0 {
			return true
		}
		if r, _ := utf8.DecodeLastRuneInString(s[:at]); !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
		offset = at + 1
	}
}

// GroupFor resolves the semantic group of a category display name. Rule
// substrings only match at the start of a word, so "Parent Care" is not
// housing.
func GroupFor(categoryName string) (Group, bool) {
	name := normalize(categoryName)
	if name == "" {
		return "", false
	}
	for _, rule := range nameRules {
		if hasWordPrefix(name, rule.substring) {
			return rule.group, true
		}
	}
	return "", false
}

// KeywordsFor returns the keyword profile of a category display name. A name
// outside every group yields its normalized self; a blank name yields none.
func KeywordsFor(categoryName string) []string {
	if group, ok := GroupFor(categoryName); ok {
		return append([]string(nil), keywordTable[group]...)
	}
	if name := normalize(categoryName); name != "" {
		return []string{name}
	}
	return nil
}

// firstKeyword returns the first keyword of categoryName found in text.
func firstKeyword(text, categoryName string) (string, bool) {
	var keywords []string
	if group, ok := GroupFor(categoryName); ok {
		keywords = keywordTable[group]
	} else if name := normalize(categoryName); name != "" {
		keywords = []string{name}
	}

	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

// Suggest returns the first candidate whose keywords occur in the combined
// merchant and description text. Either text may be empty. The suggestion
// is empty when the text is empty, there are no candidates, or nothing
// matched.
func Suggest(merchantText, description string, candidates []model.Category) model.CategorySuggestion {
	text := matchText(merchantText + " " + description)
	if text == "" || len(candidates) == 0 {
		return model.CategorySuggestion{}
	}

	for _, cat := range candidates {
		kw, ok := firstKeyword(text, cat.Name)
		if !ok {
			continue
		}
		id := cat.ID
		return model.CategorySuggestion{
			CategoryID:   &id,
			CategoryName: cat.Name,
			Keyword:      kw,
		}
	}
	return model.CategorySuggestion{}
}

// Matches reports whether merchantText hits the keyword profile of the
// category named categoryDisplayName.
func Matches(merchantText, categoryDisplayName string) bool {
	text := matchText(merchantText)
	if text == "" {
		return false
	}
	_, ok := firstKeyword(text, categoryDisplayName)
	return ok
}
