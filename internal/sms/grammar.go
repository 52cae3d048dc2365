package sms

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/smsledger/internal/model"
	"github.com/shopspring/decimal"
)

// grammar is one dialect's recognition markers and extraction patterns.
//
// The amount pattern must expose the named groups "sign" and "value". The
// merchant pattern must expose "merchant". The timestamp pattern names its
// fields "day", "month", "year", "hour", "minute" and optionally "second",
// so field order lives in the pattern itself.
type grammar struct {
	amount           *regexp.Regexp
	merchant         *regexp.Regexp
	timestamp        *regexp.Regexp
	dialect          model.BankDialect
	fallbackMerchant string
	markers          []string
	// dotGrouping treats "1.200.000" as grouped digits. Set for dialects
	// whose currency has no minor unit.
	dotGrouping bool
}

// directionMarkers maps sign markers and verbs to a direction.
var directionMarkers = map[string]model.Direction{
	"-":        model.DirectionDebit,
	"+":        model.DirectionCredit,
	"DEBITED":  model.DirectionDebit,
	"CREDITED": model.DirectionCredit,
}

var (
	numericAmount = regexp.MustCompile(`^\d+(\.\d+)?$`)
	dotGrouped    = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

const merchantTrimSet = " \t.,;:-"

// detect reports whether any marker occurs in the upper-cased haystack.
func (g *grammar) detect(haystack string) bool {
	for _, m := range g.markers {
		if strings.Contains(haystack, m) {
			return true
		}
	}
	return false
}

// extractAmount returns the magnitude, the direction and the offset just
// past the amount. ok is false when the pattern does not match or the
// numeric token is malformed.
func (g *grammar) extractAmount(body string) (amount decimal.Decimal, direction model.Direction, end int, ok bool) {
	loc := g.amount.FindStringSubmatchIndex(body)
	if loc == nil {
		return decimal.Decimal{}, "", 0, false
	}
	group := func(name string) string {
		i := 2 * g.amount.SubexpIndex(name)
		if loc[i] < 0 {
			return ""
		}
		return body[loc[i]:loc[i+1]]
	}

	marker := strings.ToUpper(strings.TrimSpace(group("sign")))
	direction, ok = directionMarkers[marker]
	if !ok {
		return decimal.Decimal{}, "", 0, false
	}

	amount, ok = parseAmount(group("value"), g.dotGrouping)
	if !ok {
		return decimal.Decimal{}, "", 0, false
	}
	return amount, direction, loc[1], true
}

// parseAmount strips grouping punctuation and parses a non-negative decimal.
func parseAmount(token string, dotGrouping bool) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(token)
	if dotGrouping && dotGrouped.MatchString(cleaned) {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if !numericAmount.MatchString(cleaned) {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.IsNegative() {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// extractMerchant returns the cleaned merchant text or "" when absent.
// Every dialect names the merchant after the amount, so the search starts
// at from; delimiters earlier in the body never match.
func (g *grammar) extractMerchant(body string, from int) string {
	m := g.merchant.FindStringSubmatch(body[from:])
	if m == nil {
		return ""
	}
	merchant := strings.ToValidUTF8(m[g.merchant.SubexpIndex("merchant")], "")
	merchant = spaceRun.ReplaceAllString(merchant, " ")
	return strings.Trim(merchant, merchantTrimSet)
}

// extractTimestamp returns the absolute time in loc. ok is false when the
// pattern is absent or the fields do not form a real calendar time.
func (g *grammar) extractTimestamp(body string, loc *time.Location) (time.Time, bool) {
	m := g.timestamp.FindStringSubmatch(body)
	if m == nil {
		return time.Time{}, false
	}

	field := func(name string) (int, bool) {
		idx := g.timestamp.SubexpIndex(name)
		if idx < 0 || m[idx] == "" {
			return 0, false
		}
		v, err := strconv.Atoi(m[idx])
		return v, err == nil
	}

	day, okDay := field("day")
	month, okMonth := field("month")
	year, okYear := field("year")
	hour, okHour := field("hour")
	minute, okMinute := field("minute")
	if !okDay || !okMonth || !okYear || !okHour || !okMinute {
		return time.Time{}, false
	}
	second, _ := field("second")

	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	// time.Date normalizes overflow such as 31/02; reject instead of shifting.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
