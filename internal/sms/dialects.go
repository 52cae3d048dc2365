package sms

import (
	"regexp"

	"github.com/Veraticus/smsledger/internal/model"
)

// Fallback merchant labels used when a dialect's merchant sub-pattern does
// not match.
const (
	FallbackVietcombank = "Vietcombank Transaction"
	FallbackMBBank      = "MBBank Transaction"
	FallbackACB         = "ACB Transaction"
	FallbackHSBC        = "HSBC Transaction"
	FallbackTechcombank = "Techcombank Transaction"
)

// amountValue matches a digit run with grouping punctuation that starts and
// ends on a digit.
const amountValue = `(?P<value>\d(?:[\d,.]*\d)?)`

// grammars lists every dialect in detection priority order. Markers are
// upper-case and must not be shared between dialects. Techcombank goes last
// because its "TK ..." marker is structural rather than a brand name.
var grammars = []grammar{
	{
		// VCB: TK 0071000123456 -250,000VND luc 12-03-2025 14:30:05. SD 5,120,000VND. ND: THANH TOAN GRAB
		dialect:          model.DialectVietcombank,
		markers:          []string{"VIETCOMBANK", "VCB"},
		fallbackMerchant: FallbackVietcombank,
		dotGrouping:      true,
		amount:           regexp.MustCompile(`(?i)(?P<sign>[+-])\s?` + amountValue + `\s?VND\b`),
		merchant:         regexp.MustCompile(`(?i)\bND:\s*(?P<merchant>.+?)(?:\.\s|\.?\s*$|\s+SD\s)`),
		timestamp:        regexp.MustCompile(`\b(?P<day>\d{2})-(?P<month>\d{2})-(?P<year>\d{4})\s+(?P<hour>\d{2}):(?P<minute>\d{2})(?::(?P<second>\d{2}))?\b`),
	},
	{
		// MBBank: TK 0123xxx789 GD: -1,200,000VND 2025/03/07 08:05. SD: 3,400,000VND. ND: CK den NGUYEN VAN A
		dialect:          model.DialectMBBank,
		markers:          []string{"MBBANK", "MB BANK"},
		fallbackMerchant: FallbackMBBank,
		dotGrouping:      true,
		amount:           regexp.MustCompile(`(?i)\bGD:\s*(?P<sign>[+-])\s?` + amountValue + `\s?VND\b`),
		merchant:         regexp.MustCompile(`(?i)\b(?:toi|den)\s+(?P<merchant>.+?)(?:\.\s|\.?\s*$|\s+SD:?\s)`),
		timestamp:        regexp.MustCompile(`\b(?P<year>\d{4})/(?P<month>\d{2})/(?P<day>\d{2})\s+(?P<hour>\d{2}):(?P<minute>\d{2})\b`),
	},
	{
		// ACB: TK 123456789(VND) + 5,000,000 luc 10:20 09/03/2025. So du 15,000,000. GD: LUONG THANG 3
		dialect:          model.DialectACB,
		markers:          []string{"ACB"},
		fallbackMerchant: FallbackACB,
		dotGrouping:      true,
		amount:           regexp.MustCompile(`(?i)\(VND\)\s*(?P<sign>[+-])\s*` + amountValue + `\b`),
		merchant:         regexp.MustCompile(`(?i)\bGD:\s*(?P<merchant>.+?)(?:\.\s|\.?\s*$|\s+So du\b)`),
		timestamp:        regexp.MustCompile(`\b(?P<hour>\d{2}):(?P<minute>\d{2})\s+(?P<day>\d{2})/(?P<month>\d{2})/(?P<year>\d{4})\b`),
	},
	{
		// HSBC: Your account ...5678 has been debited 320,000.00 VND at HIGHLANDS COFFEE on 08/03/2025 07:45.
		dialect:          model.DialectHSBC,
		markers:          []string{"HSBC"},
		fallbackMerchant: FallbackHSBC,
		amount:           regexp.MustCompile(`(?i)\b(?P<sign>debited|credited)\s+(?:with\s+)?` + amountValue + `\s?VND\b`),
		merchant:         regexp.MustCompile(`(?i)\b(?:at|from|to)\s+(?P<merchant>.+?)(?:\s+on\s|\.\s|\.?\s*$)`),
		timestamp:        regexp.MustCompile(`(?i)\bon\s+(?P<day>\d{2})/(?P<month>\d{2})/(?P<year>\d{4})\s+(?P<hour>\d{2}):(?P<minute>\d{2})\b`),
	},
	{
		// TK ...1234 -150,000 VND 05/03/25 09:15. Tai STARBUCKS. SD: 2,000,000 VND
		dialect:          model.DialectTechcombank,
		markers:          []string{"TECHCOMBANK", "TCB", "TK ..."},
		fallbackMerchant: FallbackTechcombank,
		dotGrouping:      true,
		amount:           regexp.MustCompile(`(?i)(?P<sign>[+-])\s?` + amountValue + `\s?VND\b`),
		merchant:         regexp.MustCompile(`(?i)\bTai\s+(?P<merchant>.+?)(?:\.\s|\.?\s*$|\s+SD:?\s|\s+luc\s)`),
		timestamp:        regexp.MustCompile(`\b(?P<day>\d{2})/(?P<month>\d{2})/(?P<year>\d{2})\s+(?P<hour>\d{2}):(?P<minute>\d{2})\b`),
	},
}

// grammarFor returns the grammar registered for d.
func grammarFor(d model.BankDialect) (*grammar, bool) {
	for i := range grammars {
		if grammars[i].dialect == d {
			return &grammars[i], true
		}
	}
	return nil, false
}

// FallbackMerchant returns the placeholder merchant label for d, or "" for
// an unknown dialect.
func FallbackMerchant(d model.BankDialect) string {
	if g, ok := grammarFor(d); ok {
		return g.fallbackMerchant
	}
	return ""
}

// Markers returns a copy of the recognition markers for d.
func Markers(d model.BankDialect) []string {
	g, ok := grammarFor(d)
	if !ok {
		return nil
	}
	return append([]string(nil), g.markers...)
}
