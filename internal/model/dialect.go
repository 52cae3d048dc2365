package model

import "strings"

// BankDialect identifies the SMS notification format a bank message was written in.
type BankDialect string

// Known dialects.
const (
	DialectVietcombank BankDialect = "vietcombank"
	DialectMBBank      BankDialect = "mbbank"
	DialectACB         BankDialect = "acb"
	DialectHSBC        BankDialect = "hsbc"
	DialectTechcombank BankDialect = "techcombank"
)

var dialectNames = map[BankDialect]string{
	DialectVietcombank: "Vietcombank",
	DialectMBBank:      "MBBank",
	DialectACB:         "ACB",
	DialectHSBC:        "HSBC",
	DialectTechcombank: "Techcombank",
}

// Dialects returns every known dialect in detection priority order.
func Dialects() []BankDialect {
	return []BankDialect{
		DialectVietcombank,
		DialectMBBank,
		DialectACB,
		DialectHSBC,
		DialectTechcombank,
	}
}

// ParseDialect resolves a dialect from its identifier or display name.
func ParseDialect(s string) (BankDialect, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Dialects() {
		if string(d) == s || strings.ToLower(dialectNames[d]) == s {
			return d, true
		}
	}
	return "", false
}

// DisplayName returns the bank's brand name.
func (d BankDialect) DisplayName() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return string(d)
}

func (d BankDialect) String() string {
	return string(d)
}
