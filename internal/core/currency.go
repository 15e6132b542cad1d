package core

import "strings"

// Currency is one of the supported currency codes.
type Currency string

const (
	USD  Currency = "USD"
	GBP  Currency = "GBP"
	EURO Currency = "EURO"
	ILS  Currency = "ILS"
)

// SupportedCurrencies lists the codes in the order the UI presents them.
var SupportedCurrencies = []Currency{USD, ILS, GBP, EURO}

// RequiredRateKeys is the order in which rate snapshots are validated.
var RequiredRateKeys = []Currency{USD, GBP, EURO, ILS}

func (c Currency) IsSupported() bool {
	switch c {
	case USD, GBP, EURO, ILS:
		return true
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency upper-cases s and maps the ISO code EUR to EURO.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(NormalizeCode(s))
	if !c.IsSupported() {
		return "", UnsupportedCurrency(c, c)
	}
	return c, nil
}

// NormalizeCode applies the code aliasing rules used for both user input and
// upstream rate data.
func NormalizeCode(s string) string {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if upper == "EUR" {
		return string(EURO)
	}
	return upper
}
