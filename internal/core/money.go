// Package core provides the domain types shared by the store, the rate
// directory and the report builder.
//
// This file contains parsing of user-entered amounts.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a positive float sum.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// exponents, zero and malformed input are rejected with InvalidCostInput.
// No rounding is applied; the stored sum keeps the entered precision.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, error
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, InvalidCostInput("sum", "amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "+-eE") {
		return 0, InvalidCostInput("sum", "amount must be a plain positive number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, InvalidCostInput("sum", "amount is not a number")
	}
	if !d.IsPositive() {
		return 0, InvalidCostInput("sum", "must be greater than zero")
	}
	return d.InexactFloat64(), nil
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
