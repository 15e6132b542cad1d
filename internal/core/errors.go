package core

import (
	"errors"
	"fmt"
)

// ErrorKind identifies one variant of the domain error taxonomy.
type ErrorKind string

const (
	KindInvalidRateValues   ErrorKind = "invalid_rate_values"
	KindUnsupportedCurrency ErrorKind = "unsupported_currency"
	KindRatesUnavailable    ErrorKind = "rates_unavailable"
	KindStoreNotOpen        ErrorKind = "store_not_open"
	KindStoreUnavailable    ErrorKind = "store_unavailable"
	KindInvalidCostInput    ErrorKind = "invalid_cost_input"
	KindInvalidSetting      ErrorKind = "invalid_setting"
)

// Error is the single error type returned by the core. Only the fields
// relevant to Kind are populated.
type Error struct {
	Kind    ErrorKind
	Message string

	// InvalidRateValues
	Key   string
	Value any

	// UnsupportedCurrency
	From Currency
	To   Currency

	// RatesUnavailable, InvalidSetting
	URL string

	// InvalidCostInput
	Field string

	// StoreNotOpen, StoreUnavailable
	Op string

	Cause error
}

// Sentinels for errors.Is checks. They match any *Error of the same kind.
var (
	ErrInvalidRateValues   = &Error{Kind: KindInvalidRateValues}
	ErrUnsupportedCurrency = &Error{Kind: KindUnsupportedCurrency}
	ErrRatesUnavailable    = &Error{Kind: KindRatesUnavailable}
	ErrStoreNotOpen        = &Error{Kind: KindStoreNotOpen}
	ErrStoreUnavailable    = &Error{Kind: KindStoreUnavailable}
	ErrInvalidCostInput    = &Error{Kind: KindInvalidCostInput}
	ErrInvalidSetting      = &Error{Kind: KindInvalidSetting}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	switch e.Kind {
	case KindInvalidRateValues:
		msg = fmt.Sprintf("%s: key %s has value %v", msg, e.Key, e.Value)
	case KindUnsupportedCurrency:
		msg = fmt.Sprintf("%s: %q -> %q", msg, e.From, e.To)
	case KindInvalidCostInput:
		if e.Field != "" {
			msg = fmt.Sprintf("%s: %s", e.Field, msg)
		}
	case KindStoreNotOpen, KindStoreUnavailable:
		if e.Op != "" {
			msg = fmt.Sprintf("%s (%s)", msg, e.Op)
		}
	case KindRatesUnavailable, KindInvalidSetting:
		if e.URL != "" {
			msg = fmt.Sprintf("%s: %s", msg, e.URL)
		}
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func InvalidRateValues(key string, value any) *Error {
	return &Error{Kind: KindInvalidRateValues, Message: "invalid rate values", Key: key, Value: value}
}

func UnsupportedCurrency(from, to Currency) *Error {
	return &Error{Kind: KindUnsupportedCurrency, Message: "unsupported currency", From: from, To: to}
}

// RatesUnavailable reports that both the candidate and the default source
// failed. cause is the candidate's failure; fallback is the default's.
func RatesUnavailable(url string, cause, fallback error) *Error {
	msg := "exchange rates unavailable"
	if fallback != nil {
		msg = fmt.Sprintf("%s (default source: %v)", msg, fallback)
	}
	return &Error{Kind: KindRatesUnavailable, Message: msg, URL: url, Cause: cause}
}

func StoreNotOpen(op string) *Error {
	return &Error{Kind: KindStoreNotOpen, Message: "store not open", Op: op}
}

func StoreUnavailable(op string, cause error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: "store unavailable", Op: op, Cause: cause}
}

func InvalidCostInput(field, msg string) *Error {
	return &Error{Kind: KindInvalidCostInput, Message: msg, Field: field}
}

func InvalidSetting(url, msg string, cause error) *Error {
	return &Error{Kind: KindInvalidSetting, Message: msg, URL: url, Cause: cause}
}
