package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"costmanager/internal/core"
)

const (
	maxBodyBytes         = 64 << 10
	maxCategoryLength    = 100
	maxDescriptionLength = 500
	minYear              = 1970
	maxYear              = 9999
)

// requestError is a malformed query or body that is not a domain error.
type requestError struct {
	Field   string
	Message string
}

func (e *requestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func badRequest(field, msg string) error {
	return &requestError{Field: field, Message: msg}
}

// costRequest is the JSON body of POST /api/costs. Sum accepts a number or
// a string with either decimal separator.
type costRequest struct {
	Sum         json.RawMessage `json:"sum"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

func decodeJSON(r *http.Request, w http.ResponseWriter, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return badRequest("body", "request body too large")
		}
		if errors.Is(err, io.EOF) {
			return badRequest("body", "request body is empty")
		}
		return badRequest("body", "invalid JSON: "+err.Error())
	}
	if dec.More() {
		return badRequest("body", "unexpected data after JSON object")
	}
	return nil
}

// ParseCostRequest decodes and validates a cost draft.
func ParseCostRequest(r *http.Request, w http.ResponseWriter) (core.CostDraft, error) {
	var req costRequest
	if err := decodeJSON(r, w, &req); err != nil {
		return core.CostDraft{}, err
	}

	sum, err := parseSum(req.Sum)
	if err != nil {
		return core.CostDraft{}, err
	}

	currency, err := core.ParseCurrency(req.Currency)
	if err != nil {
		return core.CostDraft{}, core.InvalidCostInput("currency", "unsupported currency "+strconv.Quote(req.Currency))
	}

	category := sanitizeInput(req.Category)
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return core.CostDraft{}, core.InvalidCostInput("category", fmt.Sprintf("must be at most %d characters", maxCategoryLength))
	}
	description := sanitizeInput(req.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return core.CostDraft{}, core.InvalidCostInput("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLength))
	}

	return core.CostDraft{
		Sum:         sum,
		Currency:    currency,
		Category:    category,
		Description: description,
	}, nil
}

func parseSum(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, core.InvalidCostInput("sum", "amount is required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, core.InvalidCostInput("sum", "amount is not a number")
		}
		return core.ParseAmount(s)
	}
	return core.ParseAmount(string(raw))
}

// PeriodParams is a parsed report period.
type PeriodParams struct {
	Year  int
	Month *int
}

// ParsePeriod reads year and month from the query. A missing year means the
// current one; a missing month means the whole year unless requireMonth is
// set, in which case it defaults to the current month.
func ParsePeriod(query url.Values, currentYear, currentMonth int, requireMonth bool) (PeriodParams, error) {
	p := PeriodParams{Year: currentYear}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < minYear || y > maxYear {
			return PeriodParams{}, badRequest("year", fmt.Sprintf("must be a year between %d and %d", minYear, maxYear))
		}
		p.Year = y
	}

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return PeriodParams{}, badRequest("month", "must be between 1 and 12")
		}
		p.Month = &m
	} else if requireMonth {
		m := currentMonth
		p.Month = &m
	}

	return p, nil
}

// ParseCurrencyParam reads the target currency, falling back to def.
func ParseCurrencyParam(query url.Values, def core.Currency) (core.Currency, error) {
	v := strings.TrimSpace(query.Get("currency"))
	if v == "" {
		return def, nil
	}
	return core.ParseCurrency(v)
}

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
