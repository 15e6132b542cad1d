package core

import "time"

// LineItem is one report row: the original cost plus its converted amount.
type LineItem struct {
	ID          int64     `json:"id"`
	Sum         float64   `json:"sum"`
	Currency    Currency  `json:"currency"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Month       int       `json:"month"`
	Day         int       `json:"day"`
	Converted   float64   `json:"converted"`
}

// Total is the converted sum of a report.
type Total struct {
	Currency Currency `json:"currency"`
	Amount   float64  `json:"amount"`
}

// Report is an aggregate view for a year or a single month. Month is nil for
// yearly reports.
type Report struct {
	Year      int        `json:"year"`
	Month     *int       `json:"month,omitempty"`
	LineItems []LineItem `json:"lineItems"`
	Total     Total      `json:"total"`
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthAmount is the converted total of one calendar month.
type MonthAmount struct {
	Month int     `json:"month"`
	Total float64 `json:"total"`
}

// Charts bundles the series behind the pie (month by category) and bar
// (year by month) charts.
type Charts struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"`
	Currency   Currency         `json:"currency"`
	ByCategory []CategoryAmount `json:"byCategory"`
	ByMonth    []MonthAmount    `json:"byMonth"`
}
