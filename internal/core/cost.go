package core

import (
	"math"
	"time"
)

type (
	// CostDraft is what a caller supplies to record a cost, and what the
	// store hands back as confirmation.
	CostDraft struct {
		Sum         float64  `json:"sum"`
		Currency    Currency `json:"currency"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
	}

	// CostRecord is a persisted cost. Year and Month are derived from Date
	// by the store at write time.
	CostRecord struct {
		ID          int64     `json:"id"`
		Sum         float64   `json:"sum"`
		Currency    Currency  `json:"currency"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
		Year        int       `json:"year"`
		Month       int       `json:"month"`
	}
)

func (d CostDraft) Validate() error {
	if math.IsNaN(d.Sum) || math.IsInf(d.Sum, 0) {
		return InvalidCostInput("sum", "must be a finite number")
	}
	if d.Sum <= 0 {
		return InvalidCostInput("sum", "must be greater than zero")
	}
	if !d.Currency.IsSupported() {
		return InvalidCostInput("currency", "unsupported currency "+string(d.Currency))
	}
	return nil
}

// NewCostRecord stamps a draft with its creation instant.
func NewCostRecord(d CostDraft, now time.Time) CostRecord {
	return CostRecord{
		Sum:         d.Sum,
		Currency:    d.Currency,
		Category:    d.Category,
		Description: d.Description,
		Date:        now,
		Year:        now.Year(),
		Month:       int(now.Month()),
	}
}

// Draft returns the caller-relevant fields of the record.
func (r CostRecord) Draft() CostDraft {
	return CostDraft{
		Sum:         r.Sum,
		Currency:    r.Currency,
		Category:    r.Category,
		Description: r.Description,
	}
}
