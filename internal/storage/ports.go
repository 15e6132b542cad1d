package storage

import (
	"context"

	"costmanager/internal/core"
)

// Ports implemented by every cost store backend.
type (
	// CostWriter records new costs. AddCost confirms the caller-relevant
	// fields only; InsertCost exposes the full record for internal callers.
	CostWriter interface {
		AddCost(ctx context.Context, draft core.CostDraft) (core.CostDraft, error)
		InsertCost(ctx context.Context, draft core.CostDraft) (core.CostRecord, error)
	}

	// PeriodReader queries costs through the (year, month) index.
	PeriodReader interface {
		// QueryByPeriod returns the costs of one month, or of the whole year
		// when month is nil.
		QueryByPeriod(ctx context.Context, year int, month *int) ([]core.CostRecord, error)
	}

	// SettingsStore is a persisted key-value table.
	SettingsStore interface {
		PutSetting(ctx context.Context, key, value string) error
		// GetSetting reports ok=false for an absent key.
		GetSetting(ctx context.Context, key string) (value string, ok bool, err error)
	}

	CostStore interface {
		CostWriter
		PeriodReader
		SettingsStore
		Close() error
	}
)

// Month returns a pointer to m, for building period queries.
func Month(m int) *int {
	return &m
}
