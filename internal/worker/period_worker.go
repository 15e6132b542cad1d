package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"costmanager/internal/amqp"
	"costmanager/internal/cache"
	"costmanager/internal/core"
	"costmanager/internal/report"
	"costmanager/internal/storage"
)

// Period identifies one calendar month.
type Period struct {
	Year  int
	Month int
}

// PeriodWorker recomputes the converted total of the month a recorded cost
// belongs to.
type PeriodWorker struct {
	reports  *report.Builder
	currency core.Currency
	totals   *cache.LRU[Period, core.Total]
}

const (
	maxCachedPeriods = 36
	totalTTL         = 6 * time.Hour
)

func NewPeriodWorker(reports *report.Builder, currency core.Currency) *PeriodWorker {
	if currency == "" {
		currency = core.USD
	}
	return &PeriodWorker{
		reports:  reports,
		currency: currency,
		totals:   cache.NewLRU[Period, core.Total](maxCachedPeriods, totalTTL),
	}
}

// HandleCostRecorded processes a single cost recorded message from AMQP.
func (w *PeriodWorker) HandleCostRecorded(ctx context.Context, msg *amqp.CostRecordedMessage) error {
	slog.InfoContext(ctx, "Processing cost recorded message",
		"message_id", msg.MessageID,
		"cost_id", msg.CostID,
		"year", msg.Year,
		"month", msg.Month)

	total, err := w.Refresh(ctx, Period{Year: msg.Year, Month: msg.Month})
	if err != nil {
		return fmt.Errorf("refresh period total: %w", err)
	}

	slog.InfoContext(ctx, "Monthly total refreshed",
		"year", msg.Year,
		"month", msg.Month,
		"currency", total.Currency,
		"amount", core.FormatAmount(total.Amount))
	return nil
}

// Refresh rebuilds the report of p and remembers its total.
func (w *PeriodWorker) Refresh(ctx context.Context, p Period) (core.Total, error) {
	rep, err := w.reports.BuildReport(ctx, p.Year, storage.Month(p.Month), w.currency)
	if err != nil {
		return core.Total{}, err
	}
	w.totals.Set(p, rep.Total)
	return rep.Total, nil
}

// Total returns the last computed total for p, if it has not expired.
func (w *PeriodWorker) Total(p Period) (core.Total, bool) {
	return w.totals.Get(p)
}

// Totals exposes the cache so it can be swept.
func (w *PeriodWorker) Totals() cache.Cleaner {
	return w.totals
}
