// Package report aggregates stored costs into converted reports and chart
// series.
package report

import (
	"context"

	"costmanager/internal/core"
	"costmanager/internal/storage"
)

// Converter converts amounts between supported currencies.
type Converter interface {
	Convert(amount float64, from, to core.Currency) (float64, error)
}

type Builder struct {
	costs storage.PeriodReader
	rates Converter
}

func NewBuilder(costs storage.PeriodReader, rates Converter) *Builder {
	return &Builder{costs: costs, rates: rates}
}

// BuildReport converts every cost of the period to target and sums them.
// An empty target means USD. Reports are always computed from the store and
// the active rate snapshot; nothing is cached.
func (b *Builder) BuildReport(ctx context.Context, year int, month *int, target core.Currency) (core.Report, error) {
	if target == "" {
		target = core.USD
	}
	if !target.IsSupported() {
		return core.Report{}, core.UnsupportedCurrency(target, target)
	}

	records, err := b.costs.QueryByPeriod(ctx, year, month)
	if err != nil {
		return core.Report{}, err
	}

	items := make([]core.LineItem, 0, len(records))
	var total float64
	for _, r := range records {
		converted, err := b.rates.Convert(r.Sum, r.Currency, target)
		if err != nil {
			return core.Report{}, err
		}
		total += converted
		items = append(items, core.LineItem{
			ID:          r.ID,
			Sum:         r.Sum,
			Currency:    r.Currency,
			Category:    r.Category,
			Description: r.Description,
			Date:        r.Date,
			Month:       r.Month,
			Day:         r.Date.Day(),
			Converted:   converted,
		})
	}

	rep := core.Report{
		Year:      year,
		LineItems: items,
		Total:     core.Total{Currency: target, Amount: total},
	}
	if month != nil {
		m := *month
		rep.Month = &m
	}
	return rep, nil
}

// BuildYearReport is BuildReport over all twelve months of year.
func (b *Builder) BuildYearReport(ctx context.Context, year int, target core.Currency) (core.Report, error) {
	return b.BuildReport(ctx, year, nil, target)
}
