package report

import (
	"context"

	"costmanager/internal/core"
)

// PieSeries totals the items by category in order of first appearance.
func PieSeries(items []core.LineItem) []core.CategoryAmount {
	index := map[string]int{}
	out := make([]core.CategoryAmount, 0)
	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(out)
			index[it.Category] = i
			out = append(out, core.CategoryAmount{Name: it.Category})
		}
		out[i].Value += it.Converted
	}
	return out
}

// BarSeries buckets the items of year into twelve monthly totals.
func BarSeries(items []core.LineItem, year int) []core.MonthAmount {
	out := make([]core.MonthAmount, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, it := range items {
		if it.Date.Year() != year || it.Month < 1 || it.Month > 12 {
			continue
		}
		out[it.Month-1].Total += it.Converted
	}
	return out
}

// Charts builds the category breakdown of one month together with the
// monthly totals of its year.
func (b *Builder) Charts(ctx context.Context, year, month int, target core.Currency) (core.Charts, error) {
	yearly, err := b.BuildYearReport(ctx, year, target)
	if err != nil {
		return core.Charts{}, err
	}

	monthly := make([]core.LineItem, 0)
	for _, it := range yearly.LineItems {
		if it.Month == month {
			monthly = append(monthly, it)
		}
	}

	return core.Charts{
		Year:       year,
		Month:      month,
		Currency:   yearly.Total.Currency,
		ByCategory: PieSeries(monthly),
		ByMonth:    BarSeries(yearly.LineItems, year),
	}, nil
}
