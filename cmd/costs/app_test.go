package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmanager/internal/core"
	"costmanager/internal/rates"
	"costmanager/internal/report"
	"costmanager/internal/services"
	"costmanager/internal/settings"
	"costmanager/internal/storage"
	"costmanager/internal/storage/memory"
)

const defaultURL = "https://rates.example/latest"

type offlineFetcher struct{}

func (offlineFetcher) FetchJSON(context.Context, string) (any, error) {
	return nil, errors.New("offline")
}

type staticFetcher map[string]any

func (f staticFetcher) FetchJSON(_ context.Context, url string) (any, error) {
	if p, ok := f[url]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

var now = time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, fetcher rates.Fetcher) (*app, *bytes.Buffer, *memory.Store) {
	t.Helper()
	store := memory.NewWithClock(func() time.Time { return now })
	dir := rates.NewDirectory()
	out := &bytes.Buffer{}
	return &app{
		costs:    services.NewCostService(store, nil),
		reports:  report.NewBuilder(store, dir),
		settings: settings.NewService(store, rates.NewResolver(fetcher), dir, defaultURL),
		currency: core.USD,
		out:      out,
		now:      func() time.Time { return now },
	}, out, store
}

func TestAddThenReport(t *testing.T) {
	a, out, store := newTestApp(t, offlineFetcher{})
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"add", "-sum", "10", "-currency", "USD", "-category", "Food"}))
	require.NoError(t, a.run(ctx, []string{"add", "-sum", "20,00", "-currency", "gbp", "-category", "Travel", "-description", "taxi"}))
	assert.Contains(t, out.String(), "Saved 20.00 GBP in Travel")

	recs, err := store.QueryByPeriod(ctx, 2024, storage.Month(3))
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"report", "-month", "3"}))
	assert.Contains(t, out.String(), "Costs 2024-03")
	assert.Contains(t, out.String(), "taxi")
	// 10 USD + 20 GBP at the built-in 1.8 GBP per USD.
	assert.Contains(t, out.String(), "Total: "+core.FormatAmount(10+20/1.8)+" USD")
}

func TestAddRejectsBadInput(t *testing.T) {
	a, _, _ := newTestApp(t, offlineFetcher{})
	ctx := context.Background()

	err := a.run(ctx, []string{"add", "-sum", "-4", "-currency", "USD"})
	assert.ErrorIs(t, err, core.ErrInvalidCostInput)

	err = a.run(ctx, []string{"add", "-sum", "4", "-currency", "JPY"})
	assert.ErrorIs(t, err, core.ErrUnsupportedCurrency)

	err = a.run(ctx, []string{"add", "-bogus"})
	assert.ErrorIs(t, err, errUsage)
}

func TestReportEmptyYear(t *testing.T) {
	a, out, _ := newTestApp(t, offlineFetcher{})

	require.NoError(t, a.run(context.Background(), []string{"report", "-year", "2020", "-currency", "EUR"}))
	assert.Contains(t, out.String(), "Costs 2020")
	assert.Contains(t, out.String(), "No costs recorded")
	assert.Contains(t, out.String(), "Total: 0.00 EURO")
}

func TestReportRejectsBadMonth(t *testing.T) {
	a, _, _ := newTestApp(t, offlineFetcher{})
	err := a.run(context.Background(), []string{"report", "-month", "13"})
	assert.ErrorIs(t, err, errUsage)
}

func TestCharts(t *testing.T) {
	a, out, _ := newTestApp(t, offlineFetcher{})
	ctx := context.Background()
	require.NoError(t, a.run(ctx, []string{"add", "-sum", "5", "-category", "Food"}))

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"charts"}))
	assert.Contains(t, out.String(), "By category 2024-03 (USD)")
	assert.Contains(t, out.String(), "Food")
	assert.Contains(t, out.String(), "By month 2024 (USD)")
}

func TestRatesCommands(t *testing.T) {
	custom := "https://custom.example/rates"
	a, out, store := newTestApp(t, staticFetcher{
		defaultURL: map[string]any{"USD": 1, "GBP": 0.8, "EUR": 0.9, "ILS": 3.7},
		custom:     map[string]any{"rates": map[string]any{"USD": 1, "GBP": 0.7, "EURO": 0.95, "ILS": 3.5}},
	})
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"rates"}))
	assert.Contains(t, out.String(), "Source:  "+defaultURL)

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"rates", "set", custom}))
	assert.Contains(t, out.String(), "Source:  "+custom)
	saved, ok, err := store.GetSetting(ctx, settings.RatesURLKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, custom, saved)

	err = a.run(ctx, []string{"rates", "set", "https://missing.example"})
	assert.ErrorIs(t, err, core.ErrInvalidSetting)

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"rates", "reset"}))
	assert.Contains(t, out.String(), "Source:  "+defaultURL)

	assert.ErrorIs(t, a.run(ctx, []string{"rates", "bogus"}), errUsage)
}

func TestUnknownCommand(t *testing.T) {
	a, _, _ := newTestApp(t, offlineFetcher{})
	assert.ErrorIs(t, a.run(context.Background(), []string{"delete"}), errUsage)
	assert.ErrorIs(t, a.run(context.Background(), nil), errUsage)
}
