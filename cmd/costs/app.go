package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"costmanager/internal/core"
	"costmanager/internal/report"
	"costmanager/internal/services"
	"costmanager/internal/settings"
)

var errUsage = errors.New("invalid usage")

type app struct {
	costs    *services.CostService
	reports  *report.Builder
	settings *settings.Service
	currency core.Currency
	out      io.Writer
	now      func() time.Time
}

func (a *app) run(ctx context.Context, args []string) error {
	if a.now == nil {
		a.now = time.Now
	}
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "add":
		return a.runAdd(ctx, args[1:])
	case "report":
		return a.runReport(ctx, args[1:])
	case "charts":
		return a.runCharts(ctx, args[1:])
	case "rates":
		return a.runRates(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func (a *app) runAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	sum := fs.String("sum", "", "amount, with dot or comma decimals")
	currency := fs.String("currency", string(a.currency), "currency code")
	category := fs.String("category", "", "category name")
	description := fs.String("description", "", "free text")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	amount, err := core.ParseAmount(*sum)
	if err != nil {
		return err
	}
	code, err := core.ParseCurrency(*currency)
	if err != nil {
		return err
	}

	saved, err := a.costs.AddCost(ctx, core.CostDraft{
		Sum:         amount,
		Currency:    code,
		Category:    *category,
		Description: *description,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderSaved(saved))
	return nil
}

// periodFlags parses -year, -month and -currency. month is nil unless set
// or requireMonth is true.
func (a *app) periodFlags(name string, args []string, requireMonth bool) (int, *int, core.Currency, error) {
	now := a.now()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	year := fs.Int("year", now.Year(), "report year")
	month := fs.Int("month", 0, "report month (1-12), 0 for the whole year")
	currency := fs.String("currency", string(a.currency), "target currency")
	if err := fs.Parse(args); err != nil {
		return 0, nil, "", fmt.Errorf("%w: %v", errUsage, err)
	}

	if *month < 0 || *month > 12 {
		return 0, nil, "", fmt.Errorf("%w: month must be between 1 and 12", errUsage)
	}
	var m *int
	switch {
	case *month != 0:
		m = month
	case requireMonth:
		cur := int(now.Month())
		m = &cur
	}

	code, err := core.ParseCurrency(*currency)
	if err != nil {
		return 0, nil, "", err
	}
	return *year, m, code, nil
}

// loadRates installs the saved rate source. Reports still render with the
// built-in snapshot when it cannot be reached.
func (a *app) loadRates(ctx context.Context) {
	if err := a.settings.Bootstrap(ctx); err != nil {
		slog.WarnContext(ctx, "Using built-in exchange rates", "error", err)
	}
}

func (a *app) runReport(ctx context.Context, args []string) error {
	year, month, currency, err := a.periodFlags("report", args, false)
	if err != nil {
		return err
	}
	a.loadRates(ctx)

	rep, err := a.reports.BuildReport(ctx, year, month, currency)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderReport(rep))
	return nil
}

func (a *app) runCharts(ctx context.Context, args []string) error {
	year, month, currency, err := a.periodFlags("charts", args, true)
	if err != nil {
		return err
	}
	a.loadRates(ctx)

	charts, err := a.reports.Charts(ctx, year, *month, currency)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderCharts(charts))
	return nil
}

func (a *app) runRates(ctx context.Context, args []string) error {
	var (
		st  settings.State
		err error
	)
	switch {
	case len(args) == 0:
		a.loadRates(ctx)
		st, err = a.settings.Current(ctx)
	case args[0] == "set" && len(args) == 2:
		st, err = a.settings.TestAndSave(ctx, args[1])
	case args[0] == "reset" && len(args) == 1:
		st, err = a.settings.ResetToDefault(ctx)
	default:
		return fmt.Errorf("%w: rates [set <url> | reset]", errUsage)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderRates(st))
	return nil
}
