package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"costmanager/internal/backend"
	"costmanager/internal/cli"
	applog "costmanager/internal/log"
	"costmanager/internal/rates"
	"costmanager/internal/report"
	"costmanager/internal/settings"
)

// version is set via ldflags.
var version = "dev"

const usage = `Usage: costs <command> [flags]

Commands:
  add       record a cost (-sum, -currency, -category, -description)
  report    print a monthly or yearly report (-year, -month, -currency)
  charts    print category and month totals (-year, -month, -currency)
  rates     show the rate source; "rates set <url>" or "rates reset" to change it
  version   print version and exit
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if os.Args[1] == "version" {
		fmt.Println("costs", version)
		return
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// The CLI never publishes events.
	backendCfg.AMQPURL = ""

	ctx := context.Background()
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer res.Cleanup()

	directory := rates.NewDirectory()
	resolver := rates.NewResolver(rates.NewHTTPFetcher(cfg.RatesFetchTimeout))

	a := &app{
		costs:    res.Costs,
		reports:  report.NewBuilder(res.Store, directory),
		settings: settings.NewService(res.Store, resolver, directory, cfg.DefaultRatesURL),
		currency: cfg.Currency(),
		out:      os.Stdout,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		res.Cleanup()
		os.Exit(1)
	}
}
