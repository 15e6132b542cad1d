package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"costmanager/internal/backend"
	"costmanager/internal/cli"
	apphttp "costmanager/internal/http"
	applog "costmanager/internal/log"
	"costmanager/internal/rates"
	"costmanager/internal/report"
	"costmanager/internal/settings"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}

	directory := rates.NewDirectory()
	resolver := rates.NewResolver(rates.NewHTTPFetcher(cfg.RatesFetchTimeout))
	rateSettings := settings.NewService(res.Store, resolver, directory, cfg.DefaultRatesURL)

	// Without a reachable source the built-in rates stay active.
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 2*cfg.RatesFetchTimeout)
	if err := rateSettings.Bootstrap(bootCtx); err != nil {
		logger.Warn("Exchange rates not loaded, using built-in defaults",
			"error", err, applog.FieldOperation, applog.OpBootstrap)
	}
	bootCancel()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Costs:    res.Costs,
		Reports:  report.NewBuilder(res.Store, directory),
		Settings: rateSettings,
		Ready: func(ctx context.Context) error {
			_, err := res.Store.QueryByPeriod(ctx, time.Now().Year(), nil)
			return err
		},
	}, apphttp.Options{
		Logger:             logger.WithComponent(applog.ComponentHTTP),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		DefaultCurrency:    cfg.Currency(),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting costs server",
		"port", cfg.Port,
		"backend", backendCfg.Type,
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
