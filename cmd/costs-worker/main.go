package main

import (
	"context"
	"errors"
	"os"
	"time"

	"costmanager/internal/amqp"
	"costmanager/internal/cache"
	"costmanager/internal/cli"
	applog "costmanager/internal/log"
	"costmanager/internal/rates"
	"costmanager/internal/report"
	"costmanager/internal/settings"
	"costmanager/internal/storage"
	"costmanager/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting costs-worker", applog.FieldOperation, applog.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.DataBackend != "sqlite" {
		logger.Error("The worker reads the sqlite store", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	store, err := storage.Open(context.Background(), cfg.DBDir, cfg.DBName, uint(cfg.DBVersion))
	if err != nil {
		logger.Error("Failed to open cost store", "error", err, "dir", cfg.DBDir, "name", cfg.DBName)
		os.Exit(1)
	}
	defer store.Close()

	directory := rates.NewDirectory()
	resolver := rates.NewResolver(rates.NewHTTPFetcher(cfg.RatesFetchTimeout))
	rateSettings := settings.NewService(store, resolver, directory, cfg.DefaultRatesURL)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 2*cfg.RatesFetchTimeout)
	if err := rateSettings.Bootstrap(bootCtx); err != nil {
		logger.Warn("Exchange rates not loaded, using built-in defaults", "error", err)
	}
	bootCancel()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	periods := worker.NewPeriodWorker(report.NewBuilder(store, directory), cfg.Currency())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	go cache.NewJanitor(periods.Totals()).Run(ctx, 10*time.Minute)

	go func() {
		if err := amqpClient.ConsumeCostRecorded(ctx, periods.HandleCostRecorded); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
