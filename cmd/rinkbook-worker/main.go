package main

import (
	"context"
	"errors"
	"os"
	"time"

	"rinkbook/internal/amqp"
	"rinkbook/internal/backend"
	"rinkbook/internal/cli"
	"rinkbook/internal/core"
	"rinkbook/internal/engine"
	rlog "rinkbook/internal/log"
	"rinkbook/internal/sheets"
	gsheet "rinkbook/internal/sheets/google"
	mem "rinkbook/internal/sheets/memory"
	"rinkbook/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(rlog.ComponentWorker)
	logger.Info("Starting rinkbook-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Memory backend is not shared with the API; the worker will only see its own empty store")
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var mirror sheets.Mirror
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(context.Background(), gsheet.Options{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mirror = mem.New()
		logger.Info("Google Sheets disabled - mirroring to memory only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(result.Store, engine.NewCalculator(cfg.Rule()), mirror, mirror)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", "error", err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Warn("Backend cleanup error", "error", err)
		}
	})

	// Catch up on events missed while the worker was down.
	season := core.CurrentSeason(time.Now())
	logger.Info("Performing startup sync", "season", season)
	if err := syncWorker.StartupSync(ctx, season); err != nil {
		logger.Error("Startup sync failed", "error", err)
	}

	go func() {
		if err := amqpClient.Consume(ctx, syncWorker.Handle); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
