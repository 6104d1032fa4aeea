package main

import (
	"context"
	"os"
	"time"

	"rinkbook/internal/amqp"
	"rinkbook/internal/backend"
	"rinkbook/internal/cli"
	"rinkbook/internal/engine"
	rlog "rinkbook/internal/log"
	"rinkbook/internal/services"
	"rinkbook/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(rlog.ComponentRecurring)
	logger.Info("Starting recurring-worker")

	if err := cfg.ValidateSharedWriter(); err != nil {
		logger.Error("Invalid configuration for a shared store", "error", err)
		os.Exit(1)
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

	opts := []services.Option{
		services.WithCalculator(engine.NewCalculator(cfg.Rule())),
		services.WithSeasonCache(result.SeasonCache),
		services.WithExpenseCache(result.ExpenseCache),
	}

	// Materialized expenses are announced like any other, so the sheet
	// mirror picks them up through rinkbook-worker.
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		} else {
			opts = append(opts, services.WithPublisher(amqpClient))
		}
	}

	svc := services.NewRecordService(result.Store, opts...)
	processor := services.NewRecurringProcessor(result.Store, svc)

	scheduler, err := worker.NewRecurringScheduler(cfg.RecurringSchedule, processor)
	if err != nil {
		logger.Error("Invalid recurring schedule", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		scheduler.Stop(shutdownCtx)
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if err := result.Cleanup(); err != nil {
			logger.Warn("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Running initial recurring expense processing")
	_, _ = scheduler.RunOnce(ctx, time.Now())
	scheduler.Start()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker stopped")
}
