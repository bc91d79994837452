package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finbook/internal/amqp"
	"finbook/internal/config"
	"finbook/internal/export"
	applog "finbook/internal/log"
	"finbook/internal/worker"
)

// finbook-digest-worker consumes payment digests published by the notifier.
// Every digest is logged; with Sheets credentials configured each digest is
// also appended to the spreadsheet as a notification row.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: "finbook-digest-worker",
	})
	applog.SetDefault(logger)

	logger.Info("Starting finbook-digest-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A consumer without a broker has nothing to do, so AMQP is required here.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err, "url", cfg.AMQPURL)
		os.Exit(1)
	}
	defer amqpClient.Close()
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	// Sheets is optional: without credentials the worker degrades to
	// log-only delivery.
	var sink worker.DigestSink
	if cfg.SheetsSpreadsheetID != "" && cfg.SheetsCredentialsFile != "" {
		exporter, err := export.NewSheetsExporter(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
		if err != nil {
			logger.Warn("Failed to initialize Sheets exporter, continuing in log-only mode", "error", err)
		} else {
			sink = exporter
			logger.Info("Sheets sink initialized", "spreadsheet_id", cfg.SheetsSpreadsheetID, "sheet", cfg.SheetsSheetName)
		}
	} else {
		logger.Info("Sheets not configured, digests will only be logged")
	}

	digestWorker := worker.NewDigestWorker(sink)

	go func() {
		if err := digestWorker.Run(ctx, amqpClient); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Digest consumption stopped", "error", err)
			}
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Digest worker shutdown complete")
}
