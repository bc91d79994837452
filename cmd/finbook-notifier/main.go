package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finbook/internal/amqp"
	"finbook/internal/config"
	"finbook/internal/core"
	applog "finbook/internal/log"
	"finbook/internal/reports"
	"finbook/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: "finbook-notifier",
	})
	applog.SetDefault(logger)

	logger.Info("Starting finbook-notifier")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	engine := reports.NewEngine(repo)

	// AMQP is optional: without a broker the notifier degrades to log-only
	// digests.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in log-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, digests will only be logged")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Payment digest notifier configured",
		"interval", cfg.NotifyInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.NotifyInterval)
	defer ticker.Stop()

	// Run an initial digest on startup
	if err := publishDigest(ctx, logger, engine, amqpClient); err != nil {
		logger.Error("Initial digest failed", "error", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := publishDigest(ctx, logger, engine, amqpClient); err != nil {
					logger.Error("Periodic digest failed", "error", err)
				}
			}
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
	logger.Info("Notifier shutdown complete")
}

// publishDigest assembles the upcoming-payment and month-comparison report
// concurrently and ships the combined digest to the broker.
func publishDigest(ctx context.Context, logger *applog.Logger, engine *reports.Engine, client *amqp.Client) error {
	tickCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var (
		upcoming   reports.UpcomingReport
		comparison reports.Comparison
	)

	g, gctx := errgroup.WithContext(tickCtx)
	g.Go(func() error {
		var err error
		upcoming, err = engine.UpcomingPayments(gctx, core.AllAccounts(), core.Date{})
		return err
	})
	g.Go(func() error {
		var err error
		comparison, err = engine.MonthlyComparison(gctx, core.AllAccounts())
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	msg := amqp.NewPaymentDigestMessage(
		upcoming.Count,
		upcoming.WindowStart,
		upcoming.WindowEnd,
		comparison.ThisMonth.Cents,
		comparison.PercentChange,
		comparison.Trend,
	)

	logger.Info("Payment digest assembled",
		"upcoming_count", upcoming.Count,
		"window_start", upcoming.WindowStart,
		"window_end", upcoming.WindowEnd,
		"month_expense_cents", comparison.ThisMonth.Cents,
		"percent_change", comparison.PercentChange,
		"trend", comparison.Trend)

	if client == nil {
		return nil
	}
	return client.PublishPaymentDigest(tickCtx, msg)
}
