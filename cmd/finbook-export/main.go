package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"finbook/internal/config"
	"finbook/internal/core"
	"finbook/internal/export"
	applog "finbook/internal/log"
	"finbook/internal/period"
	"finbook/internal/reports"
	"finbook/internal/storage"
)

// finbook-export is a one-shot tool: it renders the monthly income/expense
// flows and the category spend report for the requested period and appends
// both to a Google Sheets spreadsheet.
func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: "finbook-export",
	})
	applog.SetDefault(logger)

	periodToken := flag.String("period", "year", "report period: day, week, month, quarter, year, all")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.SheetsSpreadsheetID == "" || cfg.SheetsCredentialsFile == "" {
		logger.Error("Sheets export requires SHEETS_SPREADSHEET_ID and SHEETS_CREDENTIALS_FILE")
		os.Exit(1)
	}

	p, err := period.Parse(*periodToken)
	if err != nil {
		logger.Error("Invalid period", "period", *periodToken, "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	engine := reports.NewEngine(repo)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	exporter, err := export.NewSheetsExporter(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
	if err != nil {
		logger.Error("Failed to initialize Sheets exporter", "error", err)
		os.Exit(1)
	}

	flows, err := engine.IncomeExpenseByMonth(ctx, core.AllAccounts(), p)
	if err != nil {
		logger.Error("Monthly flow report failed", "error", err)
		os.Exit(1)
	}
	if err := exporter.ExportMonthlyFlows(ctx, flows); err != nil {
		logger.Error("Monthly flow export failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Exported monthly flows", "rows", len(flows), "period", p)

	spend, err := engine.ExpenseCategories(ctx, core.AllAccounts(), p)
	if err != nil {
		logger.Error("Category spend report failed", "error", err)
		os.Exit(1)
	}
	if err := exporter.ExportCategorySpend(ctx, spend); err != nil {
		logger.Error("Category spend export failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Exported category spend", "rows", len(spend), "period", p)
}
