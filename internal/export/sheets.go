// Package export appends computed report rows to a Google Sheet. It is a
// report surface only: nothing is read back into the system and no persisted
// state is touched.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/reports"
)

type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter builds an exporter authenticated with a service account
// credentials file.
func NewSheetsExporter(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*SheetsExporter, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           service,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// ExportMonthlyFlows appends one row per (month, type) bucket.
func (e *SheetsExporter) ExportMonthlyFlows(ctx context.Context, rows []reports.MonthFlow) error {
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		values = append(values, []any{r.Month, string(r.Type), r.Total.String()})
	}
	return e.append(ctx, values)
}

// ExportCategorySpend appends one row per category total.
func (e *SheetsExporter) ExportCategorySpend(ctx context.Context, rows []reports.CategorySpend) error {
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		values = append(values, []any{r.Category, r.Total.String(), r.Count})
	}
	return e.append(ctx, values)
}

// ExportPaymentDigest appends one row per received digest: the upcoming
// window, the due count and the running month expense.
func (e *SheetsExporter) ExportPaymentDigest(ctx context.Context, msg *amqp.PaymentDigestMessage) error {
	window := fmt.Sprintf("%s to %s", msg.WindowStart, msg.WindowEnd)
	row := []any{window, msg.UpcomingCount, core.Money{Cents: msg.MonthExpense}.String()}
	return e.append(ctx, [][]any{row})
}

func (e *SheetsExporter) append(ctx context.Context, values [][]any) error {
	if len(values) == 0 {
		return nil
	}
	rng := fmt.Sprintf("%s!A:C", e.sheetName)
	vr := &gsheet.ValueRange{Values: values}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Exported report rows to Google Sheets",
		"rows", len(values),
		"sheet", e.sheetName)
	return nil
}
