package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/ecoloop/farmer/internal/config"
	"github.com/ecoloop/farmer/internal/domain/models"
)

// RowAppender is the part of the Sheets API the exporter uses.
type RowAppender interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// GoogleSheetRepository appends rows using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// SummaryExporter writes daily summaries as spreadsheet rows.
type SummaryExporter struct {
	rows       RowAppender
	sheetRange string
}

// NewSummaryExporter appends summaries into sheetRange.
func NewSummaryExporter(rows RowAppender, sheetRange string) *SummaryExporter {
	return &SummaryExporter{rows: rows, sheetRange: sheetRange}
}

// SaveDailySummary appends one row per summary.
func (e *SummaryExporter) SaveDailySummary(ctx context.Context, s models.DailySummary) error {
	return e.rows.WriteRow(ctx, e.sheetRange, SummaryRow(s))
}

// SummaryRow lays out a summary in the column order of the summary sheet:
// date, farm, user, active flocks, live birds, mortality, feed, income,
// expenses, profit.
func SummaryRow(s models.DailySummary) []interface{} {
	return []interface{}{
		s.Date,
		s.FarmName,
		s.UserID,
		s.ActiveFlocks,
		s.LiveBirds,
		s.Mortality,
		s.FeedConsumed,
		s.Income.StringFixed(2),
		s.Expenses.StringFixed(2),
		s.Profit.StringFixed(2),
	}
}
