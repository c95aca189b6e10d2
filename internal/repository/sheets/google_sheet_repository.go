package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/pigfarm/internal/config"
)

// Exporter writes a rendered list view into one tab of a spreadsheet.
type Exporter interface {
	ExportRows(ctx context.Context, sheet string, header []string, rows [][]any) (int, error)
}

// GoogleSheetRepository implements Exporter using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed exporter.
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

// ExportRows replaces the content of the sheet tab with header followed by
// rows and returns the number of data rows written. The tab must exist.
func (r *GoogleSheetRepository) ExportRows(ctx context.Context, sheet string, header []string, rows [][]any) (int, error) {
	if sheet == "" {
		return 0, fmt.Errorf("sheet must not be empty")
	}
	sheetRange := fmt.Sprintf("%s!A:ZZ", sheet)

	if _, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, sheetRange, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("clear range %s: %w", sheetRange, err)
	}

	values := make([][]any, 0, len(rows)+1)
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	values = append(values, head)
	values = append(values, rows...)

	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, fmt.Sprintf("%s!A1", sheet), &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return 0, fmt.Errorf("write range %s: %w", sheetRange, err)
	}

	r.logger.Debug("sheet exported", zap.String("sheet", sheet), zap.Int("rows", len(rows)))
	return len(rows), nil
}
