// Package sheets mirrors an expense list into a Google Sheets tab.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/core"
	"expensetracker/internal/export"
	"expensetracker/internal/log"
	"expensetracker/internal/report"
)

// Credentials selects a service account. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

// New authenticates with a service account and returns an exporter writing
// to sheet inside spreadsheetID.
func New(ctx context.Context, creds Credentials, spreadsheetID, sheet string, logger *log.Logger) (*Exporter, error) {
	credentialsJSON, err := creds.load()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, sheet, logger)
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheet string, logger *log.Logger) (*Exporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheet == "" {
		sheet = export.SheetName
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		logger:        logger.WithComponent(log.ComponentExport),
	}, nil
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		b, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Export replaces the sheet contents with a header and one row per expense.
// It returns the updated range.
func (e *Exporter) Export(ctx context.Context, expenses []core.Expense, names report.Names) (string, error) {
	clearRange := fmt.Sprintf("%s!A:E", e.sheet)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", e.sheet, err)
	}

	values := valueRows(export.Rows(expenses, names))
	writeRange := fmt.Sprintf("%s!A1:E%d", e.sheet, len(values))
	resp, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update sheet %s: %w", e.sheet, err)
	}

	e.logger.InfoContext(ctx, "Exported expenses to Google Sheets",
		log.FieldCount, len(expenses),
		"range", writeRange)

	if resp != nil && resp.UpdatedRange != "" {
		return resp.UpdatedRange, nil
	}
	return writeRange, nil
}

func valueRows(rows []export.Row) [][]any {
	values := make([][]any, 0, len(rows)+1)
	header := make([]any, len(export.Header))
	for i, h := range export.Header {
		header[i] = h
	}
	values = append(values, header)
	for _, r := range rows {
		values = append(values, []any{r.Date, r.View, r.Category, r.Amount.StringFixed(2), r.Note})
	}
	return values
}
