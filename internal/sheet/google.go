package sheet

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"catalog_importer/internal/domain"
)

// GoogleConfig points at a Google Sheets spreadsheet.
type GoogleConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
}

// GoogleReader reads product rows from a Google Sheets spreadsheet.
type GoogleReader struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewGoogleReader authenticates with a service account JSON key file.
// An empty CredentialsFile falls back to GOOGLE_APPLICATION_CREDENTIALS.
func NewGoogleReader(ctx context.Context, cfg GoogleConfig) (*GoogleReader, error) {
	path := cfg.CredentialsFile
	if path == "" {
		path = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if path == "" {
			return nil, fmt.Errorf("no credentials file provided and GOOGLE_APPLICATION_CREDENTIALS not set")
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	return NewGoogleReaderWithOptions(ctx, cfg, option.WithCredentials(creds))
}

// NewGoogleReaderWithOptions creates a reader with explicit client options.
func NewGoogleReaderWithOptions(ctx context.Context, cfg GoogleConfig, opts ...option.ClientOption) (*GoogleReader, error) {
	if cfg.SpreadsheetID == "" {
		return nil, ErrMissingSpreadsheetID
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &GoogleReader{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// Source names the spreadsheet for run bookkeeping.
func (g *GoogleReader) Source() string {
	return fmt.Sprintf("gsheets:%s/%s", g.spreadsheetID, g.sheetName)
}

// ReadRows fetches every row after the header.
func (g *GoogleReader) ReadRows(ctx context.Context) ([]domain.RawRow, error) {
	readRange := fmt.Sprintf("%s!A:ZZ", g.sheetName)
	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get sheet data: %w", err)
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		cells := make([]string, len(values))
		for j, v := range values {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}

	return toRawRows(rows), nil
}
