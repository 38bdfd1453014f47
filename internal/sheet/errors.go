package sheet

import "errors"

var (
	// ErrInvalidFile is returned when the upload is not a readable workbook
	ErrInvalidFile = errors.New("invalid Excel file format")

	// ErrSheetNotFound is returned when the configured sheet doesn't exist
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrMissingSpreadsheetID is returned when no Google spreadsheet is configured
	ErrMissingSpreadsheetID = errors.New("spreadsheet id is required")
)
