package sheet

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"catalog_importer/internal/domain"
)

// XLSXReader reads product rows from an Excel workbook.
type XLSXReader struct {
	sheetName string
}

// NewXLSXReader creates a reader for the named sheet, or the active sheet when empty.
func NewXLSXReader(sheetName string) *XLSXReader {
	return &XLSXReader{sheetName: sheetName}
}

// ReadRows returns every row after the header. RawRow.Number is the 1-based sheet row.
func (x *XLSXReader) ReadRows(ctx context.Context, r io.Reader) ([]domain.RawRow, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	defer f.Close()

	sheet := x.sheetName
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}

	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("get sheet index: %w", err)
	}
	if index == -1 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}

	return toRawRows(rows), nil
}

// toRawRows drops the header row and numbers the rest by sheet position.
func toRawRows(rows [][]string) []domain.RawRow {
	if len(rows) <= 1 {
		return []domain.RawRow{}
	}

	result := make([]domain.RawRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		result = append(result, domain.RawRow{
			Number: i + 1,
			Cells:  rows[i],
		})
	}
	return result
}
