package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const templateColumnWidth = 25

// Template describes the header row and the worked example of a layout.
type Template interface {
	Headers() []string
	Example() []string
}

// WriteTemplate writes an upload template workbook to w.
func WriteTemplate(w io.Writer, t Template) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	headers := t.Headers()
	if len(headers) == 0 {
		return fmt.Errorf("template has no columns")
	}

	header := toValues(headers)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	example := toValues(t.Example())
	if err := f.SetSheetRow(sheet, "A2", &example); err != nil {
		return fmt.Errorf("write example: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, templateColumnWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func toValues(cells []string) []interface{} {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return values
}
