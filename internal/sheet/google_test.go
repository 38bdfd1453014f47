package sheet

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"catalog_importer/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGoogleReader_ReadRows(t *testing.T) {
	tests := []struct {
		name      string
		sheetData string
		want      []domain.RawRow
	}{
		{
			name: "rows after header",
			sheetData: `{"values": [
				["Название", "Артикул", "ID категории"],
				["Тормозной диск", "BD-12345", 1],
				[],
				["Колодки", "PD-1", 2.0]
			]}`,
			want: []domain.RawRow{
				{Number: 2, Cells: []string{"Тормозной диск", "BD-12345", "1"}},
				{Number: 3, Cells: []string{}},
				{Number: 4, Cells: []string{"Колодки", "PD-1", "2"}},
			},
		},
		{
			name:      "empty sheet",
			sheetData: `{"values": []}`,
			want:      []domain.RawRow{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/v4/spreadsheets/test-id/values/Products!A:ZZ" {
					w.Header().Set("Content-Type", "application/json")
					_, _ = w.Write([]byte(tt.sheetData))
					return
				}
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			reader, err := NewGoogleReaderWithOptions(context.Background(), GoogleConfig{
				SpreadsheetID: "test-id",
				SheetName:     "Products",
			}, option.WithEndpoint(server.URL), option.WithoutAuthentication())
			require.NoError(t, err)

			rows, err := reader.ReadRows(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
			assert.Equal(t, "gsheets:test-id/Products", reader.Source())
		})
	}
}

func TestGoogleReader_RequiresSpreadsheetID(t *testing.T) {
	_, err := NewGoogleReaderWithOptions(context.Background(), GoogleConfig{}, option.WithoutAuthentication())
	assert.ErrorIs(t, err, ErrMissingSpreadsheetID)
}

func TestGoogleReader_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	reader, err := NewGoogleReaderWithOptions(context.Background(), GoogleConfig{SpreadsheetID: "x"},
		option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)

	_, err = reader.ReadRows(context.Background())
	assert.ErrorContains(t, err, "get sheet data")
}
