package normalizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog_importer/internal/domain"
)

func TestParseSpecs(t *testing.T) {
	placeholder := []domain.SpecEntry{{Label: "General", Value: "Not specified"}}

	tests := []struct {
		name string
		in   string
		want []domain.SpecEntry
	}{
		{
			name: "label value pairs",
			in:   "Диаметр:280мм, Толщина:22мм",
			want: []domain.SpecEntry{
				{Label: "Диаметр", Value: "280мм"},
				{Label: "Толщина", Value: "22мм"},
			},
		},
		{
			name: "splits on first colon only",
			in:   "Время: 10:30",
			want: []domain.SpecEntry{{Label: "Время", Value: "10:30"}},
		},
		{
			name: "tokens without colon are numbered by position",
			in:   "Вентилируемый, Тип:Передний, С покрытием",
			want: []domain.SpecEntry{
				{Label: "Specification 1", Value: "Вентилируемый"},
				{Label: "Тип", Value: "Передний"},
				{Label: "Specification 3", Value: "С покрытием"},
			},
		},
		{
			name: "empty tokens are kept",
			in:   "a:1,,b:2",
			want: []domain.SpecEntry{
				{Label: "a", Value: "1"},
				{Label: "Specification 2", Value: ""},
				{Label: "b", Value: "2"},
			},
		},
		{name: "empty input", in: "", want: placeholder},
		{name: "whitespace input", in: "   ", want: placeholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSpecs(tt.in))
		})
	}
}

func TestParseSpecs_EntryCountMatchesTokens(t *testing.T) {
	inputs := []string{
		"x",
		"x,y",
		"a:1, b:2, c",
		"Диаметр:280мм, Толщина:22мм, Тип:Вентилируемый, Покрытие:С покрытием",
		",,,",
	}

	for _, in := range inputs {
		specs := ParseSpecs(in)
		assert.Len(t, specs, strings.Count(in, ",")+1, "input %q", in)
	}
}
