package normalizer

import (
	"strconv"
	"strings"

	"catalog_importer/internal/domain"
)

const (
	placeholderLabel = "General"
	placeholderValue = "Not specified"
)

// ParseSpecs turns "Label:Value, Label:Value" into spec entries.
// A token without a colon is labelled by its 1-based position.
// The result is never empty.
func ParseSpecs(s string) []domain.SpecEntry {
	if strings.TrimSpace(s) == "" {
		return []domain.SpecEntry{{Label: placeholderLabel, Value: placeholderValue}}
	}

	tokens := strings.Split(s, ",")
	specs := make([]domain.SpecEntry, 0, len(tokens))
	for i, token := range tokens {
		label, value, ok := strings.Cut(token, ":")
		if !ok {
			specs = append(specs, domain.SpecEntry{
				Label: "Specification " + strconv.Itoa(i+1),
				Value: strings.TrimSpace(token),
			})
			continue
		}
		specs = append(specs, domain.SpecEntry{
			Label: strings.TrimSpace(label),
			Value: strings.TrimSpace(value),
		})
	}
	return specs
}
