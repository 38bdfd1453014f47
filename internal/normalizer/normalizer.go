package normalizer

import (
	"iter"
	"log/slog"
	"strings"

	"catalog_importer/internal/domain"
)

// Normalizer converts raw spreadsheet rows into product records.
type Normalizer struct {
	layout Layout
	logger *slog.Logger
}

func New(layout Layout, logger *slog.Logger) (*Normalizer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{
		layout: layout,
		logger: logger.With("component", "normalizer", "layout", layout.Preset),
	}, nil
}

// Normalize lazily normalizes rows in input order. Accepted rows are yielded
// with a nil error; rejected rows are yielded with a *RejectedError and a
// zero record. Blank rows are skipped without being reported.
func (n *Normalizer) Normalize(rows []domain.RawRow) iter.Seq2[domain.ProductRecord, error] {
	return func(yield func(domain.ProductRecord, error) bool) {
		for _, row := range rows {
			if isBlank(row) {
				continue
			}

			record, err := n.NormalizeRow(row)
			if err != nil {
				n.logger.Warn("skipping row", "row", row.Number, "reason", err.Error())
			}
			if !yield(record, err) {
				return
			}
		}
	}
}

// NormalizeRow normalizes one row or rejects it when a required field is missing.
func (n *Normalizer) NormalizeRow(row domain.RawRow) (domain.ProductRecord, error) {
	l := n.layout
	cell := func(col int) string {
		if col == 0 {
			return ""
		}
		return strings.TrimSpace(row.Cell(col))
	}
	id := func(col int) int {
		if col == 0 {
			return 0
		}
		return ParseID(row.Cell(col))
	}

	record := domain.ProductRecord{
		Row:                    row.Number,
		Name:                   cell(l.Name),
		Slug:                   cell(l.Slug),
		Article:                cell(l.Article),
		Description:            cell(l.Description),
		Category:               id(l.Category),
		Subcategory:            id(l.Subcategory),
		Brand:                  id(l.Brand),
		Model:                  id(l.Model),
		Modification:           id(l.Modification),
		Specifications:         ParseSpecs(cell(l.Specifications)),
		DetailedSpecifications: ParseSpecs(cell(l.DetailedSpecifications)),
		WhereToBuyLink:         cell(l.WhereToBuyLink),
	}
	if record.Slug == "" {
		record.Slug = Slugify(record.Name)
	}

	var missing []string
	if record.Name == "" {
		missing = append(missing, "name")
	}
	if record.Article == "" {
		missing = append(missing, "article")
	}
	if record.Category == 0 {
		missing = append(missing, "category")
	}
	if record.WhereToBuyLink == "" {
		missing = append(missing, "where_to_buy_link")
	}
	if len(missing) > 0 {
		return domain.ProductRecord{}, &RejectedError{Row: row.Number, Missing: missing}
	}

	return record, nil
}

func isBlank(row domain.RawRow) bool {
	for _, c := range row.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
