package domain

// RawRow is one spreadsheet row as read from the source sheet.
type RawRow struct {
	Number int // 1-based sheet row, row 1 is the header
	Cells  []string
}

// Cell returns the value at a 1-based column, or "" when the row is shorter.
func (r RawRow) Cell(col int) string {
	if col < 1 || col > len(r.Cells) {
		return ""
	}
	return r.Cells[col-1]
}

type SpecEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProductRecord is a normalized row ready to be synchronized.
// Relation ids equal to zero are unset.
type ProductRecord struct {
	Row                    int
	Name                   string
	Slug                   string
	Article                string
	Description            string
	Category               int
	Subcategory            int
	Brand                  int
	Model                  int
	Modification           int
	Specifications         []SpecEntry
	DetailedSpecifications []SpecEntry
	WhereToBuyLink         string
}
