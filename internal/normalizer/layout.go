package normalizer

import (
	"fmt"
	"sort"
)

// Layout maps product fields to 1-based spreadsheet columns.
// A zero column means the field is absent from the layout.
type Layout struct {
	Preset                 string `yaml:"preset"`
	Name                   int    `yaml:"name"`
	Slug                   int    `yaml:"slug"`
	Article                int    `yaml:"article"`
	Description            int    `yaml:"description"`
	Category               int    `yaml:"category"`
	Subcategory            int    `yaml:"subcategory"`
	Brand                  int    `yaml:"brand"`
	Model                  int    `yaml:"model"`
	Modification           int    `yaml:"modification"`
	Specifications         int    `yaml:"specifications"`
	DetailedSpecifications int    `yaml:"detailed_specifications"`
	WhereToBuyLink         int    `yaml:"where_to_buy_link"`
}

const (
	PresetFull    = "full"
	PresetNoSlug  = "no_slug"
	PresetCompact = "compact"
)

// LayoutFull is the 12-column layout with an explicit slug column.
var LayoutFull = Layout{
	Preset:                 PresetFull,
	Name:                   1,
	Slug:                   2,
	Article:                3,
	Description:            4,
	Category:               5,
	Subcategory:            6,
	Brand:                  7,
	Model:                  8,
	Modification:           9,
	Specifications:         10,
	DetailedSpecifications: 11,
	WhereToBuyLink:         12,
}

// LayoutNoSlug is the 11-column layout; slugs are always derived.
var LayoutNoSlug = Layout{
	Preset:                 PresetNoSlug,
	Name:                   1,
	Article:                2,
	Description:            3,
	Category:               4,
	Subcategory:            5,
	Brand:                  6,
	Model:                  7,
	Modification:           8,
	Specifications:         9,
	DetailedSpecifications: 10,
	WhereToBuyLink:         11,
}

// LayoutCompact is the 9-column layout without slug, model and modification.
var LayoutCompact = Layout{
	Preset:                 PresetCompact,
	Name:                   1,
	Article:                2,
	Description:            3,
	Category:               4,
	Subcategory:            5,
	Brand:                  6,
	Specifications:         7,
	DetailedSpecifications: 8,
	WhereToBuyLink:         9,
}

// LayoutByName returns a preset layout.
func LayoutByName(name string) (Layout, error) {
	switch name {
	case "", PresetFull:
		return LayoutFull, nil
	case PresetNoSlug:
		return LayoutNoSlug, nil
	case PresetCompact:
		return LayoutCompact, nil
	}
	return Layout{}, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}

// Merge returns l with every non-zero column of o applied on top.
func (l Layout) Merge(o Layout) Layout {
	pick := func(base, override int) int {
		if override != 0 {
			return override
		}
		return base
	}
	l.Name = pick(l.Name, o.Name)
	l.Slug = pick(l.Slug, o.Slug)
	l.Article = pick(l.Article, o.Article)
	l.Description = pick(l.Description, o.Description)
	l.Category = pick(l.Category, o.Category)
	l.Subcategory = pick(l.Subcategory, o.Subcategory)
	l.Brand = pick(l.Brand, o.Brand)
	l.Model = pick(l.Model, o.Model)
	l.Modification = pick(l.Modification, o.Modification)
	l.Specifications = pick(l.Specifications, o.Specifications)
	l.DetailedSpecifications = pick(l.DetailedSpecifications, o.DetailedSpecifications)
	l.WhereToBuyLink = pick(l.WhereToBuyLink, o.WhereToBuyLink)
	return l
}

// Validate checks that the required columns are mapped and no column is used twice.
func (l Layout) Validate() error {
	required := map[string]int{
		"name":              l.Name,
		"article":           l.Article,
		"category":          l.Category,
		"where_to_buy_link": l.WhereToBuyLink,
	}
	for field, col := range required {
		if col <= 0 {
			return fmt.Errorf("%w: %s", ErrMissingColumn, field)
		}
	}

	seen := make(map[int]string)
	for _, c := range l.columns() {
		if c.index < 0 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidColumn, c.field, c.index)
		}
		if c.index == 0 {
			continue
		}
		if other, ok := seen[c.index]; ok {
			return fmt.Errorf("%w: column %d used by %s and %s", ErrInvalidColumn, c.index, other, c.field)
		}
		seen[c.index] = c.field
	}
	return nil
}

// Width returns the highest mapped column.
func (l Layout) Width() int {
	width := 0
	for _, c := range l.columns() {
		if c.index > width {
			width = c.index
		}
	}
	return width
}

// Headers returns the template header for every column up to Width.
// Unmapped columns in between get an empty header.
func (l Layout) Headers() []string {
	headers := make([]string, l.Width())
	for _, c := range l.columns() {
		if c.index > 0 {
			headers[c.index-1] = c.header
		}
	}
	return headers
}

// Example returns the worked example row, aligned with Headers.
func (l Layout) Example() []string {
	row := make([]string, l.Width())
	for _, c := range l.columns() {
		if c.index > 0 {
			row[c.index-1] = c.example
		}
	}
	return row
}

type column struct {
	field   string
	index   int
	header  string
	example string
}

func (l Layout) columns() []column {
	cols := []column{
		{"name", l.Name, "Название", "Тормозной диск передний"},
		{"slug", l.Slug, "Slug (URL)", "brake-disc-front"},
		{"article", l.Article, "Артикул", "BD-12345"},
		{"description", l.Description, "Описание", "Высококачественный тормозной диск для передней оси"},
		{"category", l.Category, "ID категории", "1"},
		{"subcategory", l.Subcategory, "ID подкатегории", "2"},
		{"brand", l.Brand, "ID бренда", "3"},
		{"model", l.Model, "ID модели", "4"},
		{"modification", l.Modification, "ID модификации", "5"},
		{"specifications", l.Specifications, "Спецификации (краткие)", "Диаметр:280мм, Толщина:22мм"},
		{"detailed_specifications", l.DetailedSpecifications, "Спецификации (подробные)", "Диаметр:280мм, Толщина:22мм, Тип:Вентилируемый, Покрытие:С покрытием"},
		{"where_to_buy_link", l.WhereToBuyLink, "Ссылка где купить", "https://example.com/product"},
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].index < cols[j].index })
	return cols
}
