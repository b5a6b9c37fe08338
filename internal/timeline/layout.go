package timeline

import "fmt"

// Layout holds the grid spacing used by the builder, in layout units.
type Layout struct {
	ColumnGap       float64 `json:"column_gap" yaml:"column_gap"`
	RowGap          float64 `json:"row_gap" yaml:"row_gap"`
	HeaderOffset    float64 `json:"header_offset" yaml:"header_offset"`
	CaseInfoOffsetX float64 `json:"case_info_offset_x" yaml:"case_info_offset_x"`
	CaseInfoOffsetY float64 `json:"case_info_offset_y" yaml:"case_info_offset_y"`
}

// DefaultLayout returns the standard timeline spacing.
func DefaultLayout() Layout {
	return Layout{
		ColumnGap:       600,
		RowGap:          120,
		HeaderOffset:    140,
		CaseInfoOffsetX: 80,
		CaseInfoOffsetY: -100,
	}
}

// Validate rejects layouts that would stack columns or rows on top of each other.
func (l Layout) Validate() error {
	if l.ColumnGap <= 0 {
		return fmt.Errorf("layout: column_gap must be positive, got %g", l.ColumnGap)
	}
	if l.RowGap <= 0 {
		return fmt.Errorf("layout: row_gap must be positive, got %g", l.RowGap)
	}
	if l.HeaderOffset < 0 {
		return fmt.Errorf("layout: header_offset must not be negative, got %g", l.HeaderOffset)
	}
	return nil
}

// WithDefaults fills zero fields from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	def := DefaultLayout()
	if l.ColumnGap == 0 {
		l.ColumnGap = def.ColumnGap
	}
	if l.RowGap == 0 {
		l.RowGap = def.RowGap
	}
	if l.HeaderOffset == 0 {
		l.HeaderOffset = def.HeaderOffset
	}
	if l.CaseInfoOffsetX == 0 && l.CaseInfoOffsetY == 0 {
		l.CaseInfoOffsetX = def.CaseInfoOffsetX
		l.CaseInfoOffsetY = def.CaseInfoOffsetY
	}
	return l
}
