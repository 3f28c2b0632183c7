package core

import "math"

// Viewport maps the logical table onto a rectangle of terminal cells.
type Viewport struct {
	Rect  Rect
	Table Table
}

// NewViewport creates a viewport covering r.
func NewViewport(r Rect, t Table) Viewport {
	return Viewport{Rect: r, Table: t}
}

// Contains reports whether the absolute cell (col, row) lies on the table surface.
func (v Viewport) Contains(col, row int) bool {
	return v.Rect.Contains(col, row)
}

// TableY converts an absolute terminal row to a table y coordinate,
// taken at the vertical centre of the row.
func (v Viewport) TableY(row int) float64 {
	if v.Rect.H <= 0 {
		return 0
	}
	rel := float64(row-v.Rect.Y) + 0.5
	return rel * v.Table.Height / float64(v.Rect.H)
}

// Col converts a table x coordinate to a column relative to the viewport.
func (v Viewport) Col(x float64) int {
	if v.Table.Width <= 0 {
		return 0
	}
	return int(math.Floor(x * float64(v.Rect.W) / v.Table.Width))
}

// Row converts a table y coordinate to a row relative to the viewport.
func (v Viewport) Row(y float64) int {
	if v.Table.Height <= 0 {
		return 0
	}
	return int(math.Floor(y * float64(v.Rect.H) / v.Table.Height))
}

// Rows converts a table height to a number of rows, at least one.
func (v Viewport) Rows(h float64) int {
	if v.Table.Height <= 0 {
		return 1
	}
	return max(1, int(math.Round(h*float64(v.Rect.H)/v.Table.Height)))
}
