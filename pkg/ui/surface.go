package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// CellSurface is the terminal-side implementation of grid.Surface. It keeps a
// slice-backed buffer of cell text and control handles in display order;
// block inserts and removals splice the buffer so rows above a change point
// keep their entries untouched.
type CellSurface struct {
	cols    int
	content [][]string
	widgets [][]CellWidget
}

// NewCellSurface creates an empty surface for a column count.
func NewCellSurface(cols int) *CellSurface {
	return &CellSurface{cols: cols}
}

// RowCount returns the current number of display rows.
func (s *CellSurface) RowCount() int { return len(s.content) }

// SetRowCount resets the buffer to n empty rows.
func (s *CellSurface) SetRowCount(n int) {
	s.content = make([][]string, n)
	s.widgets = make([][]CellWidget, n)
	for i := 0; i < n; i++ {
		s.content[i] = make([]string, s.cols)
		s.widgets[i] = make([]CellWidget, s.cols)
	}
}

// InsertRows splices count empty rows in at the given index.
func (s *CellSurface) InsertRows(at, count int) {
	if at < 0 || at > len(s.content) || count <= 0 {
		return
	}
	newContent := make([][]string, count)
	newWidgets := make([][]CellWidget, count)
	for i := 0; i < count; i++ {
		newContent[i] = make([]string, s.cols)
		newWidgets[i] = make([]CellWidget, s.cols)
	}
	s.content = append(s.content[:at], append(newContent, s.content[at:]...)...)
	s.widgets = append(s.widgets[:at], append(newWidgets, s.widgets[at:]...)...)
}

// RemoveRows splices count rows out at the given index.
func (s *CellSurface) RemoveRows(at, count int) {
	if at < 0 || count <= 0 || at >= len(s.content) {
		return
	}
	end := at + count
	if end > len(s.content) {
		end = len(s.content)
	}
	s.content = append(s.content[:at], s.content[end:]...)
	s.widgets = append(s.widgets[:at], s.widgets[end:]...)
}

// SetCellContent writes the readonly text representation of a cell.
func (s *CellSurface) SetCellContent(row, col int, content string) {
	if row < 0 || row >= len(s.content) || col < 0 || col >= s.cols {
		return
	}
	s.content[row][col] = content
}

// SetCellWidget installs (or with nil, removes) a control handle. Handles
// that are not CellWidget are ignored; the core treats them as opaque and
// only this adapter ever creates them.
func (s *CellSurface) SetCellWidget(row, col int, handle any) {
	if row < 0 || row >= len(s.widgets) || col < 0 || col >= s.cols {
		return
	}
	if handle == nil {
		s.widgets[row][col] = nil
		return
	}
	if w, ok := handle.(CellWidget); ok {
		s.widgets[row][col] = w
	}
}

// Widget returns the control at a cell, or nil for placeholder cells.
func (s *CellSurface) Widget(row, col int) CellWidget {
	if row < 0 || row >= len(s.widgets) || col < 0 || col >= s.cols {
		return nil
	}
	return s.widgets[row][col]
}

// Content returns the stored text for a cell.
func (s *CellSurface) Content(row, col int) string {
	if row < 0 || row >= len(s.content) || col < 0 || col >= s.cols {
		return ""
	}
	return s.content[row][col]
}

// RenderHeader renders the column header line.
func (s *CellSurface) RenderHeader(schema model.Schema, widths []int, theme Theme) string {
	cells := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		cells[i] = theme.Header.Render(padCell(col.Name, widths[i]))
	}
	return strings.Join(cells, " ")
}

// RenderRow renders one display row. Cells with a control handle render the
// control; the rest render the stored text. selectedCol < 0 means the row is
// not the cursor row.
func (s *CellSurface) RenderRow(row int, widths []int, theme Theme, selectedCol int) string {
	if row < 0 || row >= len(s.content) {
		return ""
	}
	cells := make([]string, s.cols)
	for col := 0; col < s.cols; col++ {
		var text string
		var style lipgloss.Style
		if w := s.widgets[row][col]; w != nil {
			text = w.View()
			style = theme.Widget
		} else {
			text = s.content[row][col]
			style = theme.Placeholder
		}
		text = padCell(text, widths[col])
		if col == selectedCol {
			style = theme.Selected
		}
		cells[col] = style.Render(text)
	}
	return strings.Join(cells, " ")
}

// padCell truncates or pads a cell to a display width, rune-width aware so
// the expansion glyphs and checkmarks line up.
func padCell(text string, width int) string {
	if width <= 0 {
		return text
	}
	if runewidth.StringWidth(text) > width {
		return runewidth.Truncate(text, width, "…")
	}
	return runewidth.FillRight(text, width)
}

// ColumnWidths computes render widths from the schema, defaulting narrow
// columns to fit their header.
func ColumnWidths(schema model.Schema) []int {
	widths := make([]int, len(schema.Columns))
	for i, col := range schema.Columns {
		w := col.Width
		if w <= 0 {
			w = runewidth.StringWidth(col.Name)
			if w < 6 {
				w = 6
			}
		}
		widths[i] = w
	}
	return widths
}
