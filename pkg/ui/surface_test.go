package ui

import (
	"testing"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

func TestSurfaceInsertShiftsRows(t *testing.T) {
	s := NewCellSurface(2)
	s.SetRowCount(3)
	s.SetCellContent(0, 0, "a")
	s.SetCellContent(1, 0, "b")
	s.SetCellContent(2, 0, "c")

	s.InsertRows(1, 2)

	if got := s.RowCount(); got != 5 {
		t.Fatalf("RowCount = %d, want 5", got)
	}
	want := []string{"a", "", "", "b", "c"}
	for i, w := range want {
		if got := s.Content(i, 0); got != w {
			t.Errorf("row %d content = %q, want %q", i, got, w)
		}
	}
}

func TestSurfaceRemoveShiftsRows(t *testing.T) {
	s := NewCellSurface(1)
	s.SetRowCount(4)
	for i, txt := range []string{"a", "b", "c", "d"} {
		s.SetCellContent(i, 0, txt)
	}

	s.RemoveRows(1, 2)

	if got := s.RowCount(); got != 2 {
		t.Fatalf("RowCount = %d, want 2", got)
	}
	if s.Content(0, 0) != "a" || s.Content(1, 0) != "d" {
		t.Errorf("contents after removal = %q, %q; want a, d", s.Content(0, 0), s.Content(1, 0))
	}
}

func TestSurfaceWidgetsMoveWithRows(t *testing.T) {
	s := NewCellSurface(1)
	s.SetRowCount(2)
	w := &CheckboxWidget{Checked: true}
	s.SetCellWidget(1, 0, w)

	s.InsertRows(1, 3)

	if s.Widget(1, 0) != nil {
		t.Error("inserted row should have no widget")
	}
	if s.Widget(4, 0) != w {
		t.Error("widget did not move with its row")
	}
}

func TestSurfaceNilHandleClearsWidget(t *testing.T) {
	s := NewCellSurface(1)
	s.SetRowCount(1)
	s.SetCellWidget(0, 0, &CheckboxWidget{})
	s.SetCellWidget(0, 0, nil)
	if s.Widget(0, 0) != nil {
		t.Error("nil handle should clear the widget")
	}
}

func TestSurfaceIgnoresOutOfRange(t *testing.T) {
	s := NewCellSurface(2)
	s.SetRowCount(1)
	s.SetCellContent(5, 0, "x")
	s.SetCellContent(0, 9, "x")
	s.RemoveRows(7, 1)
	s.InsertRows(-1, 1)
	if s.RowCount() != 1 {
		t.Errorf("RowCount = %d, want 1", s.RowCount())
	}
}

func TestPadCell(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abc…"},
		{"☑", 3, "☑ "}, // wide rune counts as two cells
		{"x", 0, "x"},
	}
	for _, tt := range tests {
		if got := padCell(tt.text, tt.width); got != tt.want {
			t.Errorf("padCell(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestColumnWidthsFallBackToHeader(t *testing.T) {
	schema := model.Schema{Columns: []model.Column{
		{Name: "Name", Type: model.FieldText, Width: 28},
		{Name: "X", Type: model.FieldNumber},
	}}
	widths := ColumnWidths(schema)
	if widths[0] != 28 {
		t.Errorf("explicit width = %d, want 28", widths[0])
	}
	if widths[1] != 6 {
		t.Errorf("fallback width = %d, want 6", widths[1])
	}
}
