package grid

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

type cellKey struct{ row, col int }

// fakeSurface records display-surface calls and mimics toolkit semantics:
// inserting or removing rows shifts the content and widgets of all rows
// below the edit point.
type fakeSurface struct {
	rowCount int
	content  map[cellKey]string
	widgets  map[cellKey]any
	ops      []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		content: make(map[cellKey]string),
		widgets: make(map[cellKey]any),
	}
}

func (f *fakeSurface) SetRowCount(n int) {
	f.rowCount = n
	for k := range f.content {
		if k.row >= n {
			delete(f.content, k)
		}
	}
	for k := range f.widgets {
		if k.row >= n {
			delete(f.widgets, k)
		}
	}
	f.ops = append(f.ops, fmt.Sprintf("SetRowCount(%d)", n))
}

func (f *fakeSurface) InsertRows(at, count int) {
	f.shift(at, count)
	f.rowCount += count
	f.ops = append(f.ops, fmt.Sprintf("InsertRows(%d,%d)", at, count))
}

func (f *fakeSurface) RemoveRows(at, count int) {
	for k := range f.content {
		if k.row >= at && k.row < at+count {
			delete(f.content, k)
		}
	}
	for k := range f.widgets {
		if k.row >= at && k.row < at+count {
			delete(f.widgets, k)
		}
	}
	f.shift(at+count, -count)
	f.rowCount -= count
	f.ops = append(f.ops, fmt.Sprintf("RemoveRows(%d,%d)", at, count))
}

func (f *fakeSurface) shift(from, by int) {
	moveKeys := func(m map[cellKey]string) {
		shifted := make(map[cellKey]string)
		for k, v := range m {
			if k.row >= from {
				shifted[cellKey{k.row + by, k.col}] = v
				delete(m, k)
			}
		}
		for k, v := range shifted {
			m[k] = v
		}
	}
	moveKeys(f.content)

	shifted := make(map[cellKey]any)
	for k, v := range f.widgets {
		if k.row >= from {
			shifted[cellKey{k.row + by, k.col}] = v
			delete(f.widgets, k)
		}
	}
	for k, v := range shifted {
		f.widgets[k] = v
	}
}

func (f *fakeSurface) SetCellContent(row, col int, content string) {
	f.content[cellKey{row, col}] = content
}

func (f *fakeSurface) SetCellWidget(row, col int, handle any) {
	if handle == nil {
		delete(f.widgets, cellKey{row, col})
		return
	}
	f.widgets[cellKey{row, col}] = handle
}

func (f *fakeSurface) contentSnapshot() map[cellKey]string {
	out := make(map[cellKey]string, len(f.content))
	for k, v := range f.content {
		out[k] = v
	}
	return out
}

func TestReconcilerReset(t *testing.T) {
	s := scenarioStore(t)
	surface := newFakeSurface()
	recon := NewReconciler(s, surface)
	recon.Reset()

	if surface.rowCount != 2 {
		t.Fatalf("expected 2 surface rows, got %d", surface.rowCount)
	}
	if got := surface.content[cellKey{0, 0}]; got != "▶ P1" {
		t.Errorf("collapsed parent cell = %q, want %q", got, "▶ P1")
	}
	if got := surface.content[cellKey{1, 0}]; got != "N1" {
		t.Errorf("normal row cell = %q, want %q", got, "N1")
	}
	// Boolean placeholders use the readonly glyphs.
	if got := surface.content[cellKey{1, 2}]; got != "☑" {
		t.Errorf("bool placeholder = %q, want ☑", got)
	}
}

func TestReconcilerExpandInsertsContiguousBlock(t *testing.T) {
	s := scenarioStore(t)
	surface := newFakeSurface()
	recon := NewReconciler(s, surface)
	recon.Reset()

	delta, err := recon.Toggle("P1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if delta.Pos != 0 || delta.Count != 2 || !delta.Expanded || delta.InvalidateFrom != 1 {
		t.Errorf("unexpected delta: %+v", delta)
	}
	if got := visibleIDs(recon.Visible()); !reflect.DeepEqual(got, []string{"P1", "c1", "c2", "N1"}) {
		t.Errorf("visible after expand = %v", got)
	}
	if surface.rowCount != 4 {
		t.Errorf("surface rows = %d, want 4", surface.rowCount)
	}
	if got := surface.content[cellKey{0, 0}]; got != "▼ P1" {
		t.Errorf("parent indicator = %q, want ▼ P1", got)
	}
	if got := surface.content[cellKey{1, 0}]; got != "  c1" {
		t.Errorf("first child cell = %q, want indented c1", got)
	}
	// N1 shifted from display row 1 to 3 with its content intact.
	if got := surface.content[cellKey{3, 0}]; got != "N1" {
		t.Errorf("shifted normal row = %q, want N1", got)
	}

	wantOp := "InsertRows(1,2)"
	found := false
	for _, op := range surface.ops {
		if op == wantOp {
			found = true
		}
	}
	if !found {
		t.Errorf("surface ops %v missing %s", surface.ops, wantOp)
	}
}

func TestReconcilerCollapseMatchesFullRebuild(t *testing.T) {
	s := scenarioStore(t)
	surface := newFakeSurface()
	recon := NewReconciler(s, surface)
	recon.Reset()

	if _, err := recon.Toggle("P1"); err != nil {
		t.Fatalf("expand: %v", err)
	}
	delta, err := recon.Toggle("P1")
	if err != nil {
		t.Fatalf("collapse: %v", err)
	}
	if delta.Expanded || delta.Count != 2 {
		t.Errorf("unexpected collapse delta: %+v", delta)
	}

	// The incrementally maintained surface must equal a from-scratch build.
	fresh := newFakeSurface()
	NewReconciler(s, fresh).Reset()
	if surface.rowCount != fresh.rowCount {
		t.Fatalf("row count %d != rebuilt %d", surface.rowCount, fresh.rowCount)
	}
	if !reflect.DeepEqual(surface.contentSnapshot(), fresh.contentSnapshot()) {
		t.Errorf("incremental content diverged from rebuild:\n%v\nvs\n%v",
			surface.contentSnapshot(), fresh.contentSnapshot())
	}
}

func TestReconcilerStaleSnapshot(t *testing.T) {
	s := scenarioStore(t)
	surface := newFakeSurface()
	recon := NewReconciler(s, surface)
	recon.Reset()

	// Mutate the store behind the reconciler's back.
	if err := s.Append(testRow("N2", model.KindNormal, "")); err != nil {
		t.Fatalf("append: %v", err)
	}

	_, err := recon.Toggle("P1")
	var preErr PreconditionError
	if !errors.As(err, &preErr) {
		t.Fatalf("expected PreconditionError for stale snapshot, got %v", err)
	}
	if s.IsExpanded("P1") {
		t.Error("rejected toggle must leave the expansion set untouched")
	}
	if surface.rowCount != 2 {
		t.Errorf("rejected toggle must leave the surface untouched, rows = %d", surface.rowCount)
	}

	// Reset resynchronizes and the toggle goes through.
	recon.Reset()
	if _, err := recon.Toggle("P1"); err != nil {
		t.Fatalf("toggle after reset: %v", err)
	}
}

func TestReconcilerToggleNonParent(t *testing.T) {
	s := scenarioStore(t)
	surface := newFakeSurface()
	recon := NewReconciler(s, surface)
	recon.Reset()

	_, err := recon.Toggle("N1")
	var preErr PreconditionError
	if !errors.As(err, &preErr) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if surface.rowCount != 2 {
		t.Errorf("surface must be untouched, rows = %d", surface.rowCount)
	}
}

func TestCellContentRepresentations(t *testing.T) {
	s := scenarioStore(t)

	p, _ := s.Row("P1")
	c, _ := s.Row("c1")
	n, _ := s.Row("N1")

	if got := CellContent(s, p, 0); got != "▶ P1" {
		t.Errorf("collapsed parent = %q", got)
	}
	_ = s.ToggleExpansion("P1")
	if got := CellContent(s, p, 0); got != "▼ P1" {
		t.Errorf("expanded parent = %q", got)
	}
	if got := CellContent(s, c, 0); got != "  c1" {
		t.Errorf("child = %q", got)
	}
	if got := CellContent(s, n, 0); got != "N1" {
		t.Errorf("normal = %q", got)
	}
	if got := CellContent(s, n, 6); got != "5" {
		t.Errorf("choice cell = %q", got)
	}
	if got := CellContent(s, n, 3); got != "☐" {
		t.Errorf("unchecked bool cell = %q", got)
	}
}
