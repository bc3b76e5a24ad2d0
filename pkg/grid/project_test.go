package grid

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

func TestProjectCollapsed(t *testing.T) {
	s := scenarioStore(t)

	got := visibleIDs(Project(s))
	want := []string{"P1", "N1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collapsed projection = %v, want %v", got, want)
	}
}

func TestProjectExpanded(t *testing.T) {
	s := scenarioStore(t)
	if err := s.ToggleExpansion("P1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	got := visibleIDs(Project(s))
	want := []string{"P1", "c1", "c2", "N1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expanded projection = %v, want %v", got, want)
	}
}

func TestProjectIndicesAreSequential(t *testing.T) {
	s := scenarioStore(t)
	s.ExpandAll()
	for i, vr := range Project(s) {
		if vr.Index != i {
			t.Fatalf("visible row %s has index %d at position %d", vr.Row.ID, vr.Index, i)
		}
	}
}

func TestProjectInterleavedParents(t *testing.T) {
	s := NewStore(model.DefaultSchema())
	for _, r := range []model.Row{
		testRow("P1", model.KindParent, ""),
		testRow("N1", model.KindNormal, ""),
		testRow("P2", model.KindParent, ""),
		testRow("a", model.KindChild, "P1"),
		testRow("b", model.KindChild, "P2"),
		testRow("c", model.KindChild, "P1"),
	} {
		if err := s.Append(r); err != nil {
			t.Fatalf("append %s: %v", r.ID, err)
		}
	}
	s.ExpandAll()

	// Children appear contiguously under their parent regardless of where
	// they sit in stored order.
	got := visibleIDs(Project(s))
	want := []string{"P1", "a", "c", "N1", "P2", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("projection = %v, want %v", got, want)
	}
}

// TestProjectProperties checks the projection invariants for arbitrary
// stores and expansion sets: every parent and normal row appears exactly
// once in stored order, and every child appears exactly once iff its parent
// is expanded, immediately after that parent and before the next top-level
// row.
func TestProjectProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewStore(model.DefaultSchema())

		numParents := rapid.IntRange(0, 8).Draw(t, "parents")
		parentIDs := make([]string, 0, numParents)
		for i := 0; i < numParents; i++ {
			id := fmt.Sprintf("P%d", i)
			parentIDs = append(parentIDs, id)
			if err := s.Append(testRow(id, model.KindParent, "")); err != nil {
				t.Fatalf("append parent: %v", err)
			}
		}
		numNormals := rapid.IntRange(0, 5).Draw(t, "normals")
		for i := 0; i < numNormals; i++ {
			if err := s.Append(testRow(fmt.Sprintf("N%d", i), model.KindNormal, "")); err != nil {
				t.Fatalf("append normal: %v", err)
			}
		}
		numChildren := 0
		if numParents > 0 {
			numChildren = rapid.IntRange(0, 20).Draw(t, "children")
		}
		for i := 0; i < numChildren; i++ {
			parent := rapid.SampledFrom(parentIDs).Draw(t, "childParent")
			row := testRow(fmt.Sprintf("c%d", i), model.KindChild, parent)
			pos := rapid.IntRange(0, s.Len()).Draw(t, "childPos")
			if err := s.Insert(row, pos); err != nil {
				t.Fatalf("insert child: %v", err)
			}
		}
		for _, p := range parentIDs {
			if rapid.Bool().Draw(t, "expand") {
				if err := s.SetExpanded(p, true); err != nil {
					t.Fatalf("expand: %v", err)
				}
			}
		}

		vis := Project(s)

		seen := make(map[string]int)
		for _, vr := range vis {
			seen[vr.Row.ID]++
		}
		for _, r := range s.Rows() {
			switch r.Kind {
			case model.KindChild:
				want := 0
				if s.IsExpanded(r.ParentID) {
					want = 1
				}
				if seen[r.ID] != want {
					t.Fatalf("child %s appears %d times, want %d", r.ID, seen[r.ID], want)
				}
			default:
				if seen[r.ID] != 1 {
					t.Fatalf("row %s appears %d times, want 1", r.ID, seen[r.ID])
				}
			}
		}

		// Children directly and contiguously follow their parent.
		for i, vr := range vis {
			if vr.Row.Kind != model.KindChild {
				continue
			}
			if i == 0 {
				t.Fatalf("child %s at projection head", vr.Row.ID)
			}
			prev := vis[i-1].Row
			if prev.ID != vr.Row.ParentID && !(prev.Kind == model.KindChild && prev.ParentID == vr.Row.ParentID) {
				t.Fatalf("child %s not contiguous with parent %s (preceded by %s)",
					vr.Row.ID, vr.Row.ParentID, prev.ID)
			}
		}

		// Top-level rows keep stored relative order.
		var storedTop, visibleTop []string
		for _, r := range s.Rows() {
			if r.Kind != model.KindChild {
				storedTop = append(storedTop, r.ID)
			}
		}
		for _, vr := range vis {
			if vr.Row.Kind != model.KindChild {
				visibleTop = append(visibleTop, vr.Row.ID)
			}
		}
		if !reflect.DeepEqual(storedTop, visibleTop) {
			t.Fatalf("top-level order changed: stored %v visible %v", storedTop, visibleTop)
		}
	})
}

// TestToggleMatchesReprojection verifies that a single toggle applied
// incrementally lands on the same visible sequence as projecting from
// scratch, for arbitrary stores.
func TestToggleMatchesReprojection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewStore(model.DefaultSchema())
		numParents := rapid.IntRange(1, 6).Draw(t, "parents")
		parentIDs := make([]string, 0, numParents)
		for i := 0; i < numParents; i++ {
			id := fmt.Sprintf("P%d", i)
			parentIDs = append(parentIDs, id)
			if err := s.Append(testRow(id, model.KindParent, "")); err != nil {
				t.Fatalf("append: %v", err)
			}
			kids := rapid.IntRange(0, 4).Draw(t, "kids")
			for j := 0; j < kids; j++ {
				if err := s.Append(testRow(fmt.Sprintf("c%d_%d", i, j), model.KindChild, id)); err != nil {
					t.Fatalf("append child: %v", err)
				}
			}
		}
		for _, p := range parentIDs {
			if rapid.Bool().Draw(t, "preExpand") {
				if err := s.SetExpanded(p, true); err != nil {
					t.Fatalf("expand: %v", err)
				}
			}
		}

		surface := newFakeSurface()
		recon := NewReconciler(s, surface)
		recon.Reset()

		target := rapid.SampledFrom(parentIDs).Draw(t, "toggle")
		if _, err := recon.Toggle(target); err != nil {
			t.Fatalf("toggle %s: %v", target, err)
		}

		if got, want := visibleIDs(recon.Visible()), visibleIDs(Project(s)); !reflect.DeepEqual(got, want) {
			t.Fatalf("incremental %v != reprojection %v", got, want)
		}
		if surface.rowCount != len(Project(s)) {
			t.Fatalf("surface has %d rows, projection has %d", surface.rowCount, len(Project(s)))
		}
	})
}
