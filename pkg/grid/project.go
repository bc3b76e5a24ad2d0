package grid

import "github.com/xiaoyu12139/treegrid/pkg/model"

// VisibleRow is one entry of the visibility projection: a display index and
// a reference to the originating row record. Projections are recomputed on
// every structural change and never persisted.
type VisibleRow struct {
	Index int
	Row   *model.Row
}

// Project derives the ordered sequence of currently-visible rows from the
// store and its expansion set. Parents and normals are emitted in stored
// order; immediately after an expanded parent come all of its children in
// stored relative order. Children of a collapsed parent are omitted.
//
// The contiguity of each child block directly below its parent is the
// invariant the reconciler's contiguous-range insert/delete relies on.
func Project(s *Store) []VisibleRow {
	childrenOf := make(map[string][]*model.Row)
	for _, r := range s.rows {
		if r.Kind == model.KindChild {
			childrenOf[r.ParentID] = append(childrenOf[r.ParentID], r)
		}
	}

	out := make([]VisibleRow, 0, len(s.rows))
	for _, r := range s.rows {
		switch r.Kind {
		case model.KindChild:
			// Emitted under its parent, never at top level.
		case model.KindParent:
			out = append(out, VisibleRow{Index: len(out), Row: r})
			if s.expanded[r.ID] {
				for _, c := range childrenOf[r.ID] {
					out = append(out, VisibleRow{Index: len(out), Row: c})
				}
			}
		default:
			out = append(out, VisibleRow{Index: len(out), Row: r})
		}
	}
	return out
}

// sameProjection reports whether two projections reference the same rows in
// the same order. Used to detect stale reconciliation snapshots.
func sameProjection(a, b []VisibleRow) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Row.ID != b[i].Row.ID {
			return false
		}
	}
	return true
}
