package grid

import "github.com/xiaoyu12139/treegrid/pkg/model"

// Surface is the display boundary the core drives. Implementations are
// provided by the surrounding UI toolkit adapter; the core never draws.
type Surface interface {
	SetRowCount(n int)
	InsertRows(at, count int)
	RemoveRows(at, count int)
	SetCellContent(row, col int, content string)
	SetCellWidget(row, col int, handle any)
}

// ToggleDelta describes the contiguous edit a single expansion toggle
// produced. InvalidateFrom is the first display index whose identity
// changed: every index-keyed presentation entry at or beyond it must be
// discarded, everything before it is untouched.
type ToggleDelta struct {
	ParentID       string
	Pos            int // display position of the toggled parent
	Count          int // number of child rows inserted or removed
	Expanded       bool
	InvalidateFrom int // always Pos+1
}

// Reconciler keeps a display surface in sync with the store's visibility
// projection, applying single-toggle changes as contiguous block edits
// instead of full rebuilds. The cost of a toggle is bounded by the number of
// affected rows, not the total row count.
type Reconciler struct {
	store   *Store
	surface Surface
	visible []VisibleRow
}

// NewReconciler creates a reconciler. Call Reset to populate the surface.
func NewReconciler(store *Store, surface Surface) *Reconciler {
	return &Reconciler{store: store, surface: surface}
}

// Visible returns the last applied projection.
func (r *Reconciler) Visible() []VisibleRow { return r.visible }

// Reset rebuilds the surface from scratch: row count plus the lightweight
// text representation for every visible cell. Used at startup and after
// bulk changes (reload, expand-all) where an incremental delta has no
// advantage.
func (r *Reconciler) Reset() {
	r.visible = Project(r.store)
	r.surface.SetRowCount(len(r.visible))
	for _, vr := range r.visible {
		r.writePlaceholders(vr.Index, vr.Row)
	}
}

// Toggle flips the expansion state of parentID and applies the minimal edit
// to the surface: the parent's child block is inserted or removed as one
// contiguous range at Pos+1, and the parent's own first cell is rewritten
// for the expansion indicator.
//
// If the surface state the reconciler last applied no longer matches the
// store's pre-toggle projection, the toggle is rejected with
// PreconditionError and neither store nor surface is touched.
func (r *Reconciler) Toggle(parentID string) (ToggleDelta, error) {
	if !sameProjection(r.visible, Project(r.store)) {
		return ToggleDelta{}, PreconditionError{Op: "reconcile", Reason: "stale visible-row snapshot; Reset required"}
	}

	pos := -1
	for _, vr := range r.visible {
		if vr.Row.ID == parentID {
			pos = vr.Index
			break
		}
	}
	if pos < 0 {
		return ToggleDelta{}, PreconditionError{Op: "reconcile", Reason: "parent " + parentID + " not visible"}
	}

	if err := r.store.ToggleExpansion(parentID); err != nil {
		return ToggleDelta{}, err
	}

	expanded := r.store.IsExpanded(parentID)
	children := r.store.Children(parentID)
	delta := ToggleDelta{
		ParentID:       parentID,
		Pos:            pos,
		Count:          len(children),
		Expanded:       expanded,
		InvalidateFrom: pos + 1,
	}

	if expanded {
		r.surface.InsertRows(pos+1, len(children))
		for i, c := range children {
			r.writePlaceholders(pos+1+i, c)
		}
	} else {
		r.surface.RemoveRows(pos+1, len(children))
	}
	// The parent's expansion indicator changed either way.
	r.surface.SetCellContent(pos, 0, CellContent(r.store, r.store.mustRow(parentID), 0))

	r.visible = Project(r.store)
	return delta, nil
}

func (r *Reconciler) writePlaceholders(index int, row *model.Row) {
	for col := 0; col < r.store.schema.Len(); col++ {
		r.surface.SetCellContent(index, col, CellContent(r.store, row, col))
	}
}

// CellContent renders the lightweight readonly representation of a cell:
// what a row shows before it is promoted to interactive controls. The first
// column carries the expansion indicator for parents and indentation for
// children.
func CellContent(s *Store, row *model.Row, col int) string {
	if col == 0 {
		switch row.Kind {
		case model.KindParent:
			if s.IsExpanded(row.ID) {
				return "▼ " + row.Title()
			}
			return "▶ " + row.Title()
		case model.KindChild:
			return "  " + row.Title()
		default:
			return row.Title()
		}
	}
	if col < 0 || col >= len(row.Fields) {
		return ""
	}
	return row.Fields[col].String()
}

// mustRow is Row for IDs already verified to exist.
func (s *Store) mustRow(id string) *model.Row {
	row, _ := s.Row(id)
	return row
}
