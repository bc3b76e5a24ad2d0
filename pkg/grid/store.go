package grid

import (
	"sort"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// FieldChange describes one applied cell edit. It is delivered to the
// store's change listener with both the old and the new value so the UI can
// offer revert feedback.
type FieldChange struct {
	RowID string
	Col   int
	Old   model.Value
	New   model.Value
}

// Store owns the ordered row records and the expansion set for the lifetime
// of the window. It is mutated exclusively from the UI event loop.
type Store struct {
	schema   model.Schema
	rows     []*model.Row
	index    map[string]int // row ID -> position in rows
	expanded map[string]bool

	onChange func(FieldChange)
}

// NewStore creates an empty store with the given schema. The expansion set
// starts empty.
func NewStore(schema model.Schema) *Store {
	return &Store{
		schema:   schema,
		index:    make(map[string]int),
		expanded: make(map[string]bool),
	}
}

// SetChangeListener registers the single change listener. Passing nil
// removes it.
func (s *Store) SetChangeListener(fn func(FieldChange)) {
	s.onChange = fn
}

// Schema returns the store's column layout.
func (s *Store) Schema() model.Schema { return s.schema }

// Len returns the number of rows in stored order.
func (s *Store) Len() int { return len(s.rows) }

// RowAt returns the row at the given stored position, or nil if out of range.
func (s *Store) RowAt(pos int) *model.Row {
	if pos < 0 || pos >= len(s.rows) {
		return nil
	}
	return s.rows[pos]
}

// Row returns the row with the given ID.
func (s *Store) Row(id string) (*model.Row, bool) {
	pos, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.rows[pos], true
}

// Rows returns a snapshot of all rows in stored order. The returned rows are
// deep copies; mutations must go through the store API.
func (s *Store) Rows() []model.Row {
	out := make([]model.Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Clone()
	}
	return out
}

// Insert adds a row at the given stored position (clamped to [0, Len]).
// A child row whose parent does not exist in the store is rejected with
// InvalidReferenceError; a duplicate ID or a row that fails schema
// validation is rejected with PreconditionError.
func (s *Store) Insert(row model.Row, pos int) error {
	if err := row.Validate(s.schema); err != nil {
		return PreconditionError{Op: "insert", Reason: err.Error()}
	}
	if _, exists := s.index[row.ID]; exists {
		return PreconditionError{Op: "insert", Reason: "duplicate row ID " + row.ID}
	}
	if row.Kind == model.KindChild {
		parent, ok := s.Row(row.ParentID)
		if !ok || parent.Kind != model.KindParent {
			return InvalidReferenceError{ChildID: row.ID, ParentID: row.ParentID}
		}
	}

	if pos < 0 {
		pos = 0
	}
	if pos > len(s.rows) {
		pos = len(s.rows)
	}

	clone := row.Clone()
	s.rows = append(s.rows, nil)
	copy(s.rows[pos+1:], s.rows[pos:])
	s.rows[pos] = &clone
	s.reindex()
	return nil
}

// Append adds a row at the end of the store.
func (s *Store) Append(row model.Row) error {
	return s.Insert(row, len(s.rows))
}

// Remove deletes the row with the given ID. Removing a parent cascades to
// all of its children and drops the parent from the expansion set.
func (s *Store) Remove(id string) error {
	pos, ok := s.index[id]
	if !ok {
		return PreconditionError{Op: "remove", Reason: "unknown row ID " + id}
	}

	doomed := map[string]bool{id: true}
	if s.rows[pos].Kind == model.KindParent {
		for _, r := range s.rows {
			if r.Kind == model.KindChild && r.ParentID == id {
				doomed[r.ID] = true
			}
		}
		delete(s.expanded, id)
	}

	kept := s.rows[:0]
	for _, r := range s.rows {
		if !doomed[r.ID] {
			kept = append(kept, r)
		}
	}
	s.rows = kept
	s.reindex()
	return nil
}

// UpdateField parses raw input against the column's declared type and
// applies it to the row's cell. On success the change listener receives the
// old and new value. Type failures leave the store untouched.
func (s *Store) UpdateField(id string, col int, raw string) (FieldChange, error) {
	row, ok := s.Row(id)
	if !ok {
		return FieldChange{}, PreconditionError{Op: "update_field", Reason: "unknown row ID " + id}
	}
	if col < 0 || col >= s.schema.Len() {
		return FieldChange{}, PreconditionError{Op: "update_field", Reason: "column index out of range"}
	}
	if !row.CanEdit(col, s.schema) {
		return FieldChange{}, PreconditionError{Op: "update_field", Reason: "column " + s.schema.Columns[col].Name + " is read-only for row " + id}
	}

	column := s.schema.Columns[col]
	val, err := model.ParseValue(column.Type, raw, column.Options)
	if err != nil {
		return FieldChange{}, TypeMismatchError{RowID: id, Col: col, Column: column.Name, Raw: raw, Cause: err}
	}

	change := FieldChange{RowID: id, Col: col, Old: row.Fields[col], New: val}
	row.Fields[col] = val
	if s.onChange != nil {
		s.onChange(change)
	}
	return change, nil
}

// ToggleExpansion flips the expansion state of a parent row. Toggling twice
// restores the original expansion set.
func (s *Store) ToggleExpansion(parentID string) error {
	row, ok := s.Row(parentID)
	if !ok {
		return PreconditionError{Op: "toggle_expansion", Reason: "unknown row ID " + parentID}
	}
	if !row.Kind.Expandable() {
		return PreconditionError{Op: "toggle_expansion", Reason: "row " + parentID + " is not a parent"}
	}
	if s.expanded[parentID] {
		delete(s.expanded, parentID)
	} else {
		s.expanded[parentID] = true
	}
	return nil
}

// SetExpanded sets the expansion state of a parent row explicitly. Used by
// expand-all/collapse-all and by state restoration.
func (s *Store) SetExpanded(parentID string, expanded bool) error {
	row, ok := s.Row(parentID)
	if !ok {
		return PreconditionError{Op: "set_expanded", Reason: "unknown row ID " + parentID}
	}
	if !row.Kind.Expandable() {
		return PreconditionError{Op: "set_expanded", Reason: "row " + parentID + " is not a parent"}
	}
	if expanded {
		s.expanded[parentID] = true
	} else {
		delete(s.expanded, parentID)
	}
	return nil
}

// IsExpanded reports whether the given parent is currently expanded.
func (s *Store) IsExpanded(id string) bool { return s.expanded[id] }

// Expanded returns the expansion set as a sorted slice of parent IDs.
func (s *Store) Expanded() []string {
	out := make([]string, 0, len(s.expanded))
	for id := range s.expanded {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ExpandAll expands every parent row.
func (s *Store) ExpandAll() {
	for _, r := range s.rows {
		if r.Kind == model.KindParent {
			s.expanded[r.ID] = true
		}
	}
}

// CollapseAll collapses every parent row.
func (s *Store) CollapseAll() {
	s.expanded = make(map[string]bool)
}

// Children returns a parent's child rows in stored relative order.
func (s *Store) Children(parentID string) []*model.Row {
	var out []*model.Row
	for _, r := range s.rows {
		if r.Kind == model.KindChild && r.ParentID == parentID {
			out = append(out, r)
		}
	}
	return out
}

// ChildCount returns the number of children belonging to a parent.
func (s *Store) ChildCount(parentID string) int {
	n := 0
	for _, r := range s.rows {
		if r.Kind == model.KindChild && r.ParentID == parentID {
			n++
		}
	}
	return n
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.rows))
	for i, r := range s.rows {
		s.index[r.ID] = i
	}
}
