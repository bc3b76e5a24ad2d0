// Package grid implements the hierarchical row store, the visibility
// projection, and the incremental presentation sync that back the table UI.
// All mutation happens on the UI event loop; nothing in this package locks.
package grid

import "fmt"

// InvalidReferenceError reports a child row naming a parent that does not
// exist in the store. The offending mutation is rejected and prior state is
// left intact.
type InvalidReferenceError struct {
	ChildID  string
	ParentID string
}

func (e InvalidReferenceError) Error() string {
	return fmt.Sprintf("child %s references unknown parent %s", e.ChildID, e.ParentID)
}

// TypeMismatchError reports an edit value that fails the column's declared
// type, e.g. non-numeric text into a numeric field.
type TypeMismatchError struct {
	RowID  string
	Col    int
	Column string
	Raw    string
	Cause  error
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("row %s column %s (%d): %v", e.RowID, e.Column, e.Col, e.Cause)
}

func (e TypeMismatchError) Unwrap() error {
	return e.Cause
}

// PreconditionError reports an operation whose preconditions do not hold:
// toggling expansion on a non-parent row, editing a read-only cell, or
// reconciling from a stale visible-row snapshot.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
