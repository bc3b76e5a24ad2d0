package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RowKind classifies a row's place in the hierarchy
type RowKind string

const (
	KindParent RowKind = "parent"
	KindChild  RowKind = "child"
	KindNormal RowKind = "normal"
)

// IsValid returns true if the kind is a recognized value
func (k RowKind) IsValid() bool {
	switch k {
	case KindParent, KindChild, KindNormal:
		return true
	}
	return false
}

// Expandable returns true if rows of this kind can be expanded/collapsed.
// Only parent rows are expandable; normal rows never are.
func (k RowKind) Expandable() bool {
	return k == KindParent
}

// FieldType declares what values a column accepts
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldBool   FieldType = "bool"
	FieldChoice FieldType = "choice"
	FieldNumber FieldType = "number"
)

// IsValid returns true if the field type is a recognized value
func (t FieldType) IsValid() bool {
	switch t {
	case FieldText, FieldBool, FieldChoice, FieldNumber:
		return true
	}
	return false
}

// Value is a single typed cell value. Exactly one of the payload fields is
// meaningful, selected by Type.
type Value struct {
	Type   FieldType `json:"type"`
	Text   string    `json:"text,omitempty"`
	Bool   bool      `json:"bool,omitempty"`
	Choice string    `json:"choice,omitempty"`
	Number float64   `json:"number,omitempty"`
}

// TextValue returns a text cell value
func TextValue(s string) Value { return Value{Type: FieldText, Text: s} }

// BoolValue returns a boolean cell value
func BoolValue(b bool) Value { return Value{Type: FieldBool, Bool: b} }

// ChoiceValue returns an enumerated-choice cell value
func ChoiceValue(s string) Value { return Value{Type: FieldChoice, Choice: s} }

// NumberValue returns a numeric cell value
func NumberValue(n float64) Value { return Value{Type: FieldNumber, Number: n} }

// String renders the value for display. Booleans use the checkbox glyphs the
// readonly placeholder representation shows before a row is materialized.
func (v Value) String() string {
	switch v.Type {
	case FieldText:
		return v.Text
	case FieldBool:
		if v.Bool {
			return "☑"
		}
		return "☐"
	case FieldChoice:
		return v.Choice
	case FieldNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return ""
}

// ParseValue converts raw user input into a Value of the given type.
// options is only consulted for FieldChoice. Numeric fields reject
// non-numeric text; choice fields reject values outside the option set.
func ParseValue(t FieldType, raw string, options []string) (Value, error) {
	switch t {
	case FieldText:
		return TextValue(raw), nil
	case FieldBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1", "yes", "on", "☑":
			return BoolValue(true), nil
		case "false", "0", "no", "off", "☐":
			return BoolValue(false), nil
		}
		return Value{}, fmt.Errorf("%q is not a boolean", raw)
	case FieldChoice:
		for _, opt := range options {
			if raw == opt {
				return ChoiceValue(raw), nil
			}
		}
		return Value{}, fmt.Errorf("%q is not one of %v", raw, options)
	case FieldNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not numeric", raw)
		}
		return NumberValue(n), nil
	}
	return Value{}, fmt.Errorf("unknown field type %q", t)
}

// Column describes one column of the grid
type Column struct {
	Name     string    `json:"name" yaml:"name"`
	Type     FieldType `json:"type" yaml:"type"`
	Editable bool      `json:"editable" yaml:"editable"`
	Options  []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Width    int       `json:"width,omitempty" yaml:"width,omitempty"`
}

// Schema is the ordered column layout shared by every row in a store
type Schema struct {
	Columns []Column `json:"columns" yaml:"columns"`
}

// DefaultSchema returns the nine-column layout used by the demo dataset:
// Name, Value1, Check1..Check4, Count, Value2, Value3.
func DefaultSchema() Schema {
	countOptions := []string{"0", "1", "2", "3", "4", "5"}
	return Schema{Columns: []Column{
		{Name: "Name", Type: FieldText, Editable: false, Width: 28},
		{Name: "Value1", Type: FieldNumber, Editable: true, Width: 10},
		{Name: "Check1", Type: FieldBool, Editable: true, Width: 8},
		{Name: "Check2", Type: FieldBool, Editable: true, Width: 8},
		{Name: "Check3", Type: FieldBool, Editable: true, Width: 8},
		{Name: "Check4", Type: FieldBool, Editable: true, Width: 8},
		{Name: "Count", Type: FieldChoice, Editable: true, Options: countOptions, Width: 8},
		{Name: "Value2", Type: FieldNumber, Editable: true, Width: 10},
		{Name: "Value3", Type: FieldNumber, Editable: true, Width: 10},
	}}
}

// Len returns the number of columns
func (s Schema) Len() int { return len(s.Columns) }

// Validate checks that the schema is usable
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	for i, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("column %d has no name", i)
		}
		if !c.Type.IsValid() {
			return fmt.Errorf("column %q has invalid type %q", c.Name, c.Type)
		}
		if c.Type == FieldChoice && len(c.Options) == 0 {
			return fmt.Errorf("choice column %q has no options", c.Name)
		}
	}
	return nil
}

// Row is a single record in the hierarchical store
type Row struct {
	ID       string  `json:"id"`
	Kind     RowKind `json:"kind"`
	ParentID string  `json:"parent_id,omitempty"`
	Fields   []Value `json:"fields"`

	// Editable overrides the schema's per-column editability when non-nil.
	// Must have the same length as Fields when set.
	Editable []bool `json:"editable,omitempty"`
}

// Clone creates a deep copy of the row
func (r Row) Clone() Row {
	clone := r
	if r.Fields != nil {
		clone.Fields = make([]Value, len(r.Fields))
		copy(clone.Fields, r.Fields)
	}
	if r.Editable != nil {
		clone.Editable = make([]bool, len(r.Editable))
		copy(clone.Editable, r.Editable)
	}
	return clone
}

// Validate checks if the row data is logically valid against the schema
func (r *Row) Validate(s Schema) error {
	if r.ID == "" {
		return fmt.Errorf("row ID cannot be empty")
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("invalid row kind: %s", r.Kind)
	}
	if r.Kind == KindChild && r.ParentID == "" {
		return fmt.Errorf("child row %s has no parent_id", r.ID)
	}
	if r.Kind != KindChild && r.ParentID != "" {
		return fmt.Errorf("%s row %s must not carry a parent_id", r.Kind, r.ID)
	}
	if len(r.Fields) != s.Len() {
		return fmt.Errorf("row %s has %d fields, schema has %d columns", r.ID, len(r.Fields), s.Len())
	}
	for i, v := range r.Fields {
		if v.Type != s.Columns[i].Type {
			return fmt.Errorf("row %s field %d is %s, column %q wants %s",
				r.ID, i, v.Type, s.Columns[i].Name, s.Columns[i].Type)
		}
	}
	if r.Editable != nil && len(r.Editable) != len(r.Fields) {
		return fmt.Errorf("row %s editable mask has %d entries, want %d", r.ID, len(r.Editable), len(r.Fields))
	}
	return nil
}

// CanEdit reports whether the given column accepts edits for this row.
// A per-row mask takes precedence over the schema default.
func (r *Row) CanEdit(col int, s Schema) bool {
	if col < 0 || col >= s.Len() {
		return false
	}
	if r.Editable != nil && col < len(r.Editable) {
		return r.Editable[col]
	}
	return s.Columns[col].Editable
}

// Title returns the row's display name (the first text field, falling back
// to the ID).
func (r *Row) Title() string {
	if len(r.Fields) > 0 && r.Fields[0].Type == FieldText && r.Fields[0].Text != "" {
		return r.Fields[0].Text
	}
	return r.ID
}
