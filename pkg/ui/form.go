package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// RowForm collects the fields for a new row via a huh form. Only the name is
// asked for explicitly; the remaining columns start from type defaults and
// are edited in the grid afterwards.
type RowForm struct {
	schema model.Schema
	form   *huh.Form
	open   bool

	name string
	kind string

	// Fixed at open time: where the new row attaches.
	parentID string
}

var kindOptions = []huh.Option[string]{
	huh.NewOption("Normal row", string(model.KindNormal)),
	huh.NewOption("Parent row", string(model.KindParent)),
	huh.NewOption("Child of selected parent", string(model.KindChild)),
}

// NewRowForm returns an inactive form building rows against the given
// column layout.
func NewRowForm(schema model.Schema) RowForm { return RowForm{schema: schema} }

// Open starts the add-row dialog. parentID is the parent a child row would
// attach to; empty disables the child option.
func (f *RowForm) Open(parentID string) {
	f.name = ""
	f.kind = string(model.KindNormal)
	f.parentID = parentID

	options := kindOptions
	if parentID == "" {
		options = kindOptions[:2]
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("New row").
				Value(&f.name),
			huh.NewSelect[string]().
				Title("Kind").
				Options(options...).
				Value(&f.kind),
		),
	).WithShowHelp(false)
	f.open = true
}

// Init starts the form's internal commands; run its result after Open.
func (f *RowForm) Init() tea.Cmd {
	if f.form == nil {
		return nil
	}
	return f.form.Init()
}

// Close abandons the dialog.
func (f *RowForm) Close() {
	f.open = false
	f.form = nil
}

// Active reports whether the dialog is showing.
func (f *RowForm) Active() bool { return f.open }

// Update forwards a message to the form. done is true once the user
// submitted or aborted; on submit the built row is returned.
func (f *RowForm) Update(msg tea.Msg) (row *model.Row, done bool, cmd tea.Cmd) {
	if f.form == nil {
		return nil, true, nil
	}
	m, cmd := f.form.Update(msg)
	if fm, ok := m.(*huh.Form); ok {
		f.form = fm
	}
	switch f.form.State {
	case huh.StateCompleted:
		return f.buildRow(), true, cmd
	case huh.StateAborted:
		return nil, true, cmd
	}
	return nil, false, cmd
}

// View renders the form.
func (f *RowForm) View() string {
	if f.form == nil {
		return ""
	}
	return f.form.View()
}

// buildRow assembles the new row from the form state plus type defaults.
func (f *RowForm) buildRow() *model.Row {
	kind := model.RowKind(f.kind)
	name := strings.TrimSpace(f.name)
	row := &model.Row{
		ID:   NewRowID(kind),
		Kind: kind,
	}
	if kind == model.KindChild {
		row.ParentID = f.parentID
	}
	if name == "" {
		name = "New row"
	}
	row.Fields = DefaultFields(f.schema, name)
	return row
}

// DefaultFields returns a field slice for the schema with the given name and
// zero values everywhere else.
func DefaultFields(schema model.Schema, name string) []model.Value {
	fields := make([]model.Value, schema.Len())
	for i, col := range schema.Columns {
		switch col.Type {
		case model.FieldText:
			fields[i] = model.TextValue("")
		case model.FieldBool:
			fields[i] = model.BoolValue(false)
		case model.FieldChoice:
			fields[i] = model.ChoiceValue(col.Options[0])
		case model.FieldNumber:
			fields[i] = model.NumberValue(0)
		}
	}
	if schema.Len() > 0 && schema.Columns[0].Type == model.FieldText {
		fields[0] = model.TextValue(name)
	}
	return fields
}

var rowIDCounter int

// NewRowID generates a unique ID for interactively added rows.
func NewRowID(kind model.RowKind) string {
	rowIDCounter++
	return fmt.Sprintf("%s_new_%03d", kind, rowIDCounter)
}
