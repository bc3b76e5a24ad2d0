package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// CellEditor is the inline text editor for number and text cells. It wraps a
// textinput seeded with the cell's current value; the caller commits the
// entered text through the store, which is where type validation happens.
type CellEditor struct {
	input textinput.Model
	rowID string
	col   int
	open  bool
}

// NewCellEditor returns an inactive editor.
func NewCellEditor() CellEditor {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 20
	ti.Prompt = "> "
	return CellEditor{input: ti}
}

// Open starts editing a cell, seeding the input from the current value.
func (e *CellEditor) Open(rowID string, col int, v model.Value) {
	e.rowID = rowID
	e.col = col
	e.open = true
	e.input.SetValue(v.String())
	e.input.CursorEnd()
	e.input.Focus()
}

// Close abandons the edit.
func (e *CellEditor) Close() {
	e.open = false
	e.input.Blur()
}

// Active reports whether an edit is in progress.
func (e *CellEditor) Active() bool { return e.open }

// Target returns the cell being edited.
func (e *CellEditor) Target() (rowID string, col int) { return e.rowID, e.col }

// Value returns the current input text.
func (e *CellEditor) Value() string { return e.input.Value() }

// Update forwards a message to the text input.
func (e *CellEditor) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

// View renders the input line.
func (e *CellEditor) View() string { return e.input.View() }
