package ui

import (
	"strconv"

	"github.com/xiaoyu12139/treegrid/pkg/grid"
	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// CellWidget is an interactive cell control created when a row is promoted
// from its placeholder representation. Controls render their own view and
// translate interaction gestures into the raw string the store's field
// update parses.
type CellWidget interface {
	// View renders the control for its cell.
	View() string
	// Activate handles the primary gesture on the control (toggle, cycle,
	// begin editing). It returns the raw value to write to the store and
	// whether a write should happen at all.
	Activate() (raw string, write bool)
	// Raw returns the control's current value in store-parseable form.
	Raw() string
}

// CheckboxWidget toggles a boolean field.
type CheckboxWidget struct {
	Checked bool
}

func (w *CheckboxWidget) View() string {
	if w.Checked {
		return "[x]"
	}
	return "[ ]"
}

func (w *CheckboxWidget) Activate() (string, bool) {
	w.Checked = !w.Checked
	return w.Raw(), true
}

func (w *CheckboxWidget) Raw() string { return strconv.FormatBool(w.Checked) }

// ChoiceWidget cycles through a fixed option set.
type ChoiceWidget struct {
	Options []string
	Index   int
}

func (w *ChoiceWidget) View() string {
	if len(w.Options) == 0 {
		return "‹›"
	}
	return "‹" + w.Options[w.Index] + "›"
}

func (w *ChoiceWidget) Activate() (string, bool) {
	if len(w.Options) == 0 {
		return "", false
	}
	w.Index = (w.Index + 1) % len(w.Options)
	return w.Raw(), true
}

func (w *ChoiceWidget) Raw() string {
	if w.Index < 0 || w.Index >= len(w.Options) {
		return ""
	}
	return w.Options[w.Index]
}

// NumberWidget holds a numeric field. Activation opens the cell editor
// rather than writing directly, so Activate reports no write.
type NumberWidget struct {
	Value float64
}

func (w *NumberWidget) View() string {
	return strconv.FormatFloat(w.Value, 'f', -1, 64)
}

func (w *NumberWidget) Activate() (string, bool) { return w.Raw(), false }

func (w *NumberWidget) Raw() string { return strconv.FormatFloat(w.Value, 'f', -1, 64) }

// TextWidget holds a text field; like numbers, edits go through the editor.
type TextWidget struct {
	Text string
}

func (w *TextWidget) View() string { return w.Text }

func (w *TextWidget) Activate() (string, bool) { return w.Text, false }

func (w *TextWidget) Raw() string { return w.Text }

// NewWidgetFactory returns the factory the materializer uses to build cell
// controls. Each control is seeded from the row's current value.
func NewWidgetFactory(schema model.Schema) grid.WidgetFactory {
	return func(rowID string, col int, v model.Value) any {
		switch v.Type {
		case model.FieldBool:
			return &CheckboxWidget{Checked: v.Bool}
		case model.FieldChoice:
			w := &ChoiceWidget{Options: schema.Columns[col].Options}
			for i, opt := range w.Options {
				if opt == v.Choice {
					w.Index = i
					break
				}
			}
			return w
		case model.FieldNumber:
			return &NumberWidget{Value: v.Number}
		default:
			return &TextWidget{Text: v.Text}
		}
	}
}

// SyncWidget pushes a store value into an existing control so an external
// change (file reload, select-all) is reflected without re-promotion.
func SyncWidget(w CellWidget, v model.Value) {
	switch c := w.(type) {
	case *CheckboxWidget:
		c.Checked = v.Bool
	case *ChoiceWidget:
		for i, opt := range c.Options {
			if opt == v.Choice {
				c.Index = i
				return
			}
		}
	case *NumberWidget:
		c.Value = v.Number
	case *TextWidget:
		c.Text = v.Text
	}
}
