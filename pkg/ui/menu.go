package ui

import (
	"strings"

	"github.com/atotto/clipboard"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// MenuAction identifies a context-menu entry.
type MenuAction int

const (
	MenuAddChild MenuAction = iota
	MenuAddSibling
	MenuDeleteRow
	MenuYankCell
	MenuYankID
	MenuToggleColumn
)

// MenuItem is one entry of the row context menu.
type MenuItem struct {
	Action MenuAction
	Label  string
}

// ContextMenu is the per-row action menu opened with 'm'. Items depend on
// the row the cursor is on.
type ContextMenu struct {
	items  []MenuItem
	cursor int
	open   bool
	rowID  string
	title  string
	kind   model.RowKind
}

// Open builds the menu for a row. Parents get an "add child" entry; bool
// columns get the column-wide toggle.
func (m *ContextMenu) Open(row *model.Row, col int, schema model.Schema) {
	m.items = m.items[:0]
	if row.Kind == model.KindParent {
		m.items = append(m.items, MenuItem{MenuAddChild, "Add child row"})
	}
	m.items = append(m.items,
		MenuItem{MenuAddSibling, "Add row"},
		MenuItem{MenuDeleteRow, "Delete row"},
		MenuItem{MenuYankCell, "Yank cell value"},
		MenuItem{MenuYankID, "Yank row ID"},
	)
	if col >= 0 && col < schema.Len() && schema.Columns[col].Type == model.FieldBool {
		m.items = append(m.items, MenuItem{MenuToggleColumn, "Toggle " + schema.Columns[col].Name + " for all rows"})
	}
	m.cursor = 0
	m.rowID = row.ID
	m.title = row.Title()
	m.kind = row.Kind
	m.open = true
}

// Close dismisses the menu.
func (m *ContextMenu) Close() { m.open = false }

// Active reports whether the menu is showing.
func (m *ContextMenu) Active() bool { return m.open }

// RowID returns the row the menu was opened on.
func (m *ContextMenu) RowID() string { return m.rowID }

// Move shifts the cursor by delta, clamped.
func (m *ContextMenu) Move(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
}

// Selected returns the entry under the cursor.
func (m *ContextMenu) Selected() MenuItem {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return MenuItem{}
	}
	return m.items[m.cursor]
}

// View renders the menu body; the caller wraps it in the overlay style.
func (m *ContextMenu) View(theme Theme) string {
	var sb strings.Builder
	sb.WriteString(theme.Header.Render(theme.KindIcon(string(m.kind)) + " " + m.title))
	sb.WriteString("\n")
	for i, item := range m.items {
		line := "  " + item.Label
		if i == m.cursor {
			line = theme.Selected.Render("» " + item.Label)
		}
		sb.WriteString(line)
		if i < len(m.items)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// YankToClipboard copies text to the system clipboard. Returns a status line
// describing the outcome; clipboard access is best-effort (headless
// terminals have none).
func YankToClipboard(text, what string) string {
	if err := clipboard.WriteAll(text); err != nil {
		return "clipboard unavailable: " + err.Error()
	}
	if len(text) > 32 {
		text = text[:32] + "…"
	}
	return "yanked " + what + ": " + text
}
