package ui

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

func menuRow(kind model.RowKind) *model.Row {
	return &model.Row{
		ID:     "r1",
		Kind:   kind,
		Fields: DefaultFields(model.DefaultSchema(), "Row One"),
	}
}

func TestMenuParentGetsAddChild(t *testing.T) {
	var m ContextMenu
	m.Open(menuRow(model.KindParent), 0, model.DefaultSchema())

	if m.Selected().Action != MenuAddChild {
		t.Errorf("first entry = %v, want add-child for a parent", m.Selected().Action)
	}
}

func TestMenuNormalRowSkipsAddChild(t *testing.T) {
	var m ContextMenu
	m.Open(menuRow(model.KindNormal), 0, model.DefaultSchema())

	for _, item := range m.items {
		if item.Action == MenuAddChild {
			t.Error("normal row should not offer add-child")
		}
	}
}

func TestMenuBoolColumnOffersToggle(t *testing.T) {
	var m ContextMenu
	m.Open(menuRow(model.KindNormal), 2, model.DefaultSchema()) // Check1

	found := false
	for _, item := range m.items {
		if item.Action == MenuToggleColumn {
			found = true
			if !strings.Contains(item.Label, "Check1") {
				t.Errorf("toggle label %q should name the column", item.Label)
			}
		}
	}
	if !found {
		t.Error("bool column should offer the column-wide toggle")
	}

	m.Open(menuRow(model.KindNormal), 1, model.DefaultSchema()) // Value1
	for _, item := range m.items {
		if item.Action == MenuToggleColumn {
			t.Error("number column must not offer the toggle")
		}
	}
}

func TestMenuCursorClamps(t *testing.T) {
	var m ContextMenu
	m.Open(menuRow(model.KindNormal), 0, model.DefaultSchema())

	m.Move(-5)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}
	m.Move(100)
	if m.cursor != len(m.items)-1 {
		t.Errorf("cursor = %d, want clamped to last", m.cursor)
	}
}

func TestMenuViewShowsRowTitle(t *testing.T) {
	var m ContextMenu
	m.Open(menuRow(model.KindParent), 0, model.DefaultSchema())

	view := m.View(DefaultTheme(lipgloss.NewRenderer(io.Discard)))
	if !strings.Contains(view, "Row One") {
		t.Error("menu header missing row title")
	}
	if !strings.Contains(view, "Delete row") {
		t.Error("menu missing delete entry")
	}
}
