package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Tree Grid Viewer

## Navigation

| Key | Action |
|-----|--------|
| ` + "`↑/k` `↓/j`" + ` | move between rows |
| ` + "`←/h` `→/l`" + ` | move between columns |
| ` + "`g` / `G`" + ` | jump to first / last row |

## Hierarchy

| Key | Action |
|-----|--------|
| ` + "`enter` / `space`" + ` | expand or collapse the selected parent |
| ` + "`E`" + ` | expand all parents |
| ` + "`C`" + ` | collapse all parents |

## Editing

| Key | Action |
|-----|--------|
| ` + "`enter` / `space`" + ` | toggle a checkbox, cycle a choice |
| ` + "`e`" + ` | edit the selected cell |
| ` + "`t`" + ` | toggle every checkbox in the selected column |
| ` + "`a`" + ` | add a row |
| ` + "`d`" + ` | delete the selected row |
| ` + "`m`" + ` | open the row menu |

## Clipboard

| Key | Action |
|-----|--------|
| ` + "`y`" + ` | yank the selected cell value |
| ` + "`Y`" + ` | yank the selected row ID |

Press ` + "`esc`" + ` or ` + "`?`" + ` to close this help.
`

// RenderHelp renders the key-binding reference through glamour for the given
// width. Falls back to the raw markdown if the renderer cannot be built.
func RenderHelp(width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
