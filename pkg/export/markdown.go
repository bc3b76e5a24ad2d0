// Package export renders the grid hierarchy to external formats: a markdown
// report and an SVG diagram.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// hierarchyOrder returns rows in display order with every parent expanded:
// parents and normals in stored order, each parent immediately followed by
// its children.
func hierarchyOrder(rows []model.Row) []model.Row {
	childrenOf := make(map[string][]model.Row)
	for _, r := range rows {
		if r.Kind == model.KindChild {
			childrenOf[r.ParentID] = append(childrenOf[r.ParentID], r)
		}
	}
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if r.Kind == model.KindChild {
			continue
		}
		out = append(out, r)
		out = append(out, childrenOf[r.ID]...)
	}
	return out
}

// GenerateMarkdown creates a markdown report of the full hierarchy with
// every parent expanded.
func GenerateMarkdown(rows []model.Row, schema model.Schema, title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC1123)))

	var parents, children, normals int
	for _, r := range rows {
		switch r.Kind {
		case model.KindParent:
			parents++
		case model.KindChild:
			children++
		default:
			normals++
		}
	}
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total**: %d\n", len(rows)))
	sb.WriteString(fmt.Sprintf("- **Parents**: %d\n", parents))
	sb.WriteString(fmt.Sprintf("- **Children**: %d\n", children))
	sb.WriteString(fmt.Sprintf("- **Normal**: %d\n\n", normals))

	sb.WriteString("## Rows\n\n")
	sb.WriteString("|")
	for _, col := range schema.Columns {
		sb.WriteString(" " + col.Name + " |")
	}
	sb.WriteString("\n|")
	for range schema.Columns {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, r := range hierarchyOrder(rows) {
		sb.WriteString("|")
		for col := range schema.Columns {
			cell := ""
			if col < len(r.Fields) {
				cell = r.Fields[col].String()
			}
			if col == 0 {
				switch r.Kind {
				case model.KindParent:
					cell = "**" + cell + "**"
				case model.KindChild:
					cell = "&nbsp;&nbsp;" + cell
				}
			}
			cell = strings.ReplaceAll(cell, "|", "\\|")
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// WriteMarkdown renders the report and writes it to path.
func WriteMarkdown(path string, rows []model.Row, schema model.Schema, title string) error {
	if err := os.WriteFile(path, []byte(GenerateMarkdown(rows, schema, title)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
