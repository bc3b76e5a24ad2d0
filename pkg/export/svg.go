package export

import (
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

const (
	svgRowHeight  = 24
	svgLeftMargin = 20
	svgTopMargin  = 48
	svgIndent     = 28
	svgWidth      = 760
)

// GenerateSVG writes an SVG diagram of the full hierarchy (every parent
// expanded) to path. Parents are drawn bold with connector lines down to
// their children; the first few field values are shown next to each name.
func GenerateSVG(path string, rows []model.Row, schema model.Schema, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	ordered := hierarchyOrder(rows)
	height := svgTopMargin + len(ordered)*svgRowHeight + svgRowHeight

	canvas := svg.New(f)
	canvas.Start(svgWidth, height)
	canvas.Rect(0, 0, svgWidth, height, "fill:white")
	canvas.Text(svgLeftMargin, 28, title, "font-family:monospace;font-size:16px;font-weight:bold;fill:#222")

	// Track the y position of the last seen parent so child connectors know
	// where to attach.
	parentY := make(map[string]int)

	for i, r := range ordered {
		y := svgTopMargin + i*svgRowHeight
		textY := y + svgRowHeight - 8
		x := svgLeftMargin

		style := "font-family:monospace;font-size:13px;fill:#333"
		switch r.Kind {
		case model.KindParent:
			style = "font-family:monospace;font-size:13px;font-weight:bold;fill:#111"
			parentY[r.ID] = textY
		case model.KindChild:
			x += svgIndent
			if py, ok := parentY[r.ParentID]; ok {
				// Elbow connector from the parent's baseline to this row.
				canvas.Line(svgLeftMargin+8, py+4, svgLeftMargin+8, textY-5, "stroke:#999;stroke-width:1")
				canvas.Line(svgLeftMargin+8, textY-5, x-4, textY-5, "stroke:#999;stroke-width:1")
			}
		}

		canvas.Text(x, textY, r.Title(), style)

		// A compact value summary after the name.
		summary := ""
		for col := 1; col < schema.Len() && col < len(r.Fields); col++ {
			if summary != "" {
				summary += "  "
			}
			summary += r.Fields[col].String()
		}
		canvas.Text(x+260, textY, summary, "font-family:monospace;font-size:12px;fill:#777")
	}

	canvas.End()
	return nil
}
