package loader

import (
	"fmt"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// Demo dataset defaults: the size the lazy-loading path was tuned against.
const (
	DemoParents  = 50
	DemoChildren = 200
)

// GenerateDemo builds a hierarchical demo dataset of parents rows each
// carrying children child rows, against the default nine-column schema.
// Parents precede their children in the returned order.
func GenerateDemo(parents, children int) []model.Row {
	if parents <= 0 {
		parents = DemoParents
	}
	if children < 0 {
		children = DemoChildren
	}

	rows := make([]model.Row, 0, parents*(children+1))
	for i := 1; i <= parents; i++ {
		parentID := fmt.Sprintf("parent_%03d", i)
		rows = append(rows, model.Row{
			ID:   parentID,
			Kind: model.KindParent,
			Fields: []model.Value{
				model.TextValue(fmt.Sprintf("Parent_%03d", i)),
				model.NumberValue(1.0),
				model.BoolValue(true),
				model.BoolValue(false),
				model.BoolValue(true),
				model.BoolValue(false),
				model.ChoiceValue("5"),
				model.NumberValue(1.5),
				model.NumberValue(2.0),
			},
		})
		for j := 1; j <= children; j++ {
			rows = append(rows, model.Row{
				ID:       fmt.Sprintf("child_%03d_%03d", i, j),
				Kind:     model.KindChild,
				ParentID: parentID,
				Fields: []model.Value{
					model.TextValue(fmt.Sprintf("Child_%03d_%03d", i, j)),
					model.NumberValue(0.5),
					model.BoolValue(false),
					model.BoolValue(false),
					model.BoolValue(false),
					model.BoolValue(false),
					model.ChoiceValue("0"),
					model.NumberValue(0),
					model.NumberValue(0),
				},
			})
		}
	}
	return rows
}
