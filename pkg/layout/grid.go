package layout

import (
	"context"

	"github.com/WhiteBite/diaflow/pkg/ir"
)

// gridColumns is the column count for vertical grid layouts.
const gridColumns = 3

// gridEngine places nodes row by row with pure arithmetic. It cannot fail
// and never produces a non-finite coordinate, which is what makes it a
// safe fallback for the layered engine.
type gridEngine struct{}

func (gridEngine) Name() string { return "grid" }

// Layout assigns cell positions by node index. Vertical directions wrap
// into rows of three; horizontal directions use a single row. Existing
// positions are overwritten, existing edge waypoints are dropped since
// they belong to the previous geometry.
func (gridEngine) Layout(_ context.Context, d *ir.Diagram, opts Options) (*ir.Diagram, error) {
	out := d.Clone()
	step := opts.NodeSpacing + 100

	for i := range out.Nodes {
		n := &out.Nodes[i]

		col, row := i, 0
		if opts.Direction.vertical() {
			col, row = i%gridColumns, i/gridColumns
		}

		n.Position = &ir.Position{
			X: opts.MarginX + float64(col)*step,
			Y: opts.MarginY + float64(row)*step,
		}
		if n.Size == nil {
			size := n.Shape.DefaultSize()
			n.Size = &size
		}
	}

	for i := range out.Edges {
		out.Edges[i].Waypoints = nil
	}
	return out, nil
}
