package layout

import (
	"context"

	"github.com/WhiteBite/diaflow/pkg/ir"
)

// Engine is a placement algorithm. Layout returns a new diagram with node
// positions and sizes set; it never modifies its input. Engines are free
// to fail on topologies they cannot place, [Apply] recovers.
type Engine interface {
	// Name identifies the engine in logs.
	Name() string

	Layout(ctx context.Context, d *ir.Diagram, opts Options) (*ir.Diagram, error)
}

// Algorithm selects the placement engine.
type Algorithm string

const (
	// AlgorithmLayered is the ranked Graphviz placement, the default.
	AlgorithmLayered Algorithm = "layered"
	// AlgorithmGrid is the arithmetic row-by-row placement.
	AlgorithmGrid Algorithm = "grid"
	// AlgorithmNone passes the diagram through unchanged.
	AlgorithmNone Algorithm = "none"
)

// Direction is the primary flow axis of the layout.
type Direction string

const (
	DirectionTB Direction = "TB"
	DirectionBT Direction = "BT"
	DirectionLR Direction = "LR"
	DirectionRL Direction = "RL"
)

// vertical reports whether the primary axis runs top to bottom or bottom
// to top. Unknown directions count as vertical, matching the TB default.
func (d Direction) vertical() bool {
	return d != DirectionLR && d != DirectionRL
}

// rankdir returns the Graphviz rankdir value for the direction.
func (d Direction) rankdir() string {
	switch d {
	case DirectionBT, DirectionLR, DirectionRL:
		return string(d)
	default:
		return string(DirectionTB)
	}
}

// Default spacing values, in pixels.
const (
	DefaultNodeSpacing = 50.0
	DefaultRankSpacing = 70.0
	DefaultMargin      = 20.0
)

// Options configures a layout run. The zero value selects the layered
// algorithm, top-to-bottom direction, and the documented default spacing.
type Options struct {
	Algorithm   Algorithm
	Direction   Direction
	NodeSpacing float64
	RankSpacing float64
	MarginX     float64
	MarginY     float64
}

// normalized fills unset fields with the documented defaults.
func (o Options) normalized() Options {
	if o.Algorithm == "" {
		o.Algorithm = AlgorithmLayered
	}
	if o.Direction == "" {
		o.Direction = DirectionTB
	}
	if o.NodeSpacing <= 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.RankSpacing <= 0 {
		o.RankSpacing = DefaultRankSpacing
	}
	if o.MarginX <= 0 {
		o.MarginX = DefaultMargin
	}
	if o.MarginY <= 0 {
		o.MarginY = DefaultMargin
	}
	return o
}
