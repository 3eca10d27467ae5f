package layout

import (
	"context"
	"math"

	"github.com/charmbracelet/log"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

// groupPadding is the inset between a group frame and the bounding box of
// its member nodes.
const groupPadding = 20.0

// Apply lays out the diagram and returns a new one; the input is never
// modified. The call is total: any failure of the layered engine (error,
// panic, non-finite output) silently downgrades to the grid fallback, so
// every node of the result has a finite, non-negative position. Group
// frames and the viewport are recomputed from the placed nodes.
//
// A nil diagram returns nil. [AlgorithmNone] and node-less diagrams pass
// through as a plain clone.
func Apply(ctx context.Context, d *ir.Diagram, opts Options) *ir.Diagram {
	if d == nil {
		return nil
	}
	opts = opts.normalized()
	if opts.Algorithm == AlgorithmNone || len(d.Nodes) == 0 {
		return d.Clone()
	}

	var out *ir.Diagram
	if opts.Algorithm != AlgorithmGrid {
		res, err := run(ctx, dotEngine{}, d, opts)
		switch {
		case err != nil:
			log.FromContext(ctx).Debug("layout engine failed, falling back to grid",
				"engine", "layered", "err", err)
		case !allFinite(res):
			log.FromContext(ctx).Debug("layout engine produced non-finite coordinates, falling back to grid",
				"engine", "layered")
		default:
			out = res
		}
	}
	if out == nil {
		// The grid engine cannot fail.
		out, _ = gridEngine{}.Layout(ctx, d, opts)
	}

	frameGroups(out)
	setViewport(out, opts)
	return out
}

// run executes an engine with panic recovery, so a crashing engine is
// indistinguishable from one that returns an error.
func run(ctx context.Context, e Engine, d *ir.Diagram, opts Options) (out *ir.Diagram, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.New(errors.ErrCodeLayout, "%s engine panicked: %v", e.Name(), r)
		}
	}()
	return e.Layout(ctx, d, opts)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// allFinite reports whether every assigned position and waypoint of d is a
// finite number.
func allFinite(d *ir.Diagram) bool {
	for i := range d.Nodes {
		p := d.Nodes[i].Position
		if p == nil || !finite(p.X) || !finite(p.Y) {
			return false
		}
	}
	for i := range d.Edges {
		for _, w := range d.Edges[i].Waypoints {
			if !finite(w.X) || !finite(w.Y) {
				return false
			}
		}
	}
	return true
}

// frameGroups recomputes each group's frame as the bounding box of its
// transitive member nodes plus padding. Groups without any placed member
// keep whatever geometry they had; it is stale either way.
func frameGroups(d *ir.Diagram) {
	for i := range d.Groups {
		g := &d.Groups[i]

		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, id := range memberNodes(d, g) {
			n, ok := d.Node(id)
			if !ok || n.Position == nil || n.Size == nil {
				continue
			}
			minX = math.Min(minX, n.Position.X)
			minY = math.Min(minY, n.Position.Y)
			maxX = math.Max(maxX, n.Position.X+n.Size.Width)
			maxY = math.Max(maxY, n.Position.Y+n.Size.Height)
		}
		if math.IsInf(minX, 1) {
			continue
		}

		g.Position = &ir.Position{X: minX - groupPadding, Y: minY - groupPadding}
		g.Size = &ir.Size{
			Width:  maxX - minX + 2*groupPadding,
			Height: maxY - minY + 2*groupPadding,
		}
	}
}

// memberNodes resolves a group's children to node ids, descending into
// nested groups. Containment cycles in unvalidated input are tolerated.
func memberNodes(d *ir.Diagram, root *ir.Group) []string {
	var nodes []string
	seen := make(map[string]bool)

	queue := append([]string(nil), root.Children...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if _, ok := d.Node(id); ok {
			nodes = append(nodes, id)
			continue
		}
		if g, ok := d.Group(id); ok && !seen[id] {
			seen[id] = true
			queue = append(queue, g.Children...)
		}
	}
	return nodes
}

// setViewport fits the viewport around all placed content, nodes and
// group frames alike, expanded by the margins. Content starts at the
// margins, so the viewport origin is zero.
func setViewport(d *ir.Diagram, opts Options) {
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if n.Position == nil || n.Size == nil {
			continue
		}
		maxX = math.Max(maxX, n.Position.X+n.Size.Width)
		maxY = math.Max(maxY, n.Position.Y+n.Size.Height)
	}
	for i := range d.Groups {
		g := &d.Groups[i]
		if g.Position == nil || g.Size == nil {
			continue
		}
		maxX = math.Max(maxX, g.Position.X+g.Size.Width)
		maxY = math.Max(maxY, g.Position.Y+g.Size.Height)
	}
	if math.IsInf(maxX, -1) {
		return
	}

	d.Viewport = &ir.Viewport{
		X:      0,
		Y:      0,
		Width:  maxX + opts.MarginX,
		Height: maxY + opts.MarginY,
	}
}
