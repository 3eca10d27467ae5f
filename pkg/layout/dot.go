package layout

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

// dotPointsPerInch is the Graphviz coordinate scale. Positions arrive in
// points, widths and heights travel in inches; treating one point as one
// pixel keeps the math at a single factor of 72.
const dotPointsPerInch = 72.0

// dotEngine ranks nodes with Graphviz dot. It emits DOT text with
// synthetic node names (n0, n1, ...) so user ids never need quoting,
// renders it to attributed DOT, and reads positions back from the output.
type dotEngine struct{}

func (dotEngine) Name() string { return "layered" }

func (dotEngine) Layout(ctx context.Context, d *ir.Diagram, opts Options) (*ir.Diagram, error) {
	out := d.Clone()
	fillSizes(out)

	index := make(map[string]int, len(out.Nodes))
	for i := range out.Nodes {
		index[out.Nodes[i].ID] = i
	}
	src := buildDOT(out, index, opts)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayout, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayout, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayout, err, "render")
	}

	if err := readback(out, index, buf.String(), opts); err != nil {
		return nil, err
	}
	return out, nil
}

// fillSizes gives every node a usable size: the shape default when absent,
// and also when the recorded size is degenerate, since Graphviz rejects
// non-positive dimensions.
func fillSizes(d *ir.Diagram) {
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if n.Size != nil && n.Size.Width > 0 && n.Size.Height > 0 &&
			finite(n.Size.Width) && finite(n.Size.Height) {
			continue
		}
		size := n.Shape.DefaultSize()
		n.Size = &size
	}
}

// buildDOT emits the diagram as DOT text. Nodes are named by index, fixed
// to their pixel sizes, and stripped of labels; only the topology and the
// box dimensions matter for placement. Edges with a dangling endpoint are
// left out rather than failing the whole layout.
func buildDOT(d *ir.Diagram, index map[string]int, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph diaflow {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.Direction.rankdir())
	fmt.Fprintf(&buf, "  nodesep=%.4f;\n", opts.NodeSpacing/dotPointsPerInch)
	fmt.Fprintf(&buf, "  ranksep=%.4f;\n", opts.RankSpacing/dotPointsPerInch)
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")

	for i := range d.Nodes {
		s := d.Nodes[i].Size
		fmt.Fprintf(&buf, "  n%d [width=%.4f, height=%.4f];\n",
			i, s.Width/dotPointsPerInch, s.Height/dotPointsPerInch)
	}
	for i := range d.Edges {
		e := &d.Edges[i]
		si, ok := index[e.Source]
		if !ok {
			continue
		}
		ti, ok := index[e.Target]
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", si, ti)
	}
	buf.WriteString("}\n")
	return buf.String()
}

var (
	dotBBRe   = regexp.MustCompile(`bb="([-0-9.]+),([-0-9.]+),([-0-9.]+),([-0-9.]+)"`)
	dotNodeRe = regexp.MustCompile(`(?ms)^\s*n(\d+)\s*\[(.*?)\];`)
	dotEdgeRe = regexp.MustCompile(`(?ms)^\s*n(\d+)\s*->\s*n(\d+)\s*\[(.*?)\];`)
	dotPosRe  = regexp.MustCompile(`pos="([^"]*)"`)
)

// readback extracts node centers and edge splines from attributed DOT
// output and writes them onto d as top-left pixel coordinates.
//
// Graphviz works y-up from the bottom-left corner of the bounding box, so
// every y is flipped against the box height. Afterwards all coordinates
// are shifted so the content starts at the configured margins.
func readback(d *ir.Diagram, index map[string]int, xdot string, opts Options) error {
	// Long attribute values are wrapped with backslash-newline, possibly
	// mid-number. Rejoin before matching.
	xdot = strings.ReplaceAll(xdot, "\\\n", "")

	bb := dotBBRe.FindStringSubmatch(xdot)
	if bb == nil {
		return errors.New(errors.ErrCodeLayout, "no bounding box in layout output")
	}
	bbH, err := strconv.ParseFloat(bb[4], 64)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "parse bounding box")
	}

	// Node centers.
	centers := make(map[int]ir.Point, len(d.Nodes))
	for _, m := range dotNodeRe.FindAllStringSubmatch(xdot, -1) {
		i, _ := strconv.Atoi(m[1])
		pos := dotPosRe.FindStringSubmatch(m[2])
		if pos == nil {
			continue
		}
		pt, err := parsePoint(pos[1])
		if err != nil {
			return err
		}
		centers[i] = pt
	}

	for i := range d.Nodes {
		n := &d.Nodes[i]
		c, ok := centers[i]
		if !ok {
			return errors.New(errors.ErrCodeLayout, "node %q missing from layout output", n.ID)
		}
		n.Position = &ir.Position{
			X: c.X - n.Size.Width/2,
			Y: (bbH - c.Y) - n.Size.Height/2,
		}
	}

	// Edge splines, bucketed by endpoint pair in document order. Parallel
	// edges pop routes off their pair's bucket in emit order.
	routes := make(map[[2]int][][]ir.Point)
	for _, m := range dotEdgeRe.FindAllStringSubmatch(xdot, -1) {
		si, _ := strconv.Atoi(m[1])
		ti, _ := strconv.Atoi(m[2])
		pos := dotPosRe.FindStringSubmatch(m[3])
		if pos == nil {
			continue
		}
		pts, err := parseSpline(pos[1], bbH)
		if err != nil {
			return err
		}
		key := [2]int{si, ti}
		routes[key] = append(routes[key], pts)
	}

	for i := range d.Edges {
		e := &d.Edges[i]
		e.Waypoints = nil
		si, ok := index[e.Source]
		if !ok {
			continue
		}
		ti, ok := index[e.Target]
		if !ok {
			continue
		}
		key := [2]int{si, ti}
		bucket := routes[key]
		if len(bucket) == 0 {
			continue
		}
		pts := bucket[0]
		routes[key] = bucket[1:]

		// The first and last spline points sit on the node boundaries and
		// are redundant with endpoint geometry; only the interior points
		// are kept as waypoints.
		if len(pts) > 2 {
			e.Waypoints = pts[1 : len(pts)-1]
		}
	}

	shiftToMargins(d, opts)
	return nil
}

// parsePoint parses an "x,y" position attribute.
func parsePoint(s string) (ir.Point, error) {
	x, y, err := splitCoord(s)
	if err != nil {
		return ir.Point{}, err
	}
	return ir.Point{X: x, Y: y}, nil
}

// parseSpline parses a spline position attribute: optional "e,x,y" and
// "s,x,y" arrowhead hints followed by control points. Hints are dropped,
// control points are y-flipped into top-down coordinates.
func parseSpline(s string, bbH float64) ([]ir.Point, error) {
	fields := strings.Fields(s)
	pts := make([]ir.Point, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, "e,") || strings.HasPrefix(f, "s,") {
			continue
		}
		x, y, err := splitCoord(f)
		if err != nil {
			return nil, err
		}
		pts = append(pts, ir.Point{X: x, Y: bbH - y})
	}
	return pts, nil
}

func splitCoord(s string) (x, y float64, err error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeLayout, "malformed coordinate %q", s)
	}
	if x, err = strconv.ParseFloat(a, 64); err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeLayout, err, "malformed coordinate %q", s)
	}
	if y, err = strconv.ParseFloat(b, 64); err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeLayout, err, "malformed coordinate %q", s)
	}
	return x, y, nil
}

// shiftToMargins translates all geometry so the top-left of the content
// box lands exactly on (MarginX, MarginY). This also guarantees
// non-negative coordinates.
func shiftToMargins(d *ir.Diagram, opts Options) {
	minX, minY := math.Inf(1), math.Inf(1)
	for i := range d.Nodes {
		p := d.Nodes[i].Position
		if p == nil {
			continue
		}
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
	}
	if math.IsInf(minX, 1) {
		return
	}

	dx, dy := opts.MarginX-minX, opts.MarginY-minY
	for i := range d.Nodes {
		if p := d.Nodes[i].Position; p != nil {
			p.X += dx
			p.Y += dy
		}
	}
	for i := range d.Edges {
		for j := range d.Edges[i].Waypoints {
			d.Edges[i].Waypoints[j].X += dx
			d.Edges[i].Waypoints[j].Y += dy
		}
	}
}
