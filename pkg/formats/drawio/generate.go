package drawio

import (
	"encoding/xml"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

// Generate writes the diagram as an uncompressed draw.io mxfile. Cell
// geometry is relative to the containing group, per the mxGraph model, so
// absolute IR positions are rebased as cells are nested. Edges always
// parent on the layer cell, which keeps their waypoints absolute.
func Generate(d *ir.Diagram) ([]byte, error) {
	root := mxRoot{Cells: []mxCell{
		{ID: "0"},
		{ID: "1", Parent: "0"},
	}}

	childOf := make(map[string]string)
	for i := range d.Groups {
		for _, c := range d.Groups[i].Children {
			if _, taken := childOf[c]; !taken {
				childOf[c] = d.Groups[i].ID
			}
		}
	}

	// Absolute origin of every container cell, for rebasing children.
	origins := map[string]ir.Point{"1": {}}

	seen := make(map[string]bool)
	var emitGroup func(g *ir.Group)
	emitGroup = func(g *ir.Group) {
		if seen[g.ID] {
			return
		}
		seen[g.ID] = true

		parent := "1"
		if p, ok := childOf[g.ID]; ok && seen[p] {
			parent = p
		}
		origin := origins[parent]
		origins[g.ID] = origin

		cell := mxCell{
			ID:          g.ID,
			Value:       g.Label,
			Style:       groupStyle(g),
			Vertex:      "1",
			Connectable: "0",
			Parent:      parent,
		}
		if g.Collapsed {
			cell.Collapsed = "1"
		}
		if g.Position != nil {
			geo := &mxGeometry{As: "geometry", X: g.Position.X - origin.X, Y: g.Position.Y - origin.Y}
			if g.Size != nil {
				geo.Width, geo.Height = g.Size.Width, g.Size.Height
			}
			cell.Geometry = geo
			origins[g.ID] = ir.Point{X: g.Position.X, Y: g.Position.Y}
		}
		root.Cells = append(root.Cells, cell)

		for _, c := range g.Children {
			if sub, ok := d.Group(c); ok {
				emitGroup(sub)
			}
		}
	}
	for i := range d.Groups {
		if _, grouped := childOf[d.Groups[i].ID]; !grouped {
			emitGroup(&d.Groups[i])
		}
	}
	// Groups caught in a membership cycle are unreachable from any
	// top-level group; emit them flat so no element is lost.
	for i := range d.Groups {
		emitGroup(&d.Groups[i])
	}

	for i := range d.Nodes {
		n := &d.Nodes[i]
		parent := "1"
		if p, ok := childOf[n.ID]; ok {
			parent = p
		}
		root.Cells = append(root.Cells, nodeCell(n, parent, origins[parent]))
	}

	for i := range d.Edges {
		root.Cells = append(root.Cells, edgeCell(&d.Edges[i]))
	}

	file := mxFile{
		Host: "diaflow",
		Diagrams: []mxDiagram{{
			ID:    d.ID,
			Name:  d.Name,
			Model: &mxGraphModel{Root: root},
		}},
	}
	out, err := xml.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGenerate, err, "marshal mxfile")
	}
	return append([]byte(xml.Header), out...), nil
}

func nodeCell(n *ir.Node, parent string, origin ir.Point) mxCell {
	style, _ := n.Metadata[styleKey].(string)
	if style == "" {
		style = appendStyle(baseNodeStyle(n.Shape), n.Style)
	}
	cell := mxCell{ID: n.ID, Value: n.Label, Style: style, Vertex: "1", Parent: parent}

	geo := &mxGeometry{As: "geometry"}
	if n.Position != nil {
		geo.X, geo.Y = n.Position.X-origin.X, n.Position.Y-origin.Y
	}
	if n.Size != nil {
		geo.Width, geo.Height = n.Size.Width, n.Size.Height
	} else {
		s := n.Shape.DefaultSize()
		geo.Width, geo.Height = s.Width, s.Height
	}
	cell.Geometry = geo
	return cell
}

func groupStyle(g *ir.Group) string {
	if s, ok := g.Metadata[styleKey].(string); ok && s != "" {
		return s
	}
	return appendStyle("group", g.Style)
}

func edgeCell(e *ir.Edge) mxCell {
	cell := mxCell{
		ID:     e.ID,
		Value:  e.Label,
		Style:  edgeStyle(e),
		Edge:   "1",
		Parent: "1",
		Source: e.Source,
		Target: e.Target,
	}
	geo := &mxGeometry{Relative: "1", As: "geometry"}
	if len(e.Waypoints) > 0 {
		arr := &mxPointArray{As: "points"}
		for _, p := range e.Waypoints {
			arr.Points = append(arr.Points, mxPoint{X: p.X, Y: p.Y})
		}
		geo.Points = arr
	}
	cell.Geometry = geo
	return cell
}

func edgeStyle(e *ir.Edge) string {
	if s, ok := e.Metadata[styleKey].(string); ok && s != "" {
		return s
	}
	style := "edgeStyle=orthogonalEdgeStyle;rounded=0;html=1;"
	switch e.Line {
	case ir.LineDashed:
		style += "dashed=1;"
	case ir.LineDotted:
		style += "dashed=1;dashPattern=1 4;"
	case ir.LineThick:
		if e.Style.StrokeWidth == 0 {
			style += "strokeWidth=3;"
		}
	}
	style += arrowEnd("endArrow", "endFill", e.ArrowTarget, ir.ArrowStandard)
	style += arrowEnd("startArrow", "startFill", e.ArrowSource, ir.ArrowNone)
	return appendStyle(style, e.Style)
}

// arrowEnd renders one arrow terminal. The default head for that terminal
// is omitted, matching what draw.io saves itself.
func arrowEnd(key, fillKey string, a, dflt ir.ArrowType) string {
	if a == "" || a == dflt {
		return ""
	}
	switch a {
	case ir.ArrowNone:
		return key + "=none;"
	case ir.ArrowStandard:
		return key + "=classic;"
	case ir.ArrowOpen:
		return key + "=open;" + fillKey + "=0;"
	case ir.ArrowDiamond:
		return key + "=diamond;" + fillKey + "=0;"
	case ir.ArrowDiamondFilled:
		return key + "=diamond;" + fillKey + "=1;"
	case ir.ArrowCircle:
		return key + "=oval;" + fillKey + "=0;"
	case ir.ArrowCircleFilled:
		return key + "=oval;" + fillKey + "=1;"
	case ir.ArrowCross:
		return key + "=cross;"
	case ir.ArrowBar:
		return key + "=dash;"
	default:
		return ""
	}
}
