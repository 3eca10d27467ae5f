// Package dot converts between diagrams and Graphviz DOT text.
//
// The generator emits a digraph with one statement per element: node
// statements with label/shape/style attributes, cluster subgraphs for
// groups, and -> statements for edges. The parser reads the same shape of
// input back: one statement per line, two-endpoint edges, cluster
// subgraphs. Edge chains (a -> b -> c), undirected graphs, and block
// comments are outside the subset and fail with the offending line number.
package dot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/WhiteBite/diaflow/pkg/ir"
)

// shapeNames maps shapes to Graphviz shape names. Shapes Graphviz lacks
// (cloud, actor) render as ellipses; missing entries render as box.
var shapeNames = map[ir.Shape]string{
	ir.ShapeCircle:        "circle",
	ir.ShapeEllipse:       "ellipse",
	ir.ShapeDiamond:       "diamond",
	ir.ShapeHexagon:       "hexagon",
	ir.ShapeParallelogram: "parallelogram",
	ir.ShapeTrapezoid:     "trapezium",
	ir.ShapeCylinder:      "cylinder",
	ir.ShapeDocument:      "note",
	ir.ShapeNote:          "note",
	ir.ShapeCloud:         "ellipse",
	ir.ShapeActor:         "ellipse",
}

var arrowNames = map[ir.ArrowType]string{
	ir.ArrowNone:          "none",
	ir.ArrowStandard:      "normal",
	ir.ArrowOpen:          "open",
	ir.ArrowDiamond:       "odiamond",
	ir.ArrowDiamondFilled: "diamond",
	ir.ArrowCircle:        "odot",
	ir.ArrowCircleFilled:  "dot",
	ir.ArrowCross:         "tee",
	ir.ArrowBar:           "tee",
}

func rankdir(d *ir.Diagram) string {
	if s, ok := d.Metadata["direction"].(string); ok {
		switch s {
		case "TB", "BT", "LR", "RL":
			return s
		case "TD":
			return "TB"
		}
	}
	return "TB"
}

// Generate writes the diagram as Graphviz DOT: ungrouped nodes, cluster
// subgraphs for groups, then all edges.
func Generate(d *ir.Diagram) ([]byte, error) {
	var buf bytes.Buffer
	id := d.ID
	if id == "" {
		id = "diagram"
	}
	fmt.Fprintf(&buf, "digraph %q {\n", id)
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(d))
	if d.Name != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", d.Name)
	}
	buf.WriteString("  node [shape=box];\n")

	childOf := make(map[string]string)
	for i := range d.Groups {
		for _, c := range d.Groups[i].Children {
			if _, taken := childOf[c]; !taken {
				childOf[c] = d.Groups[i].ID
			}
		}
	}

	for i := range d.Nodes {
		if _, grouped := childOf[d.Nodes[i].ID]; !grouped {
			writeNode(&buf, &d.Nodes[i], "  ")
		}
	}
	for i := range d.Groups {
		if _, grouped := childOf[d.Groups[i].ID]; !grouped {
			writeCluster(&buf, d, &d.Groups[i], "  ", make(map[string]bool))
		}
	}

	if len(d.Edges) > 0 {
		buf.WriteString("\n")
	}
	for i := range d.Edges {
		e := &d.Edges[i]
		if attrs := edgeAttrs(e); len(attrs) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n *ir.Node, pad string) {
	fmt.Fprintf(buf, "%s%q [%s];\n", pad, n.ID, strings.Join(nodeAttrs(n), ", "))
}

func nodeAttrs(n *ir.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.DisplayLabel())}
	if shape, ok := shapeNames[n.Shape]; ok {
		attrs = append(attrs, "shape="+shape)
	}

	styles := make([]string, 0, 2)
	if n.Shape == ir.ShapeRoundedRect {
		styles = append(styles, "rounded")
	}
	if n.Style.Fill != "" {
		styles = append(styles, "filled")
	}
	if len(styles) > 0 {
		attrs = append(attrs, fmt.Sprintf("style=%q", strings.Join(styles, ",")))
	}
	if n.Style.Fill != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Style.Fill))
	}
	if n.Style.Stroke != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", n.Style.Stroke))
	}
	return attrs
}

func edgeAttrs(e *ir.Edge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	switch e.Line {
	case ir.LineDashed:
		attrs = append(attrs, "style=dashed")
	case ir.LineDotted:
		attrs = append(attrs, "style=dotted")
	case ir.LineThick:
		attrs = append(attrs, "style=bold")
	}
	if e.ArrowTarget != "" && e.ArrowTarget != ir.ArrowStandard {
		attrs = append(attrs, "arrowhead="+arrowNames[e.ArrowTarget])
	}
	if e.ArrowSource != "" && e.ArrowSource != ir.ArrowNone {
		attrs = append(attrs, "dir=both", "arrowtail="+arrowNames[e.ArrowSource])
	}
	return attrs
}

func writeCluster(buf *bytes.Buffer, d *ir.Diagram, g *ir.Group, pad string, seen map[string]bool) {
	if seen[g.ID] {
		return
	}
	seen[g.ID] = true

	fmt.Fprintf(buf, "%ssubgraph %q {\n", pad, "cluster_"+g.ID)
	if g.Label != "" {
		fmt.Fprintf(buf, "%s  label=%q;\n", pad, g.Label)
	}
	for _, c := range g.Children {
		if n, ok := d.Node(c); ok {
			writeNode(buf, n, pad+"  ")
		} else if sub, ok := d.Group(c); ok {
			writeCluster(buf, d, sub, pad+"  ", seen)
		}
	}
	fmt.Fprintf(buf, "%s}\n", pad)
}
