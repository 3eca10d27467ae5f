package mermaid

import (
	"fmt"
	"strings"

	"github.com/WhiteBite/diaflow/pkg/ir"
)

const indent = "    "

// brackets returns the opening and closing delimiters for a shape.
// Shapes Mermaid cannot draw fall back to the rectangle pair.
func brackets(s ir.Shape) (string, string) {
	switch s {
	case ir.ShapeRoundedRect:
		return "(", ")"
	case ir.ShapeCircle:
		return "((", "))"
	case ir.ShapeEllipse:
		return "([", "])"
	case ir.ShapeDiamond:
		return "{", "}"
	case ir.ShapeHexagon:
		return "{{", "}}"
	case ir.ShapeParallelogram:
		return "[/", "/]"
	case ir.ShapeTrapezoid:
		return "[/", `\]`
	case ir.ShapeCylinder:
		return "[(", ")]"
	default:
		return "[", "]"
	}
}

// operator returns the link operator for an edge. Only the target arrowhead
// survives: Mermaid links have no source heads in this subset, and every
// head style renders as the standard one.
func operator(e *ir.Edge) string {
	open := e.ArrowTarget == ir.ArrowNone
	switch e.Line {
	case ir.LineDashed, ir.LineDotted:
		if open {
			return "-.-"
		}
		return "-.->"
	case ir.LineThick:
		if open {
			return "==="
		}
		return "==>"
	default:
		if open {
			return "---"
		}
		return "-->"
	}
}

func escape(s string) string { return strings.ReplaceAll(s, `"`, "#quot;") }

func nodeLine(n *ir.Node) string {
	if n.Label == "" && (n.Shape == "" || n.Shape == ir.ShapeRectangle) {
		return n.ID
	}
	open, close := brackets(n.Shape)
	return n.ID + open + `"` + escape(n.DisplayLabel()) + `"` + close
}

func direction(d *ir.Diagram) string {
	if s, ok := d.Metadata["direction"].(string); ok {
		switch s {
		case "TB", "TD", "BT", "LR", "RL":
			return s
		}
	}
	return "TB"
}

// Generate writes the diagram as Mermaid flowchart text: ungrouped nodes
// first, then subgraph blocks depth-first, then all links. Geometry and
// styles have no Mermaid form and are omitted.
func Generate(d *ir.Diagram) ([]byte, error) {
	var b strings.Builder
	b.WriteString("flowchart " + direction(d) + "\n")

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
			b.WriteString(indent + nodeLine(&d.Nodes[i]) + "\n")
		}
	}

	for i := range d.Groups {
		if _, grouped := childOf[d.Groups[i].ID]; !grouped {
			writeGroup(&b, d, &d.Groups[i], 1, make(map[string]bool))
		}
	}

	for i := range d.Edges {
		e := &d.Edges[i]
		b.WriteString(indent + e.Source + " " + operator(e))
		if e.Label != "" {
			b.WriteString("|" + escape(e.Label) + "|")
		}
		b.WriteString(" " + e.Target + "\n")
	}
	return []byte(b.String()), nil
}

func writeGroup(b *strings.Builder, d *ir.Diagram, g *ir.Group, depth int, seen map[string]bool) {
	if seen[g.ID] {
		return
	}
	seen[g.ID] = true

	pad := strings.Repeat(indent, depth)
	if g.Label != "" {
		fmt.Fprintf(b, "%ssubgraph %s [\"%s\"]\n", pad, g.ID, escape(g.Label))
	} else {
		fmt.Fprintf(b, "%ssubgraph %s\n", pad, g.ID)
	}
	for _, c := range g.Children {
		if n, ok := d.Node(c); ok {
			b.WriteString(pad + indent + nodeLine(n) + "\n")
		} else if sub, ok := d.Group(c); ok {
			writeGroup(b, d, sub, depth+1, seen)
		}
	}
	b.WriteString(pad + "end\n")
}
