// Package plantuml renders diagrams as PlantUML deployment syntax.
//
// Output is generate-only. Shapes map onto deployment element keywords
// (rectangle, card, circle, usecase, hexagon, database, file, cloud,
// actor), groups become nested package blocks, and edges use the bracket
// line modifiers (-[dashed]->, -[bold]->). PlantUML aliases only allow
// word characters, so element ids are sanitized and kept unique; labels
// keep the original text.
package plantuml

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/WhiteBite/diaflow/pkg/ir"
)

const indent = "  "

// shapeKeywords maps shapes onto deployment element keywords. Shapes with
// no PlantUML analogue fall back to rectangle.
var shapeKeywords = map[ir.Shape]string{
	ir.ShapeRoundedRect: "card",
	ir.ShapeCircle:      "circle",
	ir.ShapeEllipse:     "usecase",
	ir.ShapeDiamond:     "hexagon",
	ir.ShapeHexagon:     "hexagon",
	ir.ShapeCylinder:    "database",
	ir.ShapeDocument:    "file",
	ir.ShapeNote:        "file",
	ir.ShapeCloud:       "cloud",
	ir.ShapeActor:       "actor",
}

var aliasRe = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Generate writes the diagram as a PlantUML deployment diagram.
func Generate(d *ir.Diagram) ([]byte, error) {
	var b strings.Builder
	b.WriteString("@startuml\n")
	if d.Name != "" {
		fmt.Fprintf(&b, "title %s\n", sanitize(d.Name))
	}
	if dir, _ := d.Metadata["direction"].(string); dir == "LR" || dir == "RL" {
		b.WriteString("left to right direction\n")
	}

	aliases := aliasTable(d)

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
			writeNode(&b, &d.Nodes[i], aliases, 0)
		}
	}
	seen := make(map[string]bool)
	for i := range d.Groups {
		if _, grouped := childOf[d.Groups[i].ID]; !grouped {
			writeGroup(&b, d, &d.Groups[i], aliases, seen, 0)
		}
	}

	for i := range d.Edges {
		e := &d.Edges[i]
		fmt.Fprintf(&b, "%s %s %s", aliases[e.Source], operator(e), aliases[e.Target])
		if e.Label != "" {
			fmt.Fprintf(&b, " : %s", sanitize(e.Label))
		}
		b.WriteString("\n")
	}

	b.WriteString("@enduml\n")
	return []byte(b.String()), nil
}

// aliasTable assigns every element a PlantUML-safe alias. Sanitizing can
// collide (a-b and a_b both become a_b), so collisions get a numeric
// suffix in element order.
func aliasTable(d *ir.Diagram) map[string]string {
	aliases := make(map[string]string, len(d.Nodes)+len(d.Groups))
	used := make(map[string]bool)
	assign := func(id string) {
		if _, done := aliases[id]; done {
			return
		}
		a := aliasRe.ReplaceAllString(id, "_")
		if a == "" {
			a = "el"
		}
		base := a
		for k := 2; used[a]; k++ {
			a = fmt.Sprintf("%s_%d", base, k)
		}
		used[a] = true
		aliases[id] = a
	}
	for i := range d.Nodes {
		assign(d.Nodes[i].ID)
	}
	for i := range d.Groups {
		assign(d.Groups[i].ID)
	}
	for i := range d.Edges {
		assign(d.Edges[i].Source)
		assign(d.Edges[i].Target)
	}
	return aliases
}

func writeNode(b *strings.Builder, n *ir.Node, aliases map[string]string, depth int) {
	kw, ok := shapeKeywords[n.Shape]
	if !ok {
		kw = "rectangle"
	}
	pad := strings.Repeat(indent, depth)
	if n.Label == "" {
		fmt.Fprintf(b, "%s%s %s", pad, kw, aliases[n.ID])
	} else {
		fmt.Fprintf(b, "%s%s %q as %s", pad, kw, sanitize(n.Label), aliases[n.ID])
	}
	if fill := n.Style.Fill; strings.HasPrefix(fill, "#") {
		fmt.Fprintf(b, " %s", fill)
	}
	b.WriteString("\n")
}

func writeGroup(b *strings.Builder, d *ir.Diagram, g *ir.Group, aliases map[string]string, seen map[string]bool, depth int) {
	if seen[g.ID] {
		return
	}
	seen[g.ID] = true
	pad := strings.Repeat(indent, depth)
	if g.Label == "" {
		fmt.Fprintf(b, "%spackage %s {\n", pad, aliases[g.ID])
	} else {
		fmt.Fprintf(b, "%spackage %q as %s {\n", pad, sanitize(g.Label), aliases[g.ID])
	}
	for _, c := range g.Children {
		if n, ok := d.Node(c); ok {
			writeNode(b, n, aliases, depth+1)
		} else if sub, ok := d.Group(c); ok {
			writeGroup(b, d, sub, aliases, seen, depth+1)
		}
	}
	fmt.Fprintf(b, "%s}\n", pad)
}

// operator renders the edge line. PlantUML deployment arrows carry either
// a standard head or none, so fancier arrowheads flatten to the standard
// one.
func operator(e *ir.Edge) string {
	mod := ""
	switch e.Line {
	case ir.LineDashed:
		mod = "[dashed]"
	case ir.LineDotted:
		mod = "[dotted]"
	case ir.LineThick:
		mod = "[bold]"
	}
	if e.ArrowTarget == ir.ArrowNone {
		if mod == "" {
			return "--"
		}
		return "-" + mod + "-"
	}
	if mod == "" {
		return "-->"
	}
	return "-" + mod + "->"
}

// sanitize keeps labels on one line and out of the quoting syntax.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
