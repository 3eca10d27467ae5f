package dot

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

const idPat = `"(?:[^"\\]|\\.)*"|[A-Za-z0-9_.-]+`

var (
	openRe     = regexp.MustCompile(`^(?:strict\s+)?digraph(?:\s+(` + idPat + `))?\s*\{$`)
	clusterRe  = regexp.MustCompile(`^subgraph\s+(` + idPat + `)\s*\{$`)
	defaultsRe = regexp.MustCompile(`^(?:node|edge|graph)\s*\[.*\];?$`)
	setRe      = regexp.MustCompile(`^(\w+)\s*=\s*(` + idPat + `);?$`)
	nodeStmtRe = regexp.MustCompile(`^(` + idPat + `)\s*(?:\[(.*)\])?;?$`)
	edgeStmtRe = regexp.MustCompile(`^(` + idPat + `)\s*->\s*(` + idPat + `)\s*(?:\[(.*)\])?;?$`)
	attrRe     = regexp.MustCompile(`(\w+)\s*=\s*("(?:[^"\\]|\\.)*"|[^,\]]+)`)
)

var shapeBack = map[string]ir.Shape{
	"box":           ir.ShapeRectangle,
	"rect":          ir.ShapeRectangle,
	"rectangle":     ir.ShapeRectangle,
	"square":        ir.ShapeRectangle,
	"circle":        ir.ShapeCircle,
	"doublecircle":  ir.ShapeCircle,
	"ellipse":       ir.ShapeEllipse,
	"oval":          ir.ShapeEllipse,
	"diamond":       ir.ShapeDiamond,
	"hexagon":       ir.ShapeHexagon,
	"parallelogram": ir.ShapeParallelogram,
	"trapezium":     ir.ShapeTrapezoid,
	"cylinder":      ir.ShapeCylinder,
	"note":          ir.ShapeNote,
}

var arrowBack = map[string]ir.ArrowType{
	"none":     ir.ArrowNone,
	"normal":   ir.ArrowStandard,
	"open":     ir.ArrowOpen,
	"vee":      ir.ArrowOpen,
	"odiamond": ir.ArrowDiamond,
	"diamond":  ir.ArrowDiamondFilled,
	"odot":     ir.ArrowCircle,
	"dot":      ir.ArrowCircleFilled,
	"tee":      ir.ArrowBar,
}

// Sniff reports whether data opens with a digraph statement.
func Sniff(data []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.HasPrefix(line, "digraph") || strings.HasPrefix(line, "strict digraph")
	}
	return false
}

type dotParser struct {
	d     *ir.Diagram
	nodes map[string]bool
	edges map[string]bool
	stack []int // open cluster indexes into d.Groups
}

// Parse reads a DOT digraph into a diagram. On any error the returned
// diagram is nil; there are no partial results.
func Parse(data []byte) (*ir.Diagram, error) {
	p := &dotParser{
		d:     ir.New("diagram"),
		nodes: make(map[string]bool),
		edges: make(map[string]bool),
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	started, closed := false, false
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		if !started {
			m := openRe.FindStringSubmatch(line)
			if m == nil {
				return nil, errors.New(errors.ErrCodeParse,
					"line %d: expected digraph header, got %q", lineNo, line)
			}
			if m[1] != "" {
				p.d.ID = unquote(m[1])
			}
			started = true
			continue
		}
		if closed {
			return nil, errors.New(errors.ErrCodeParse,
				"line %d: content after closing brace", lineNo)
		}

		if line == "}" {
			if len(p.stack) > 0 {
				p.stack = p.stack[:len(p.stack)-1]
			} else {
				closed = true
			}
			continue
		}
		if err := p.parseLine(line, lineNo); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read input")
	}
	if !started {
		return nil, errors.New(errors.ErrCodeParse, "empty input: expected digraph header")
	}
	if !closed {
		return nil, errors.New(errors.ErrCodeParse, "unexpected end of input: missing closing brace")
	}
	return p.d, nil
}

func (p *dotParser) parseLine(line string, n int) error {
	if m := clusterRe.FindStringSubmatch(line); m != nil {
		name := unquote(m[1])
		if !strings.HasPrefix(name, "cluster_") {
			return errors.New(errors.ErrCodeParse,
				"line %d: only cluster subgraphs are supported, got %q", n, name)
		}
		return p.openCluster(strings.TrimPrefix(name, "cluster_"), n)
	}
	if defaultsRe.MatchString(line) {
		return nil
	}
	if m := setRe.FindStringSubmatch(line); m != nil {
		p.setAttr(m[1], unquote(m[2]))
		return nil
	}
	if m := edgeStmtRe.FindStringSubmatch(line); m != nil {
		p.addEdge(unquote(m[1]), unquote(m[2]), parseAttrs(m[3]))
		return nil
	}
	if m := nodeStmtRe.FindStringSubmatch(line); m != nil {
		p.addNode(unquote(m[1]), parseAttrs(m[2]), true)
		return nil
	}
	return errors.New(errors.ErrCodeParse, "line %d: unsupported statement %q", n, line)
}

func (p *dotParser) openCluster(id string, n int) error {
	if _, ok := p.d.Group(id); ok {
		return errors.New(errors.ErrCodeParse, "line %d: duplicate cluster %q", n, id)
	}
	p.addChild(id)
	p.d.Groups = append(p.d.Groups, ir.Group{ID: id})
	p.stack = append(p.stack, len(p.d.Groups)-1)
	return nil
}

func (p *dotParser) addChild(id string) {
	if len(p.stack) == 0 {
		return
	}
	g := &p.d.Groups[p.stack[len(p.stack)-1]]
	if !g.HasChild(id) {
		g.Children = append(g.Children, id)
	}
}

// setAttr handles bare key=value statements: rankdir at any level, label
// on the root graph (diagram name) or an open cluster. Anything else is a
// cosmetic attribute and is dropped.
func (p *dotParser) setAttr(key, val string) {
	switch key {
	case "rankdir":
		switch val {
		case "TB", "BT", "LR", "RL":
			if p.d.Metadata == nil {
				p.d.Metadata = ir.Metadata{}
			}
			p.d.Metadata["direction"] = val
		}
	case "label":
		if len(p.stack) > 0 {
			p.d.Groups[p.stack[len(p.stack)-1]].Label = val
		} else {
			p.d.Name = val
		}
	}
}

func (p *dotParser) addNode(id string, attrs map[string]string, declared bool) {
	if declared || !p.nodes[id] {
		p.addChild(id)
	}
	if !p.nodes[id] {
		p.nodes[id] = true
		p.d.Nodes = append(p.d.Nodes, ir.Node{ID: id})
	}
	if len(attrs) == 0 {
		return
	}
	nd, _ := p.d.Node(id)
	if v, ok := attrs["label"]; ok {
		nd.Label = v
	}
	if v, ok := attrs["shape"]; ok {
		nd.Shape = shapeBack[v] // unknown shapes stay empty, meaning rectangle
	}
	if strings.Contains(attrs["style"], "rounded") {
		nd.Shape = ir.ShapeRoundedRect
	}
	if v, ok := attrs["fillcolor"]; ok {
		nd.Style.Fill = v
	}
	if v, ok := attrs["color"]; ok {
		nd.Style.Stroke = v
	}
}

func (p *dotParser) addEdge(src, dst string, attrs map[string]string) {
	p.addNode(src, nil, false)
	p.addNode(dst, nil, false)

	e := ir.Edge{
		ID:          p.edgeID(src, dst),
		Source:      src,
		Target:      dst,
		Label:       attrs["label"],
		ArrowSource: ir.ArrowNone,
		ArrowTarget: ir.ArrowStandard,
		Line:        ir.LineSolid,
	}
	switch attrs["style"] {
	case "dashed":
		e.Line = ir.LineDashed
	case "dotted":
		e.Line = ir.LineDotted
	case "bold":
		e.Line = ir.LineThick
	}
	if v, ok := attrs["arrowhead"]; ok {
		if a, known := arrowBack[v]; known {
			e.ArrowTarget = a
		}
	}
	if v, ok := attrs["arrowtail"]; ok {
		if a, known := arrowBack[v]; known {
			e.ArrowSource = a
		}
	}
	p.d.Edges = append(p.d.Edges, e)
}

func (p *dotParser) edgeID(src, dst string) string {
	id := src + "-" + dst
	for k := 2; p.edges[id] || p.nodes[id]; k++ {
		id = fmt.Sprintf("%s-%s-%d", src, dst, k)
	}
	p.edges[id] = true
	return id
}

func parseAttrs(s string) map[string]string {
	if s == "" {
		return nil
	}
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = unquote(strings.TrimSpace(m[2]))
	}
	return attrs
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, `\"`, `"`)
}
