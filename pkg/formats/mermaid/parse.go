package mermaid

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

var (
	headerRe   = regexp.MustCompile(`^(?:flowchart|graph)(?:\s+(TB|TD|BT|LR|RL))?$`)
	subgraphRe = regexp.MustCompile(`^subgraph\s+([A-Za-z0-9_-]+)(?:\s*\[(.+)\])?$`)
	idRe       = regexp.MustCompile(`^[A-Za-z0-9_-]+`)
	linkRe     = regexp.MustCompile(`\s*(-\.+->|-\.+-|==+>|===+|--+>|---+)\s*`)
	linkTextRe = regexp.MustCompile(`^\|([^|]*)\|\s*`)
)

// Directives the grammar recognizes but this parser does not support.
var unsupported = []string{"style ", "classDef ", "class ", "linkStyle ", "click "}

// Sniff reports whether data starts with a flowchart header, ignoring
// blank lines and comments.
func Sniff(data []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		return headerRe.MatchString(strings.TrimSuffix(line, ";"))
	}
	return false
}

type parser struct {
	d     *ir.Diagram
	nodes map[string]bool
	edges map[string]bool
	stack []int // indexes into d.Groups, innermost last
}

// Parse reads Mermaid flowchart text into a diagram. On any error the
// returned diagram is nil; there are no partial results.
func Parse(data []byte) (*ir.Diagram, error) {
	p := &parser{
		d:     ir.New("diagram"),
		nodes: make(map[string]bool),
		edges: make(map[string]bool),
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	headerSeen := false
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		line = strings.TrimSpace(strings.TrimSuffix(line, ";"))

		if !headerSeen {
			m := headerRe.FindStringSubmatch(line)
			if m == nil {
				return nil, errors.New(errors.ErrCodeParse,
					"line %d: expected flowchart header, got %q", lineNo, line)
			}
			dir := m[1]
			if dir == "" || dir == "TD" {
				dir = "TB"
			}
			p.d.Metadata = ir.Metadata{"direction": dir}
			headerSeen = true
			continue
		}
		if err := p.parseLine(line, lineNo); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read input")
	}
	if !headerSeen {
		return nil, errors.New(errors.ErrCodeParse, "empty input: expected flowchart header")
	}
	if len(p.stack) > 0 {
		g := p.d.Groups[p.stack[len(p.stack)-1]]
		return nil, errors.New(errors.ErrCodeParse, "unclosed subgraph %q", g.ID)
	}
	return p.d, nil
}

func (p *parser) parseLine(line string, n int) error {
	switch {
	case line == "end":
		if len(p.stack) == 0 {
			return errors.New(errors.ErrCodeParse, "line %d: end without open subgraph", n)
		}
		p.stack = p.stack[:len(p.stack)-1]
		return nil
	case line == "subgraph" || strings.HasPrefix(line, "subgraph "):
		m := subgraphRe.FindStringSubmatch(line)
		if m == nil {
			return errors.New(errors.ErrCodeParse, "line %d: malformed subgraph %q", n, line)
		}
		return p.openGroup(m[1], unquote(m[2]), n)
	case strings.HasPrefix(line, "direction "):
		// Per-subgraph direction affects rendering only.
		return nil
	}
	for _, dir := range unsupported {
		if strings.HasPrefix(line, dir) {
			return errors.New(errors.ErrCodeParse,
				"line %d: unsupported directive %q", n, strings.TrimSpace(dir))
		}
	}

	if locs := linkMatches(line); len(locs) > 0 {
		return p.parseLinkLine(line, locs, n)
	}
	return p.parseNodeLine(line, n)
}

// linkMatches finds link operators outside quoted labels, so an arrow
// inside a node label does not split the line.
func linkMatches(line string) [][]int {
	quoted := quotedRanges(line)
	var out [][]int
	for _, loc := range linkRe.FindAllStringSubmatchIndex(line, -1) {
		if !inRanges(quoted, loc[2]) {
			out = append(out, loc)
		}
	}
	return out
}

func quotedRanges(s string) [][2]int {
	var (
		ranges [][2]int
		start  = -1
	)
	for i, r := range s {
		if r != '"' {
			continue
		}
		if start < 0 {
			start = i
		} else {
			ranges = append(ranges, [2]int{start, i})
			start = -1
		}
	}
	return ranges
}

func inRanges(ranges [][2]int, pos int) bool {
	for _, r := range ranges {
		if pos > r[0] && pos < r[1] {
			return true
		}
	}
	return false
}

func (p *parser) openGroup(id, label string, n int) error {
	if _, ok := p.d.Group(id); ok {
		return errors.New(errors.ErrCodeParse, "line %d: duplicate subgraph %q", n, id)
	}
	p.addChild(id)
	p.d.Groups = append(p.d.Groups, ir.Group{ID: id, Label: label})
	p.stack = append(p.stack, len(p.d.Groups)-1)
	return nil
}

// addChild records id as a member of the innermost open subgraph, if any.
func (p *parser) addChild(id string) {
	if len(p.stack) == 0 {
		return
	}
	g := &p.d.Groups[p.stack[len(p.stack)-1]]
	if !g.HasChild(id) {
		g.Children = append(g.Children, id)
	}
}

func (p *parser) parseNodeLine(line string, n int) error {
	id, shape, label, hasDef, err := splitNodeDef(line)
	if err != nil {
		return errors.Wrap(errors.ErrCodeParse, err, "line %d", n)
	}
	p.ensureNode(id, shape, label, hasDef, true)
	return nil
}

func (p *parser) parseLinkLine(line string, locs [][]int, n int) error {
	type hop struct{ op, label string }

	var (
		segments []string
		hops     []hop
	)
	prev := 0
	for _, loc := range locs {
		segments = append(segments, line[prev:loc[0]])
		hops = append(hops, hop{op: line[loc[2]:loc[3]]})
		prev = loc[1]
	}
	segments = append(segments, line[prev:])

	ids := make([]string, len(segments))
	for i, seg := range segments {
		if i > 0 {
			if m := linkTextRe.FindStringSubmatch(seg); m != nil {
				hops[i-1].label = unquote(m[1])
				seg = seg[len(m[0]):]
			}
		}
		id, shape, label, hasDef, err := splitNodeDef(seg)
		if err != nil {
			return errors.Wrap(errors.ErrCodeParse, err, "line %d", n)
		}
		p.ensureNode(id, shape, label, hasDef, false)
		ids[i] = id
	}

	for i, h := range hops {
		lt, arrow := opStyle(h.op)
		p.d.Edges = append(p.d.Edges, ir.Edge{
			ID:          p.edgeID(ids[i], ids[i+1]),
			Source:      ids[i],
			Target:      ids[i+1],
			Label:       h.label,
			ArrowSource: ir.ArrowNone,
			ArrowTarget: arrow,
			Line:        lt,
		})
	}
	return nil
}

// ensureNode registers a node on first sight and updates label and shape on
// re-declaration. Member nodes join the innermost open subgraph; non-member
// references (link endpoints) join only when first seen there.
func (p *parser) ensureNode(id string, shape ir.Shape, label string, hasDef, member bool) {
	if member || !p.nodes[id] {
		p.addChild(id)
	}
	if p.nodes[id] {
		if hasDef {
			nd, _ := p.d.Node(id)
			nd.Label = label
			nd.Shape = shape
		}
		return
	}
	p.nodes[id] = true
	p.d.Nodes = append(p.d.Nodes, ir.Node{ID: id, Label: label, Shape: shape})
}

func (p *parser) edgeID(src, dst string) string {
	id := src + "-" + dst
	for k := 2; p.edges[id] || p.nodes[id]; k++ {
		id = fmt.Sprintf("%s-%s-%d", src, dst, k)
	}
	p.edges[id] = true
	return id
}

var nodeDelims = []struct {
	open, close string
	shape       ir.Shape
}{
	{"((", "))", ir.ShapeCircle},
	{"([", "])", ir.ShapeEllipse},
	{"[(", ")]", ir.ShapeCylinder},
	{"{{", "}}", ir.ShapeHexagon},
	{"[/", "/]", ir.ShapeParallelogram},
	{"[/", `\]`, ir.ShapeTrapezoid},
	{`[\`, `\]`, ir.ShapeParallelogram},
	{`[\`, "/]", ir.ShapeTrapezoid},
	{"[", "]", ir.ShapeRectangle},
	{"(", ")", ir.ShapeRoundedRect},
	{"{", "}", ir.ShapeDiamond},
}

// splitNodeDef splits "id" or "id<open>label<close>" into its parts.
// hasDef is false for a bare id reference.
func splitNodeDef(s string) (id string, shape ir.Shape, label string, hasDef bool, err error) {
	s = strings.TrimSpace(s)
	id = idRe.FindString(s)
	if id == "" {
		return "", "", "", false, fmt.Errorf("invalid node %q", s)
	}
	rest := s[len(id):]
	if rest == "" {
		return id, "", "", false, nil
	}
	for _, d := range nodeDelims {
		if len(rest) < len(d.open)+len(d.close) {
			continue
		}
		if strings.HasPrefix(rest, d.open) && strings.HasSuffix(rest, d.close) {
			inner := rest[len(d.open) : len(rest)-len(d.close)]
			return id, d.shape, unquote(inner), true, nil
		}
	}
	return "", "", "", false, fmt.Errorf("unsupported node syntax %q", s)
}

func opStyle(op string) (ir.LineType, ir.ArrowType) {
	line := ir.LineSolid
	switch {
	case strings.Contains(op, "."):
		line = ir.LineDashed
	case strings.HasPrefix(op, "="):
		line = ir.LineThick
	}
	if strings.HasSuffix(op, ">") {
		return line, ir.ArrowStandard
	}
	return line, ir.ArrowNone
}

func unescape(s string) string { return strings.ReplaceAll(s, "#quot;", `"`) }

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return unescape(s)
}
