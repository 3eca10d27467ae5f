package drawio

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/xml"
	"io"
	"net/url"
	"strings"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

// Sniff reports whether data looks like a draw.io document.
func Sniff(data []byte) bool {
	head := strings.TrimSpace(string(data))
	if !strings.HasPrefix(head, "<") {
		return false
	}
	return strings.Contains(head, "<mxfile") || strings.Contains(head, "<mxGraphModel")
}

// Parse reads a draw.io document. Both mxfile wrappers and bare
// mxGraphModel roots are accepted; compressed diagram content is inflated
// first. Multi-page files contribute only their first page.
func Parse(data []byte) (*ir.Diagram, error) {
	d := ir.New("diagram")

	model, err := decodeModel(data, d)
	if err != nil {
		return nil, err
	}

	cells := model.Root.Cells
	byID := make(map[string]*mxCell, len(cells))
	for i := range cells {
		c := &cells[i]
		if c.ID == "" {
			return nil, errors.New(errors.ErrCodeParse, "mxCell without id")
		}
		if _, dup := byID[c.ID]; dup {
			return nil, errors.New(errors.ErrCodeParse, "duplicate cell id %q", c.ID)
		}
		byID[c.ID] = c
	}

	// origin resolves the absolute position of a container cell so child
	// geometry can be rebased. Depth is bounded to survive parent cycles.
	var origin func(id string, depth int) ir.Point
	origin = func(id string, depth int) ir.Point {
		c, ok := byID[id]
		if !ok || id == "0" || id == "1" || depth > len(cells) {
			return ir.Point{}
		}
		o := origin(c.Parent, depth+1)
		if c.Geometry != nil {
			return ir.Point{X: o.X + c.Geometry.X, Y: o.Y + c.Geometry.Y}
		}
		return o
	}

	groupIDs := make(map[string]bool)
	for i := range cells {
		if isGroupCell(&cells[i]) {
			groupIDs[cells[i].ID] = true
		}
	}

	members := make(map[string][]string)
	for i := range cells {
		c := &cells[i]
		if c.ID == "0" || c.ID == "1" {
			continue
		}
		switch {
		case groupIDs[c.ID]:
			d.Groups = append(d.Groups, parseGroup(c, origin(c.Parent, 0)))
		case c.Vertex == "1":
			d.Nodes = append(d.Nodes, parseNode(c, origin(c.Parent, 0)))
		case c.Edge == "1":
			d.Edges = append(d.Edges, parseEdge(c, origin(c.Parent, 0)))
		default:
			continue
		}
		if groupIDs[c.Parent] {
			members[c.Parent] = append(members[c.Parent], c.ID)
		}
	}
	for i := range d.Groups {
		d.Groups[i].Children = append(d.Groups[i].Children, members[d.Groups[i].ID]...)
	}
	return d, nil
}

// decodeModel locates the mxGraphModel inside data, inflating compressed
// diagram content when needed, and copies diagram identity onto d.
func decodeModel(data []byte, d *ir.Diagram) (*mxGraphModel, error) {
	var file mxFile
	fileErr := xml.Unmarshal(data, &file)
	if fileErr != nil {
		var model mxGraphModel
		if err := xml.Unmarshal(data, &model); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, fileErr, "not a draw.io document")
		}
		return &model, nil
	}

	if len(file.Diagrams) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "mxfile contains no diagram")
	}
	page := file.Diagrams[0]
	if page.ID != "" {
		d.ID = page.ID
	}
	d.Name = page.Name

	if page.Model != nil {
		return page.Model, nil
	}
	content := strings.TrimSpace(page.Content)
	if content == "" {
		return nil, errors.New(errors.ErrCodeParse, "diagram %q has no content", page.Name)
	}
	raw, err := inflate(content)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decompress diagram %q", page.Name)
	}
	var model mxGraphModel
	if err := xml.Unmarshal(raw, &model); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode diagram %q", page.Name)
	}
	return &model, nil
}

// inflate reverses the draw.io compressed save format: base64, raw
// deflate, then URL percent-encoding.
func inflate(content string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, err
	}
	inflated, err := io.ReadAll(flate.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return nil, err
	}
	plain, err := url.QueryUnescape(string(inflated))
	if err != nil {
		return nil, err
	}
	return []byte(plain), nil
}

// isGroupCell recognizes container cells. draw.io marks plain groups with
// the group style token; swimlane-style containers set connectable="0".
func isGroupCell(c *mxCell) bool {
	if c.Vertex != "1" {
		return false
	}
	if c.Connectable == "0" {
		return true
	}
	return parseStyle(c.Style).tokens["group"]
}

func parseGroup(c *mxCell, origin ir.Point) ir.Group {
	g := ir.Group{
		ID:        c.ID,
		Label:     c.Value,
		Collapsed: c.Collapsed == "1",
	}
	if c.Style != "" {
		ps := parseStyle(c.Style)
		g.Style = ps.readStyle()
		g.Metadata = ir.Metadata{styleKey: c.Style}
	}
	if c.Geometry != nil {
		g.Position = &ir.Position{X: origin.X + c.Geometry.X, Y: origin.Y + c.Geometry.Y}
		if c.Geometry.Width > 0 || c.Geometry.Height > 0 {
			g.Size = &ir.Size{Width: c.Geometry.Width, Height: c.Geometry.Height}
		}
	}
	return g
}

func parseNode(c *mxCell, origin ir.Point) ir.Node {
	ps := parseStyle(c.Style)
	n := ir.Node{
		ID:    c.ID,
		Label: c.Value,
		Shape: ps.nodeShape(),
		Style: ps.readStyle(),
	}
	if c.Style != "" {
		n.Metadata = ir.Metadata{styleKey: c.Style}
	}
	if c.Geometry != nil {
		n.Position = &ir.Position{X: origin.X + c.Geometry.X, Y: origin.Y + c.Geometry.Y}
		if c.Geometry.Width > 0 || c.Geometry.Height > 0 {
			n.Size = &ir.Size{Width: c.Geometry.Width, Height: c.Geometry.Height}
		}
	}
	return n
}

func parseEdge(c *mxCell, origin ir.Point) ir.Edge {
	ps := parseStyle(c.Style)
	e := ir.Edge{
		ID:          c.ID,
		Source:      c.Source,
		Target:      c.Target,
		Label:       c.Value,
		ArrowSource: parseArrow(ps, "startArrow", "startFill", ir.ArrowNone),
		ArrowTarget: parseArrow(ps, "endArrow", "endFill", ir.ArrowStandard),
		Line:        parseLine(ps),
		Style:       ps.readStyle(),
	}
	if c.Style != "" {
		e.Metadata = ir.Metadata{styleKey: c.Style}
	}
	if c.Geometry != nil && c.Geometry.Points != nil {
		for _, p := range c.Geometry.Points.Points {
			e.Waypoints = append(e.Waypoints, ir.Point{X: origin.X + p.X, Y: origin.Y + p.Y})
		}
	}
	return e
}

func parseLine(ps parsedStyle) ir.LineType {
	if !ps.is("dashed", "1") {
		return ir.LineSolid
	}
	if _, ok := ps.values["dashPattern"]; ok {
		return ir.LineDotted
	}
	return ir.LineDashed
}

func parseArrow(ps parsedStyle, key, fillKey string, dflt ir.ArrowType) ir.ArrowType {
	v, ok := ps.values[key]
	if !ok {
		return dflt
	}
	filled := ps.is(fillKey, "1")
	switch v {
	case "none":
		return ir.ArrowNone
	case "classic", "classicThin", "block", "blockThin":
		return ir.ArrowStandard
	case "open", "openThin":
		return ir.ArrowOpen
	case "diamond", "diamondThin":
		if filled {
			return ir.ArrowDiamondFilled
		}
		return ir.ArrowDiamond
	case "oval":
		if filled {
			return ir.ArrowCircleFilled
		}
		return ir.ArrowCircle
	case "cross":
		return ir.ArrowCross
	case "dash":
		return ir.ArrowBar
	default:
		return dflt
	}
}
