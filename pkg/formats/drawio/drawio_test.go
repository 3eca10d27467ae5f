package drawio

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

func flow() *ir.Diagram {
	d := ir.New("flow")
	d.Name = "Flow"
	d.Nodes = []ir.Node{
		{ID: "start", Label: "Start", Shape: ir.ShapeRoundedRect, Position: &ir.Position{X: 20, Y: 20}, Size: &ir.Size{Width: 120, Height: 60}},
		{ID: "check", Label: "OK?", Shape: ir.ShapeDiamond, Position: &ir.Position{X: 200, Y: 20}, Size: &ir.Size{Width: 100, Height: 100}, Style: ir.Style{Fill: "#ffcc00"}},
		{ID: "done", Label: "Done", Shape: ir.ShapeRectangle, Position: &ir.Position{X: 200, Y: 200}},
		{ID: "db", Label: "Store", Shape: ir.ShapeCylinder, Position: &ir.Position{X: 440, Y: 60}, Size: &ir.Size{Width: 100, Height: 80}},
	}
	d.Edges = []ir.Edge{
		{ID: "start-check", Source: "start", Target: "check"},
		{ID: "check-db", Source: "check", Target: "db", Label: "yes"},
		{ID: "check-done", Source: "check", Target: "done", Line: ir.LineDashed, ArrowTarget: ir.ArrowOpen, Waypoints: []ir.Point{{X: 250, Y: 180}}},
	}
	d.Groups = []ir.Group{
		{ID: "persist", Label: "Persistence", Children: []string{"db"}, Position: &ir.Position{X: 400, Y: 20}, Size: &ir.Size{Width: 200, Height: 160}},
	}
	return d
}

const flowXML = xml.Header + `<mxfile host="diaflow">
  <diagram id="flow" name="Flow">
    <mxGraphModel>
      <root>
        <mxCell id="0"></mxCell>
        <mxCell id="1" parent="0"></mxCell>
        <mxCell id="persist" value="Persistence" style="group;" vertex="1" connectable="0" parent="1">
          <mxGeometry x="400" y="20" width="200" height="160" as="geometry"></mxGeometry>
        </mxCell>
        <mxCell id="start" value="Start" style="rounded=1;whiteSpace=wrap;html=1;" vertex="1" parent="1">
          <mxGeometry x="20" y="20" width="120" height="60" as="geometry"></mxGeometry>
        </mxCell>
        <mxCell id="check" value="OK?" style="rhombus;whiteSpace=wrap;html=1;fillColor=#ffcc00;" vertex="1" parent="1">
          <mxGeometry x="200" y="20" width="100" height="100" as="geometry"></mxGeometry>
        </mxCell>
        <mxCell id="done" value="Done" style="rounded=0;whiteSpace=wrap;html=1;" vertex="1" parent="1">
          <mxGeometry x="200" y="200" width="120" height="60" as="geometry"></mxGeometry>
        </mxCell>
        <mxCell id="db" value="Store" style="shape=cylinder3;whiteSpace=wrap;html=1;" vertex="1" parent="persist">
          <mxGeometry x="40" y="40" width="100" height="80" as="geometry"></mxGeometry>
        </mxCell>
        <mxCell id="start-check" style="edgeStyle=orthogonalEdgeStyle;rounded=0;html=1;" edge="1" parent="1" source="start" target="check">
          <mxGeometry relative="1" as="geometry"></mxGeometry>
        </mxCell>
        <mxCell id="check-db" value="yes" style="edgeStyle=orthogonalEdgeStyle;rounded=0;html=1;" edge="1" parent="1" source="check" target="db">
          <mxGeometry relative="1" as="geometry"></mxGeometry>
        </mxCell>
        <mxCell id="check-done" style="edgeStyle=orthogonalEdgeStyle;rounded=0;html=1;dashed=1;endArrow=open;endFill=0;" edge="1" parent="1" source="check" target="done">
          <mxGeometry relative="1" as="geometry">
            <Array as="points">
              <mxPoint x="250" y="180"></mxPoint>
            </Array>
          </mxGeometry>
        </mxCell>
      </root>
    </mxGraphModel>
  </diagram>
</mxfile>`

func TestGenerate(t *testing.T) {
	out, err := Generate(flow())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(out) != flowXML {
		t.Errorf("got:\n%s\nwant:\n%s", out, flowXML)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse([]byte(flowXML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.ID != "flow" || d.Name != "Flow" {
		t.Errorf("identity = %q/%q, want flow/Flow", d.ID, d.Name)
	}
	if len(d.Nodes) != 4 || len(d.Edges) != 3 || len(d.Groups) != 1 {
		t.Fatalf("got %d nodes, %d edges, %d groups", len(d.Nodes), len(d.Edges), len(d.Groups))
	}

	start, ok := d.Node("start")
	if !ok {
		t.Fatal("node start missing")
	}
	if start.Shape != ir.ShapeRoundedRect || start.Label != "Start" {
		t.Errorf("start = %s %q", start.Shape, start.Label)
	}
	if start.Metadata[styleKey] != "rounded=1;whiteSpace=wrap;html=1;" {
		t.Errorf("start style metadata = %v", start.Metadata[styleKey])
	}

	check, _ := d.Node("check")
	if check.Shape != ir.ShapeDiamond || check.Style.Fill != "#ffcc00" {
		t.Errorf("check = %s fill %q", check.Shape, check.Style.Fill)
	}

	// Geometry inside a group is relative in the file; positions come back
	// absolute.
	db, ok := d.Node("db")
	if !ok {
		t.Fatal("node db missing")
	}
	if db.Shape != ir.ShapeCylinder {
		t.Errorf("db shape = %s", db.Shape)
	}
	if db.Position == nil || db.Position.X != 440 || db.Position.Y != 60 {
		t.Errorf("db position = %+v, want (440, 60)", db.Position)
	}

	g, ok := d.Group("persist")
	if !ok {
		t.Fatal("group persist missing")
	}
	if len(g.Children) != 1 || g.Children[0] != "db" {
		t.Errorf("persist children = %v", g.Children)
	}
	if g.Position == nil || g.Position.X != 400 || g.Size == nil || g.Size.Height != 160 {
		t.Errorf("persist geometry = %+v %+v", g.Position, g.Size)
	}

	first, _ := d.Edge("start-check")
	if first.ArrowTarget != ir.ArrowStandard || first.ArrowSource != ir.ArrowNone || first.Line != ir.LineSolid {
		t.Errorf("start-check = %s/%s/%s", first.ArrowSource, first.ArrowTarget, first.Line)
	}
	last, _ := d.Edge("check-done")
	if last.Line != ir.LineDashed || last.ArrowTarget != ir.ArrowOpen {
		t.Errorf("check-done = %s %s", last.Line, last.ArrowTarget)
	}
	if len(last.Waypoints) != 1 || last.Waypoints[0] != (ir.Point{X: 250, Y: 180}) {
		t.Errorf("check-done waypoints = %v", last.Waypoints)
	}
}

func TestParseBareModel(t *testing.T) {
	src := `<mxGraphModel>
  <root>
    <mxCell id="0"/>
    <mxCell id="1" parent="0"/>
    <mxCell id="a" value="Solo" style="ellipse;whiteSpace=wrap;html=1;" vertex="1" parent="1">
      <mxGeometry x="5" y="7" width="120" height="70" as="geometry"/>
    </mxCell>
  </root>
</mxGraphModel>`
	d, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.ID != "diagram" {
		t.Errorf("ID = %q, want fallback diagram", d.ID)
	}
	a, ok := d.Node("a")
	if !ok {
		t.Fatal("node a missing")
	}
	if a.Shape != ir.ShapeEllipse || a.Position.X != 5 || a.Size.Width != 120 {
		t.Errorf("a = %s %+v %+v", a.Shape, a.Position, a.Size)
	}
}

// compressedPage is base64(deflate(urlencode(model))) for a single node
// "a" labelled Hi at (10, 20), the format draw.io saves by default.
const compressedPage = `jZFBDoMgEEVPwx6hi66rrd101ROQMhESEINj1dsXHazpwqQLkpn3+ZM/wGTppzqqzjyCBsfklckyhoBU+akE55jgVjNZMSF4OkzcDtRiVXmnIrT4j0GR4a3cAETullCPs8sohqHVsDg4k5fRWIRnp16LOqbkiRn0KXpVpDIPhIgwHYZaUU5UQ/CAcU5XNgNl5jO1eQU+Wo2G0DkjA7YxeeYpM9VT33zn7vunIj/B1u5PvWo/P/EB`

func TestParseCompressed(t *testing.T) {
	src := `<mxfile host="app.diagrams.net" modified="2024-05-01T10:00:00.000Z" version="24.2.5">
  <diagram id="p1" name="Page-1">` + compressedPage + `</diagram>
</mxfile>`
	d, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.ID != "p1" || d.Name != "Page-1" {
		t.Errorf("identity = %q/%q", d.ID, d.Name)
	}
	a, ok := d.Node("a")
	if !ok {
		t.Fatalf("node a missing, nodes = %v", d.Nodes)
	}
	if a.Label != "Hi" || a.Position.X != 10 || a.Position.Y != 20 || a.Size.Width != 80 || a.Size.Height != 40 {
		t.Errorf("a = %q %+v %+v", a.Label, a.Position, a.Size)
	}
}

func TestStyleSurvivesRoundTrip(t *testing.T) {
	// Unknown style keys live only in metadata and must come back verbatim.
	const exotic = "shape=mxgraph.aws4.lambda;sketch=0;fillColor=#ED7100;points=[[0,0],[1,1]];"
	src := `<mxGraphModel><root>
    <mxCell id="0"/><mxCell id="1" parent="0"/>
    <mxCell id="fn" value="Handler" style="` + exotic + `" vertex="1" parent="1">
      <mxGeometry x="1" y="2" width="78" height="78" as="geometry"/>
    </mxCell>
  </root></mxGraphModel>`
	d, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fn, _ := d.Node("fn")
	if fn.Shape != ir.ShapeCustom {
		t.Errorf("shape = %s, want custom", fn.Shape)
	}
	if fn.Style.Fill != "#ED7100" {
		t.Errorf("fill = %q", fn.Style.Fill)
	}

	out, err := Generate(d)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(string(out), `style="`+exotic+`"`) {
		t.Errorf("exotic style not reused verbatim:\n%s", out)
	}
}

func TestArrowRoundTrip(t *testing.T) {
	arrows := []ir.ArrowType{
		ir.ArrowNone, ir.ArrowStandard, ir.ArrowOpen,
		ir.ArrowDiamond, ir.ArrowDiamondFilled,
		ir.ArrowCircle, ir.ArrowCircleFilled,
		ir.ArrowCross, ir.ArrowBar,
	}
	for _, a := range arrows {
		t.Run(string(a), func(t *testing.T) {
			d := ir.New("t")
			d.Nodes = []ir.Node{{ID: "x"}, {ID: "y"}}
			d.Edges = []ir.Edge{{ID: "e", Source: "x", Target: "y", ArrowSource: a, ArrowTarget: a}}
			out, err := Generate(d)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			back, err := Parse(out)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			e, ok := back.Edge("e")
			if !ok {
				t.Fatal("edge e missing")
			}
			if e.ArrowSource != a || e.ArrowTarget != a {
				t.Errorf("arrows = %s/%s, want %s", e.ArrowSource, e.ArrowTarget, a)
			}
		})
	}
}

func TestLineRoundTrip(t *testing.T) {
	tests := []struct {
		line        ir.LineType
		wantLine    ir.LineType
		wantStrokeW float64
	}{
		{ir.LineSolid, ir.LineSolid, 0},
		{ir.LineDashed, ir.LineDashed, 0},
		{ir.LineDotted, ir.LineDotted, 0},
		// draw.io has no thick line kind; it degrades to a wide solid
		// stroke.
		{ir.LineThick, ir.LineSolid, 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.line), func(t *testing.T) {
			d := ir.New("t")
			d.Nodes = []ir.Node{{ID: "x"}, {ID: "y"}}
			d.Edges = []ir.Edge{{ID: "e", Source: "x", Target: "y", Line: tt.line}}
			out, err := Generate(d)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			back, err := Parse(out)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			e, _ := back.Edge("e")
			if e.Line != tt.wantLine || e.Style.StrokeWidth != tt.wantStrokeW {
				t.Errorf("got %s width %g, want %s width %g", e.Line, e.Style.StrokeWidth, tt.wantLine, tt.wantStrokeW)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"not xml", "hello there", "not a draw.io document"},
		{"wrong root", "<svg></svg>", "not a draw.io document"},
		{"no diagram", "<mxfile></mxfile>", "no diagram"},
		{"empty diagram", `<mxfile><diagram name="p"></diagram></mxfile>`, "has no content"},
		{"bad compression", `<mxfile><diagram name="p">!!!not base64!!!</diagram></mxfile>`, "decompress"},
		{"cell without id", `<mxGraphModel><root><mxCell vertex="1"/></root></mxGraphModel>`, "without id"},
		{"duplicate cell", `<mxGraphModel><root><mxCell id="a" vertex="1"/><mxCell id="a" vertex="1"/></root></mxGraphModel>`, "duplicate cell"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if d != nil {
				t.Error("diagram should be nil on error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			if !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeParse)
			}
		})
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"mxfile", `<mxfile host="x"></mxfile>`, true},
		{"bare model", `<mxGraphModel><root/></mxGraphModel>`, true},
		{"leading space", "\n  <mxfile></mxfile>", true},
		{"mermaid", "flowchart TB\n  a --> b", false},
		{"other xml", "<svg></svg>", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff([]byte(tt.src)); got != tt.want {
				t.Errorf("Sniff = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	out, err := Generate(flow())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if back.ID != "flow" || back.Name != "Flow" {
		t.Errorf("identity = %q/%q", back.ID, back.Name)
	}
	if len(back.Nodes) != 4 || len(back.Edges) != 3 || len(back.Groups) != 1 {
		t.Fatalf("got %d nodes, %d edges, %d groups", len(back.Nodes), len(back.Edges), len(back.Groups))
	}
	for _, want := range flow().Nodes {
		n, ok := back.Node(want.ID)
		if !ok {
			t.Fatalf("node %s missing", want.ID)
		}
		if n.Shape != want.Shape {
			t.Errorf("node %s shape = %s, want %s", want.ID, n.Shape, want.Shape)
		}
		if n.Position == nil || *n.Position != *want.Position {
			t.Errorf("node %s position = %+v, want %+v", want.ID, n.Position, want.Position)
		}
	}
	g, ok := back.Group("persist")
	if !ok || len(g.Children) != 1 || g.Children[0] != "db" {
		t.Errorf("persist = %+v", g)
	}
}
