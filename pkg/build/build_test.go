package build

import (
	"strings"
	"testing"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

func TestNew(t *testing.T) {
	t.Run("explicit id", func(t *testing.T) {
		d := New("flow").Preview()
		if d.ID != "flow" {
			t.Errorf("ID = %q, want %q", d.ID, "flow")
		}
		if d.Type != ir.TypeFlowchart {
			t.Errorf("Type = %q, want %q", d.Type, ir.TypeFlowchart)
		}
	})

	t.Run("generated id", func(t *testing.T) {
		d := New("").Preview()
		if !strings.HasPrefix(d.ID, "diagram-") || len(d.ID) <= len("diagram-") {
			t.Errorf("ID = %q, want generated diagram-<uuid>", d.ID)
		}
	})
}

func TestChainImmutable(t *testing.T) {
	base := New("flow")
	derived := base.AddNode(ir.Node{ID: "a"})

	if got := len(base.Preview().Nodes); got != 0 {
		t.Errorf("base has %d nodes after derived AddNode, want 0", got)
	}
	if got := len(derived.Preview().Nodes); got != 1 {
		t.Errorf("derived has %d nodes, want 1", got)
	}
}

func TestChainDoesNotAliasInputs(t *testing.T) {
	n := ir.Node{ID: "a", Label: "before", Metadata: ir.Metadata{"k": "v"}}
	b := New("flow").AddNode(n)

	n.Label = "after"
	n.Metadata["k"] = "changed"

	got, ok := b.Preview().Node("a")
	if !ok {
		t.Fatal("node a missing")
	}
	if got.Label != "before" {
		t.Errorf("Label = %q, input mutation leaked into builder", got.Label)
	}
	if got.Metadata["k"] != "v" {
		t.Errorf("Metadata = %v, input mutation leaked into builder", got.Metadata)
	}
}

func TestPreviewDoesNotAliasBuilder(t *testing.T) {
	b := New("flow").AddNode(ir.Node{ID: "a"})

	p := b.Preview()
	p.Nodes[0].Label = "scribbled"
	p.Nodes = append(p.Nodes, ir.Node{ID: "b"})

	d := b.Preview()
	if len(d.Nodes) != 1 || d.Nodes[0].Label != "" {
		t.Errorf("preview mutation leaked into builder: %+v", d.Nodes)
	}
}

func TestAddNodeDefaults(t *testing.T) {
	d := New("flow").
		AddNode(ir.Node{ID: "plain"}).
		AddNode(ir.Node{ID: "styled", Shape: ir.ShapeDiamond, Style: ir.Style{Fill: "#e3f2fd"}}).
		Preview()

	plain, _ := d.Node("plain")
	if plain.Shape != ir.ShapeRectangle {
		t.Errorf("Shape = %q, want rectangle", plain.Shape)
	}
	want := ir.Style{
		Fill:        ir.DefaultFill,
		Stroke:      ir.DefaultStroke,
		StrokeWidth: ir.DefaultStrokeWidth,
		FontSize:    ir.DefaultFontSize,
	}
	if plain.Style != want {
		t.Errorf("Style = %+v, want %+v", plain.Style, want)
	}

	styled, _ := d.Node("styled")
	if styled.Shape != ir.ShapeDiamond {
		t.Errorf("Shape = %q, caller value overwritten", styled.Shape)
	}
	if styled.Style.Fill != "#e3f2fd" {
		t.Errorf("Fill = %q, caller value overwritten", styled.Style.Fill)
	}
	if styled.Style.Stroke != ir.DefaultStroke {
		t.Errorf("Stroke = %q, default not applied alongside caller fill", styled.Style.Stroke)
	}
}

func TestAddNodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Builder
		wantCode errors.Code
		wantMsg  string
	}{
		{
			name:     "empty id",
			build:    func() *Builder { return New("flow").AddNode(ir.Node{}) },
			wantCode: errors.ErrCodeInvalidID,
			wantMsg:  "empty",
		},
		{
			name: "duplicate node id",
			build: func() *Builder {
				return New("flow").AddNode(ir.Node{ID: "a"}).AddNode(ir.Node{ID: "a"})
			},
			wantCode: errors.ErrCodeDuplicateID,
			wantMsg:  "already exists",
		},
		{
			name: "node id taken by group",
			build: func() *Builder {
				return New("flow").AddGroup(ir.Group{ID: "g"}).AddNode(ir.Node{ID: "g"})
			},
			wantCode: errors.ErrCodeDuplicateID,
			wantMsg:  "already exists",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Err()
			if err == nil {
				t.Fatal("Err() = nil, want error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %v, want %v", got, tt.wantCode)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err, tt.wantMsg)
			}
		})
	}
}

func TestAddEdge(t *testing.T) {
	d := New("flow").
		AddNode(ir.Node{ID: "a"}).
		AddNode(ir.Node{ID: "b"}).
		AddEdge(ir.Edge{Source: "a", Target: "b"}).
		Preview()

	e, ok := d.Edge("a-b")
	if !ok {
		t.Fatalf("generated edge id missing, edges = %+v", d.Edges)
	}
	if e.ArrowSource != ir.ArrowNone || e.ArrowTarget != ir.ArrowStandard || e.Line != ir.LineSolid {
		t.Errorf("edge defaults = %q/%q/%q, want none/arrow/solid", e.ArrowSource, e.ArrowTarget, e.Line)
	}
	if e.Style.Stroke != ir.DefaultStroke || e.Style.StrokeWidth != ir.DefaultStrokeWidth {
		t.Errorf("edge stroke defaults not applied: %+v", e.Style)
	}
	if e.Style.Fill != "" {
		t.Errorf("edge Fill = %q, edges take no fill default", e.Style.Fill)
	}
}

func TestAddEdgeErrors(t *testing.T) {
	two := func() *Builder {
		return New("flow").AddNode(ir.Node{ID: "a"}).AddNode(ir.Node{ID: "b"})
	}

	tests := []struct {
		name     string
		build    func() *Builder
		wantCode errors.Code
		wantMsg  string
	}{
		{
			name:     "unknown source",
			build:    func() *Builder { return two().AddEdge(ir.Edge{Source: "ghost", Target: "b"}) },
			wantCode: errors.ErrCodeNotFound,
			wantMsg:  `source node "ghost" not found`,
		},
		{
			name:     "unknown target",
			build:    func() *Builder { return two().AddEdge(ir.Edge{Source: "a", Target: "ghost"}) },
			wantCode: errors.ErrCodeNotFound,
			wantMsg:  `target node "ghost" not found`,
		},
		{
			name: "group endpoint",
			build: func() *Builder {
				return two().AddGroup(ir.Group{ID: "g"}).AddEdge(ir.Edge{Source: "a", Target: "g"})
			},
			wantCode: errors.ErrCodeNotFound,
			wantMsg:  "not found",
		},
		{
			name: "duplicate generated id",
			build: func() *Builder {
				return two().
					AddEdge(ir.Edge{Source: "a", Target: "b"}).
					AddEdge(ir.Edge{Source: "a", Target: "b"})
			},
			wantCode: errors.ErrCodeDuplicateID,
			wantMsg:  "already exists",
		},
		{
			name: "duplicate explicit id",
			build: func() *Builder {
				return two().
					AddEdge(ir.Edge{ID: "e1", Source: "a", Target: "b"}).
					AddEdge(ir.Edge{ID: "e1", Source: "b", Target: "a"})
			},
			wantCode: errors.ErrCodeDuplicateID,
			wantMsg:  "already exists",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Err()
			if err == nil {
				t.Fatal("Err() = nil, want error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %v, want %v", got, tt.wantCode)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err, tt.wantMsg)
			}
		})
	}
}

// A self loop connects a node to itself. The chain accepts it; only the
// connectivity check, which Build does not run, remarks on it.
func TestAddEdgeSelfLoop(t *testing.T) {
	d, err := New("flow").
		AddNode(ir.Node{ID: "a"}).
		AddEdge(ir.Edge{Source: "a", Target: "a"}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := d.Edge("a-a"); !ok {
		t.Errorf("self loop edge missing, edges = %+v", d.Edges)
	}
}

func TestAddGroup(t *testing.T) {
	d := New("flow").
		AddNode(ir.Node{ID: "a"}).
		AddGroup(ir.Group{ID: "inner", Children: []string{"a"}}).
		AddGroup(ir.Group{ID: "outer", Children: []string{"inner"}}).
		Preview()

	outer, ok := d.Group("outer")
	if !ok {
		t.Fatal("group outer missing")
	}
	if !outer.HasChild("inner") {
		t.Errorf("outer children = %v, want [inner]", outer.Children)
	}
	if outer.Style.Fill != ir.DefaultFill {
		t.Errorf("group style defaults not applied: %+v", outer.Style)
	}
}

func TestAddGroupErrors(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Builder
		wantCode errors.Code
		wantMsg  string
	}{
		{
			name: "group id taken by node",
			build: func() *Builder {
				return New("flow").AddNode(ir.Node{ID: "a"}).AddGroup(ir.Group{ID: "a"})
			},
			wantCode: errors.ErrCodeDuplicateID,
			wantMsg:  "already exists",
		},
		{
			name: "duplicate group id",
			build: func() *Builder {
				return New("flow").AddGroup(ir.Group{ID: "g"}).AddGroup(ir.Group{ID: "g"})
			},
			wantCode: errors.ErrCodeDuplicateID,
			wantMsg:  "already exists",
		},
		{
			name: "unknown child",
			build: func() *Builder {
				return New("flow").AddGroup(ir.Group{ID: "g", Children: []string{"ghost"}})
			},
			wantCode: errors.ErrCodeNotFound,
			wantMsg:  `group child "ghost" not found`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Err()
			if err == nil {
				t.Fatal("Err() = nil, want error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %v, want %v", got, tt.wantCode)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err, tt.wantMsg)
			}
		})
	}
}

func TestViewport(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d := New("flow").Viewport(ir.Viewport{Width: 800, Height: 600}).Preview()
		if d.Viewport == nil || d.Viewport.Width != 800 || d.Viewport.Height != 600 {
			t.Errorf("Viewport = %+v, want 800x600", d.Viewport)
		}
	})

	t.Run("non-positive size", func(t *testing.T) {
		b := New("flow").Viewport(ir.Viewport{Width: 0, Height: 600})
		if b.Err() == nil {
			t.Fatal("Err() = nil, want error")
		}
		if got := errors.GetCode(b.Err()); got != errors.ErrCodeInvalidGeometry {
			t.Errorf("code = %v, want %v", got, errors.ErrCodeInvalidGeometry)
		}
	})
}

func TestMeta(t *testing.T) {
	d := New("flow").Meta("author", "it").Meta("rev", 3).Preview()
	if d.Metadata["author"] != "it" || d.Metadata["rev"] != 3 {
		t.Errorf("Metadata = %v", d.Metadata)
	}
}

func TestTypeUnknown(t *testing.T) {
	b := New("flow").Type("bogus")
	if b.Err() == nil {
		t.Fatal("Err() = nil, want error for unknown type")
	}
	if got := errors.GetCode(b.Err()); got != errors.ErrCodeInvalidInput {
		t.Errorf("code = %v, want %v", got, errors.ErrCodeInvalidInput)
	}
}

func TestPoisonedChain(t *testing.T) {
	b := New("flow").
		AddNode(ir.Node{ID: "a"}).
		AddNode(ir.Node{ID: "a"}). // poisons
		AddNode(ir.Node{ID: "b"}).
		Name("ignored")

	first := b.Err()
	if first == nil {
		t.Fatal("Err() = nil, want first violation")
	}
	if !strings.Contains(first.Error(), "already exists") {
		t.Errorf("Err() = %q, want the duplicate violation", first)
	}

	// Later calls are no-ops and do not replace the first error.
	if _, err := b.Build(); err != first {
		t.Errorf("Build() error = %v, want the chain's first error", err)
	}

	// Preview keeps the last good state.
	d := b.Preview()
	if len(d.Nodes) != 1 || d.Name != "" {
		t.Errorf("preview after poison = %d nodes, name %q, want 1 node and empty name", len(d.Nodes), d.Name)
	}
}

func TestBuild(t *testing.T) {
	b := New("flow").
		Name("Order Flow").
		AddNode(ir.Node{ID: "a"}).
		AddNode(ir.Node{ID: "b"}).
		AddEdge(ir.Edge{Source: "a", Target: "b"})

	d, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(d.Nodes) != 2 || len(d.Edges) != 1 {
		t.Errorf("built %d nodes, %d edges", len(d.Nodes), len(d.Edges))
	}

	// The result is a clone. The builder stays usable.
	d.Nodes[0].Label = "scribbled"
	d2, err := b.Build()
	if err != nil {
		t.Fatalf("second Build() error = %v", err)
	}
	if d2.Nodes[0].Label != "" {
		t.Error("mutating a built diagram leaked into the builder")
	}
}

func TestBuildEmptyDiagram(t *testing.T) {
	d, err := New("empty").Build()
	if err != nil {
		t.Fatalf("Build() error = %v, empty diagrams are valid", err)
	}
	if len(d.Nodes) != 0 {
		t.Errorf("Nodes = %+v, want none", d.Nodes)
	}
}

// An edge may reuse a node's ID without tripping any chain check: the
// chain keeps edges in their own namespace. Build still fails, because
// full validation checks uniqueness across all three element kinds.
func TestEdgeNodeIDCollision(t *testing.T) {
	b := New("flow").
		AddNode(ir.Node{ID: "a"}).
		AddNode(ir.Node{ID: "b"}).
		AddEdge(ir.Edge{ID: "a", Source: "a", Target: "b"})

	if err := b.Err(); err != nil {
		t.Fatalf("Err() = %v, chain should accept the colliding edge id", err)
	}

	_, err := b.Build()
	if err == nil {
		t.Fatal("Build() = nil error, want shared-namespace duplicate")
	}
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeValidation)
	}
	if !strings.Contains(err.Error(), "duplicate id") {
		t.Errorf("error = %q, want duplicate id violation", err)
	}
}

// Build skips geometry checks, so diagrams without positions pass. Full
// validation with layout checks on still flags them.
func TestBuildSkipsGeometry(t *testing.T) {
	d, err := New("flow").AddNode(ir.Node{ID: "a"}).Build()
	if err != nil {
		t.Fatalf("Build() error = %v, want geometry ignored", err)
	}
	if d.Nodes[0].Position != nil {
		t.Errorf("Position = %+v, builder should not invent one", d.Nodes[0].Position)
	}
}

func TestBuildReportsFirstIssue(t *testing.T) {
	_, err := New("flow").
		AddNode(ir.Node{ID: "a"}).
		AddEdge(ir.Edge{ID: "a", Source: "a", Target: "a"}).
		Build()
	if err == nil {
		t.Fatal("Build() = nil error")
	}
	// The message cites the offending path so callers can locate it.
	if !strings.Contains(err.Error(), "edges[0].id") {
		t.Errorf("error = %q, want the issue path", err)
	}
}
