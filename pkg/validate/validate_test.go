package validate

import (
	"math"
	"strings"
	"testing"

	"github.com/WhiteBite/diaflow/pkg/ir"
)

// laidOut returns a node with sane geometry so layout checks pass.
func laidOut(id string) ir.Node {
	return ir.Node{
		ID:       id,
		Position: &ir.Position{X: 0, Y: 0},
		Size:     &ir.Size{Width: 100, Height: 50},
	}
}

func hasCode(issues []Issue, code string) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func TestCheckNilDiagram(t *testing.T) {
	rep := Check(nil, Options{})

	if rep.Valid {
		t.Error("nil diagram reported valid")
	}
	if !hasCode(rep.Errors, CodeMissingDiagram) {
		t.Errorf("errors = %v, want %s", rep.Errors, CodeMissingDiagram)
	}
}

func TestCheckEmptyDiagram(t *testing.T) {
	rep := Check(ir.New("empty"), Options{})

	if !rep.Valid {
		t.Errorf("empty diagram should be valid, errors: %v", rep.Errors)
	}
	if !hasCode(rep.Warnings, CodeNoNodes) {
		t.Errorf("warnings = %v, want %s", rep.Warnings, CodeNoNodes)
	}
}

func TestCheckStructure(t *testing.T) {
	tests := []struct {
		name     string
		diagram  *ir.Diagram
		wantCode string
		severity Severity
	}{
		{
			name:     "missing diagram id",
			diagram:  &ir.Diagram{Nodes: []ir.Node{laidOut("a")}},
			wantCode: CodeMissingID,
			severity: SeverityError,
		},
		{
			name: "missing node id",
			diagram: func() *ir.Diagram {
				d := ir.New("d")
				d.Nodes = []ir.Node{laidOut("")}
				return d
			}(),
			wantCode: CodeMissingID,
			severity: SeverityError,
		},
		{
			name: "unknown shape",
			diagram: func() *ir.Diagram {
				d := ir.New("d")
				n := laidOut("a")
				n.Shape = "blob"
				d.Nodes = []ir.Node{n}
				return d
			}(),
			wantCode: CodeUnknownShape,
			severity: SeverityWarning,
		},
		{
			name: "missing edge source",
			diagram: func() *ir.Diagram {
				d := ir.New("d")
				d.Nodes = []ir.Node{laidOut("a")}
				d.Edges = []ir.Edge{{ID: "e", Target: "a"}}
				return d
			}(),
			wantCode: CodeMissingReference,
			severity: SeverityError,
		},
		{
			name: "unknown diagram type",
			diagram: func() *ir.Diagram {
				d := ir.New("d")
				d.Type = "circuit"
				d.Nodes = []ir.Node{laidOut("a")}
				return d
			}(),
			wantCode: CodeUnknownType,
			severity: SeverityWarning,
		},
		{
			name: "empty group",
			diagram: func() *ir.Diagram {
				d := ir.New("d")
				d.Nodes = []ir.Node{laidOut("a")}
				d.Groups = []ir.Group{{ID: "g"}}
				return d
			}(),
			wantCode: CodeEmptyGroup,
			severity: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Check(tt.diagram, Options{})
			issues := rep.Errors
			if tt.severity == SeverityWarning {
				issues = rep.Warnings
			}
			if !hasCode(issues, tt.wantCode) {
				t.Errorf("issues = %v, want code %s", issues, tt.wantCode)
			}
		})
	}
}

func TestCheckUniqueIDsSharedNamespace(t *testing.T) {
	// The validator compares node, edge, and group IDs against one shared
	// registry, unlike the per-operation checks in build and mutate.
	d := ir.New("d")
	d.Nodes = []ir.Node{laidOut("x"), laidOut("b")}
	d.Edges = []ir.Edge{{ID: "x", Source: "x", Target: "b"}}

	rep := Check(d, Options{})

	if rep.Valid {
		t.Error("node/edge id collision reported valid")
	}
	if !hasCode(rep.Errors, CodeDuplicateID) {
		t.Errorf("errors = %v, want %s", rep.Errors, CodeDuplicateID)
	}
}

func TestCheckDuplicateNodes(t *testing.T) {
	d := ir.New("d")
	d.Nodes = []ir.Node{laidOut("a"), laidOut("a")}

	rep := Check(d, Options{})

	if !hasCode(rep.Errors, CodeDuplicateID) {
		t.Errorf("errors = %v, want %s", rep.Errors, CodeDuplicateID)
	}
	if rep.Errors[0].Path != "nodes[1].id" {
		t.Errorf("path = %q, want nodes[1].id", rep.Errors[0].Path)
	}
}

func TestCheckReferences(t *testing.T) {
	t.Run("unknown endpoint", func(t *testing.T) {
		d := ir.New("d")
		d.Nodes = []ir.Node{laidOut("a")}
		d.Edges = []ir.Edge{{ID: "e", Source: "a", Target: "ghost"}}

		rep := Check(d, Options{})
		if !hasCode(rep.Errors, CodeInvalidReference) {
			t.Errorf("errors = %v, want %s", rep.Errors, CodeInvalidReference)
		}
		if issue, _ := rep.FirstIssue(); !strings.Contains(issue.Message, "not found") {
			t.Errorf("message = %q, want mention of not found", issue.Message)
		}
	})

	t.Run("endpoint is a group", func(t *testing.T) {
		d := ir.New("d")
		d.Nodes = []ir.Node{laidOut("a")}
		d.Groups = []ir.Group{{ID: "g", Children: []string{"a"}}}
		d.Edges = []ir.Edge{{ID: "e", Source: "a", Target: "g"}}

		rep := Check(d, Options{})
		if !hasCode(rep.Errors, CodeInvalidReference) {
			t.Errorf("errors = %v, want %s", rep.Errors, CodeInvalidReference)
		}
	})

	t.Run("unknown group child", func(t *testing.T) {
		d := ir.New("d")
		d.Nodes = []ir.Node{laidOut("a")}
		d.Groups = []ir.Group{{ID: "g", Children: []string{"a", "ghost"}}}

		rep := Check(d, Options{})
		if !hasCode(rep.Errors, CodeInvalidReference) {
			t.Errorf("errors = %v, want %s", rep.Errors, CodeInvalidReference)
		}
	})

	t.Run("skip references", func(t *testing.T) {
		d := ir.New("d")
		d.Nodes = []ir.Node{laidOut("a")}
		d.Edges = []ir.Edge{{ID: "e", Source: "a", Target: "ghost"}}

		rep := Check(d, Options{SkipReferences: true})
		if hasCode(rep.Errors, CodeInvalidReference) {
			t.Error("reference errors reported despite SkipReferences")
		}
	})
}

func TestCheckContainment(t *testing.T) {
	t.Run("direct self-containment", func(t *testing.T) {
		d := ir.New("d")
		d.Groups = []ir.Group{{ID: "g", Children: []string{"g"}}}

		rep := Check(d, Options{})
		if !hasCode(rep.Errors, CodeCircularGroup) {
			t.Errorf("errors = %v, want %s", rep.Errors, CodeCircularGroup)
		}
	})

	t.Run("transitive cycle", func(t *testing.T) {
		d := ir.New("d")
		d.Groups = []ir.Group{
			{ID: "g1", Children: []string{"g2"}},
			{ID: "g2", Children: []string{"g3"}},
			{ID: "g3", Children: []string{"g1"}},
		}

		rep := Check(d, Options{})
		if !hasCode(rep.Errors, CodeCircularGroup) {
			t.Errorf("errors = %v, want %s", rep.Errors, CodeCircularGroup)
		}
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		// G1 contains G2 and G3; both contain G4. The same group is
		// reached twice over different paths, which is legal: only a
		// revisit along a single path is circular.
		d := ir.New("d")
		d.Nodes = []ir.Node{laidOut("a")}
		d.Groups = []ir.Group{
			{ID: "g1", Children: []string{"g2", "g3"}},
			{ID: "g2", Children: []string{"g4"}},
			{ID: "g3", Children: []string{"g4"}},
			{ID: "g4", Children: []string{"a"}},
		}

		rep := Check(d, Options{})
		if hasCode(rep.Errors, CodeCircularGroup) {
			t.Errorf("diamond containment flagged as circular: %v", rep.Errors)
		}
	})
}

func TestCheckGeometry(t *testing.T) {
	t.Run("missing position is an error by default", func(t *testing.T) {
		d := ir.New("d")
		d.Nodes = []ir.Node{{ID: "a", Size: &ir.Size{Width: 10, Height: 10}}}

		rep := Check(d, Options{})
		if !hasCode(rep.Errors, CodeMissingPosition) {
			t.Errorf("errors = %v, want %s", rep.Errors, CodeMissingPosition)
		}
	})

	t.Run("allow auto layout tolerates missing geometry", func(t *testing.T) {
		d := ir.New("d")
		d.Nodes = []ir.Node{{ID: "a"}}

		rep := Check(d, Options{AllowAutoLayout: true, AllowAutoSize: true})
		if !rep.Valid {
			t.Errorf("expected valid, errors: %v", rep.Errors)
		}
	})

	t.Run("skip layout", func(t *testing.T) {
		d := ir.New("d")
		d.Nodes = []ir.Node{{ID: "a"}}

		rep := Check(d, Options{SkipLayout: true})
		if !rep.Valid {
			t.Errorf("expected valid, errors: %v", rep.Errors)
		}
	})

	t.Run("non-finite position", func(t *testing.T) {
		d := ir.New("d")
		n := laidOut("a")
		n.Position.X = math.NaN()
		d.Nodes = []ir.Node{n}

		rep := Check(d, Options{})
		if !hasCode(rep.Errors, CodeInvalidPosition) {
			t.Errorf("errors = %v, want %s", rep.Errors, CodeInvalidPosition)
		}
	})

	t.Run("infinite size", func(t *testing.T) {
		d := ir.New("d")
		n := laidOut("a")
		n.Size.Width = math.Inf(1)
		d.Nodes = []ir.Node{n}

		rep := Check(d, Options{})
		if !hasCode(rep.Errors, CodeInvalidSize) {
			t.Errorf("errors = %v, want %s", rep.Errors, CodeInvalidSize)
		}
	})

	t.Run("non-positive size", func(t *testing.T) {
		d := ir.New("d")
		n := laidOut("a")
		n.Size.Height = 0
		d.Nodes = []ir.Node{n}

		rep := Check(d, Options{})
		if !hasCode(rep.Errors, CodeInvalidSize) {
			t.Errorf("errors = %v, want %s", rep.Errors, CodeInvalidSize)
		}
	})
}

func TestCheckConnectivity(t *testing.T) {
	d := ir.New("d")
	d.Nodes = []ir.Node{laidOut("a"), laidOut("b"), laidOut("lonely")}
	d.Edges = []ir.Edge{
		{ID: "ab", Source: "a", Target: "b"},
		{ID: "loop", Source: "b", Target: "b"},
	}

	rep := Check(d, Options{CheckConnectivity: true})

	if !hasCode(rep.Warnings, CodeDisconnectedNode) {
		t.Errorf("warnings = %v, want %s", rep.Warnings, CodeDisconnectedNode)
	}
	if !hasCode(rep.Warnings, CodeSelfLoop) {
		t.Errorf("warnings = %v, want %s", rep.Warnings, CodeSelfLoop)
	}
	// Self-loops are permitted: warnings must not fail the check.
	if !rep.Valid {
		t.Errorf("expected valid, errors: %v", rep.Errors)
	}
}

func TestCheckStyles(t *testing.T) {
	d := ir.New("d")
	n := laidOut("a")
	n.Style = ir.Style{Fill: "sparkly"}
	d.Nodes = []ir.Node{n}

	rep := Check(d, Options{CheckStyles: true})
	if !hasCode(rep.Warnings, CodeInvalidStyle) {
		t.Errorf("warnings = %v, want %s", rep.Warnings, CodeInvalidStyle)
	}

	rep = Check(d, Options{})
	if hasCode(rep.Warnings, CodeInvalidStyle) {
		t.Error("style warnings reported without CheckStyles")
	}
}

func TestCheckLimits(t *testing.T) {
	d := ir.New("d")
	d.Nodes = []ir.Node{laidOut("a"), laidOut("b"), laidOut("c")}
	d.Edges = []ir.Edge{{ID: "ab", Source: "a", Target: "b"}}

	rep := Check(d, Options{MaxNodes: 2})
	if !hasCode(rep.Errors, CodeTooManyNodes) {
		t.Errorf("errors = %v, want %s", rep.Errors, CodeTooManyNodes)
	}

	rep = Check(d, Options{MaxNodes: 3, MaxEdges: 1})
	if !rep.Valid {
		t.Errorf("within limits but invalid: %v", rep.Errors)
	}
}

func TestStrictPromotesWarnings(t *testing.T) {
	d := ir.New("empty")

	if !Check(d, Options{}).Valid {
		t.Fatal("empty diagram should be valid in normal mode")
	}

	rep := Check(d, Options{Strict: true})
	if rep.Valid {
		t.Error("strict mode should fail on warnings")
	}
	// Warnings keep their severity in the report.
	if len(rep.Errors) != 0 {
		t.Errorf("strict mode moved warnings into errors: %v", rep.Errors)
	}
	if !hasCode(rep.Warnings, CodeNoNodes) {
		t.Errorf("warnings = %v, want %s", rep.Warnings, CodeNoNodes)
	}
}

func TestCheckStats(t *testing.T) {
	d := ir.New("d")
	d.Nodes = []ir.Node{laidOut("a"), laidOut("b")}
	d.Edges = []ir.Edge{{ID: "ab", Source: "a", Target: "b"}}
	d.Groups = []ir.Group{{ID: "g", Children: []string{"a"}}}

	rep := Check(d, Options{})

	if rep.Stats.Nodes != 2 || rep.Stats.Edges != 1 || rep.Stats.Groups != 1 {
		t.Errorf("stats = %+v, want 2 nodes, 1 edge, 1 group", rep.Stats)
	}
}

func TestValidDiagramPasses(t *testing.T) {
	d := ir.New("flow")
	d.Name = "Order flow"
	d.Nodes = []ir.Node{laidOut("start"), laidOut("end")}
	d.Edges = []ir.Edge{{ID: "start-end", Source: "start", Target: "end"}}
	d.Groups = []ir.Group{{ID: "all", Children: []string{"start", "end"}}}

	rep := Check(d, Options{CheckConnectivity: true})
	if !rep.Valid {
		t.Errorf("expected valid, errors: %v", rep.Errors)
	}
	if err := rep.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestConvenienceWrappers(t *testing.T) {
	bad := ir.New("d")
	bad.Edges = []ir.Edge{{ID: "e", Source: "x", Target: "y"}}

	if IsValid(bad, Options{}) {
		t.Error("IsValid = true for dangling edge")
	}
	if len(Errors(bad, Options{})) == 0 {
		t.Error("Errors returned nothing for dangling edge")
	}
	if len(Warnings(ir.New("d"), Options{})) == 0 {
		t.Error("Warnings returned nothing for empty diagram")
	}
}
