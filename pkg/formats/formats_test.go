package formats

import (
	"strings"
	"testing"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"mermaid", "mermaid"},
		{"mmd", "mermaid"},
		{"MMD", "mermaid"},
		{"dot", "dot"},
		{"graphviz", "dot"},
		{"Graphviz", "dot"},
		{"drawio", "drawio"},
		{"diagrams.net", "drawio"},
		{"puml", "plantuml"},
		{"uml", "plantuml"},
		{"json", "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ByName(tt.name)
			if err != nil {
				t.Fatalf("ByName(%q): %v", tt.name, err)
			}
			if f.Name != tt.want {
				t.Errorf("ByName(%q) = %s, want %s", tt.name, f.Name, tt.want)
			}
		})
	}
}

func TestByNameUnknown(t *testing.T) {
	f, err := ByName("visio")
	if err == nil {
		t.Fatalf("expected error, got %v", f)
	}
	if !errors.Is(err, errors.ErrCodeFormatNotFound) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeFormatNotFound)
	}
	if !strings.Contains(err.Error(), "mermaid") {
		t.Errorf("error should list available formats: %v", err)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
		want string
	}{
		{"mmd extension", "flows/login.mmd", "", "mermaid"},
		{"gv extension", "graph.gv", "", "dot"},
		{"drawio extension", "arch.drawio", "", "drawio"},
		{"xml extension", "arch.xml", "", "drawio"},
		{"puml extension", "deploy.puml", "", "plantuml"},
		{"json extension", "d.json", "", "json"},
		{"extension beats content", "graph.mmd", "digraph g {}", "mermaid"},
		{"mermaid content", "README.txt", "flowchart LR\n  a --> b", "mermaid"},
		{"dot content", "", "digraph g { a -> b; }", "dot"},
		{"strict dot content", "", "strict digraph g {}", "dot"},
		{"drawio content", "", `<mxfile host="x"></mxfile>`, "drawio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Detect(tt.path, []byte(tt.data))
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if f.Name != tt.want {
				t.Errorf("Detect = %s, want %s", f.Name, tt.want)
			}
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	_, err := Detect("notes.txt", []byte("just some prose"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrCodeFormatNotFound) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeFormatNotFound)
	}
	if !strings.Contains(err.Error(), "notes.txt") {
		t.Errorf("error should name the file: %v", err)
	}
}

// TestRegistryShape pins the registry invariants the rest of the system
// leans on: unique names, no shared aliases or extensions, and every
// format able to generate.
func TestRegistryShape(t *testing.T) {
	names := make(map[string]bool)
	exts := make(map[string]string)
	for _, f := range All {
		if names[f.Name] {
			t.Errorf("duplicate format name %s", f.Name)
		}
		names[f.Name] = true
		for _, a := range f.Aliases {
			if names[a] {
				t.Errorf("alias %s of %s collides", a, f.Name)
			}
			names[a] = true
		}
		for _, e := range f.Extensions {
			if !strings.HasPrefix(e, ".") || e != strings.ToLower(e) {
				t.Errorf("format %s extension %q not normalized", f.Name, e)
			}
			if owner, dup := exts[e]; dup {
				t.Errorf("extension %s claimed by both %s and %s", e, owner, f.Name)
			}
			exts[e] = f.Name
		}
		if !f.CanGenerate() {
			t.Errorf("format %s cannot generate", f.Name)
		}
	}
	if len(All) != len(Names()) {
		t.Errorf("Names() returned %d entries for %d formats", len(Names()), len(All))
	}
}

// TestCrossFormat converts one diagram through every writable format and
// back through every readable one.
func TestCrossFormat(t *testing.T) {
	d := ir.New("hop")
	d.Nodes = []ir.Node{
		{ID: "a", Label: "One"},
		{ID: "b", Label: "Two", Shape: ir.ShapeDiamond},
	}
	d.Edges = []ir.Edge{{ID: "a-b", Source: "a", Target: "b", Label: "go"}}

	for _, f := range All {
		t.Run(f.Name, func(t *testing.T) {
			out, err := f.Generate(d)
			if err != nil {
				t.Fatalf("%s generate: %v", f.Name, err)
			}
			if len(out) == 0 {
				t.Fatalf("%s generated no output", f.Name)
			}
			if !f.CanParse() {
				return
			}
			back, err := f.Parse(out)
			if err != nil {
				t.Fatalf("%s re-parse: %v", f.Name, err)
			}
			if len(back.Nodes) != 2 || len(back.Edges) != 1 {
				t.Errorf("%s round trip: %d nodes, %d edges", f.Name, len(back.Nodes), len(back.Edges))
			}
			if _, ok := back.Node("a"); !ok {
				t.Errorf("%s round trip lost node a", f.Name)
			}
		})
	}
}
