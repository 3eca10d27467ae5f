package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/WhiteBite/diaflow/pkg/ir"
	"github.com/WhiteBite/diaflow/pkg/pipeline"
)

func parseFlow(t *testing.T) *ir.Diagram {
	t.Helper()
	runner := quietRunner()
	defer runner.Close()

	d, err := runner.Parse(context.Background(), []byte(flowSrc), pipeline.Options{})
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return d
}

func TestDiagramDocument(t *testing.T) {
	d := parseFlow(t)

	doc, err := diagramDocument(d)
	if err != nil {
		t.Fatalf("diagramDocument: %v", err)
	}

	m, ok := doc.(map[string]any)
	if !ok {
		t.Fatalf("document is %T, want object", doc)
	}
	nodes, ok := m["nodes"].([]any)
	if !ok {
		t.Fatalf("nodes is %T, want array", m["nodes"])
	}
	if len(nodes) != 3 {
		t.Errorf("document has %d nodes, want 3", len(nodes))
	}
}

func TestRunQuery(t *testing.T) {
	d := parseFlow(t)

	out := captureStdout(t, func() {
		if err := runQuery(context.Background(), d, ".nodes | length"); err != nil {
			t.Errorf("runQuery: %v", err)
		}
	})
	if strings.TrimSpace(out) != "3" {
		t.Errorf("query output = %q, want 3", out)
	}
}

func TestRunQueryNodeIDs(t *testing.T) {
	d := parseFlow(t)

	out := captureStdout(t, func() {
		if err := runQuery(context.Background(), d, ".nodes[].id"); err != nil {
			t.Errorf("runQuery: %v", err)
		}
	})
	for _, id := range []string{`"a"`, `"b"`, `"c"`} {
		if !strings.Contains(out, id) {
			t.Errorf("query output %q is missing %s", out, id)
		}
	}
}

func TestRunQueryParseError(t *testing.T) {
	d := parseFlow(t)

	err := runQuery(context.Background(), d, ".nodes[")
	if err == nil || !strings.Contains(err.Error(), "parse query") {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestRunQueryRuntimeError(t *testing.T) {
	d := parseFlow(t)

	err := runQuery(context.Background(), d, `error("boom")`)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want runtime error", err)
	}
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured output: %v", err)
	}
	return string(data)
}
