package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/WhiteBite/diaflow/pkg/cache"
	"github.com/WhiteBite/diaflow/pkg/pipeline"
)

const flowSrc = `flowchart TD
    a["Start"]
    b{"OK?"}
    c["Done"]
    a --> b
    b -->|yes| c
`

func testCLI() *CLI {
	c := New(io.Discard, LogWarn)
	c.Config = defaultConfig()
	return c
}

func quietRunner() *pipeline.Runner {
	return pipeline.NewRunner(cache.NewNullCache(), nil, log.New(io.Discard))
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"-", ""},
		{"out.mmd", "mermaid"},
		{"out.mermaid", "mermaid"},
		{"out.DOT", "dot"},
		{"out.gv", "dot"},
		{"out.drawio", "drawio"},
		{"out.puml", "plantuml"},
		{"out.json", "json"},
		{"dir/out.json", "json"},
		{"out.txt", ""},
		{"noext", ""},
	}

	for _, tt := range tests {
		if got := formatForPath(tt.path); got != tt.want {
			t.Errorf("formatForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDerivedOutput(t *testing.T) {
	tests := []struct {
		input  string
		format string
		want   string
	}{
		{"flow.mmd", "dot", "flow.dot"},
		{"flow.mmd", "drawio", "flow.drawio"},
		{"flow", "json", "flow.json"},
		{"a/b/flow.json", "mermaid", "a/b/flow.mmd"},
		{"flow.gv", "plantuml", "flow.puml"},
		{"flow.mmd", "bogus", "flow.out"},
	}

	for _, tt := range tests {
		if got := derivedOutput(tt.input, tt.format); got != tt.want {
			t.Errorf("derivedOutput(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
		}
	}
}

func TestConvertOne(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "flow.mmd")
	if err := os.WriteFile(input, []byte(flowSrc), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	c := testCLI()
	runner := quietRunner()
	defer runner.Close()

	res, outPath, err := c.convertOne(context.Background(), runner, input, pipeline.Options{To: "json"}, "")
	if err != nil {
		t.Fatalf("convertOne: %v", err)
	}

	want := filepath.Join(dir, "flow.json")
	if outPath != want {
		t.Errorf("outPath = %q, want %q", outPath, want)
	}
	if res.FromFormat != "mermaid" {
		t.Errorf("FromFormat = %q, want mermaid", res.FromFormat)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"nodes"`) {
		t.Errorf("output does not look like canonical JSON:\n%s", data)
	}
}

func TestConvertOneTargetFromOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "flow.mmd")
	if err := os.WriteFile(input, []byte(flowSrc), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	c := testCLI()
	runner := quietRunner()
	defer runner.Close()

	// No --to; the .gv output extension decides the format.
	output := filepath.Join(dir, "flow.gv")
	res, outPath, err := c.convertOne(context.Background(), runner, input, pipeline.Options{}, output)
	if err != nil {
		t.Fatalf("convertOne: %v", err)
	}
	if res.ToFormat != "dot" {
		t.Errorf("ToFormat = %q, want dot", res.ToFormat)
	}
	if outPath != output {
		t.Errorf("outPath = %q, want %q", outPath, output)
	}
}

func TestConvertOneNoTarget(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "flow.mmd")
	if err := os.WriteFile(input, []byte(flowSrc), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	c := testCLI()
	runner := quietRunner()
	defer runner.Close()

	_, _, err := c.convertOne(context.Background(), runner, input, pipeline.Options{}, "")
	if err == nil || !strings.Contains(err.Error(), "cannot determine target format") {
		t.Errorf("err = %v, want target format error", err)
	}
}

func TestConvertOneRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "flow.json")

	// Canonical JSON in, JSON out would derive the input path itself.
	var c = testCLI()
	runner := quietRunner()
	defer runner.Close()

	seed := filepath.Join(dir, "seed.mmd")
	if err := os.WriteFile(seed, []byte(flowSrc), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, _, err := c.convertOne(context.Background(), runner, seed, pipeline.Options{To: "json"}, input); err != nil {
		t.Fatalf("seed conversion: %v", err)
	}

	_, _, err := c.convertOne(context.Background(), runner, input, pipeline.Options{To: "json"}, "")
	if err == nil || !strings.Contains(err.Error(), "refusing to overwrite") {
		t.Errorf("err = %v, want overwrite refusal", err)
	}
}

func TestConvertOneValidationHint(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.mmd")
	src := "flowchart TD\n    a[One]\n    a[Two]\n    a --> a\n"
	if err := os.WriteFile(input, []byte(src), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	c := testCLI()
	runner := quietRunner()
	defer runner.Close()

	_, _, err := c.convertOne(context.Background(), runner, input, pipeline.Options{To: "json"}, "")
	if err == nil {
		t.Fatal("invalid diagram should fail conversion")
	}
	if !strings.Contains(err.Error(), "diaflow validate") {
		t.Errorf("err = %v, should point at the validate command", err)
	}
}

func TestFullyCached(t *testing.T) {
	res := &pipeline.Result{}
	if fullyCached(res) {
		t.Error("empty cache info should not count as cached")
	}
	res.CacheInfo = pipeline.CacheInfo{ParseHit: true, LayoutHit: true, GenerateHit: true}
	if !fullyCached(res) {
		t.Error("all stages hit should count as cached")
	}
	res.CacheInfo.LayoutHit = false
	if fullyCached(res) {
		t.Error("partial hits should not count as cached")
	}
}

func TestOpenOutputStdout(t *testing.T) {
	w, err := openOutput("-")
	if err != nil {
		t.Fatalf("openOutput(-): %v", err)
	}
	if w != (nopCloser{os.Stdout}) {
		t.Error("openOutput(-) should wrap stdout")
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
