package formats

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/formats/dot"
	"github.com/WhiteBite/diaflow/pkg/formats/drawio"
	"github.com/WhiteBite/diaflow/pkg/formats/mermaid"
	"github.com/WhiteBite/diaflow/pkg/formats/plantuml"
	"github.com/WhiteBite/diaflow/pkg/ir"
	pkgio "github.com/WhiteBite/diaflow/pkg/io"
)

// Format describes one diagram syntax. Parse and Generate are nil when the
// syntax does not support that direction; Sniff is an optional content
// probe used by [Detect] when the file extension is ambiguous.
type Format struct {
	Name        string
	Aliases     []string
	Extensions  []string // lowercase, leading dot
	Description string
	Parse       func(data []byte) (*ir.Diagram, error)
	Generate    func(d *ir.Diagram) ([]byte, error)
	Sniff       func(data []byte) bool
}

// CanParse reports whether the format can read its syntax into a diagram.
func (f *Format) CanParse() bool { return f.Parse != nil }

// CanGenerate reports whether the format can write a diagram out.
func (f *Format) CanGenerate() bool { return f.Generate != nil }

// Matches reports whether name is the format's name or one of its aliases,
// case-insensitively.
func (f *Format) Matches(name string) bool {
	name = strings.ToLower(name)
	if name == f.Name {
		return true
	}
	for _, a := range f.Aliases {
		if name == a {
			return true
		}
	}
	return false
}

// HasExtension reports whether ext (lowercase, leading dot) belongs to the
// format.
func (f *Format) HasExtension(ext string) bool {
	for _, e := range f.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// All is the canonical list of supported formats, in the order they are
// offered to users.
var All = []*Format{
	{
		Name:        "mermaid",
		Aliases:     []string{"mmd"},
		Extensions:  []string{".mmd", ".mermaid"},
		Description: "Mermaid flowchart",
		Parse:       mermaid.Parse,
		Generate:    mermaid.Generate,
		Sniff:       mermaid.Sniff,
	},
	{
		Name:        "dot",
		Aliases:     []string{"graphviz", "gv"},
		Extensions:  []string{".dot", ".gv"},
		Description: "Graphviz DOT",
		Parse:       dot.Parse,
		Generate:    dot.Generate,
		Sniff:       dot.Sniff,
	},
	{
		Name:        "drawio",
		Aliases:     []string{"diagrams.net", "mxgraph"},
		Extensions:  []string{".drawio", ".xml"},
		Description: "draw.io mxGraph XML",
		Parse:       drawio.Parse,
		Generate:    drawio.Generate,
		Sniff:       drawio.Sniff,
	},
	{
		Name:        "plantuml",
		Aliases:     []string{"puml", "uml"},
		Extensions:  []string{".puml", ".plantuml"},
		Description: "PlantUML deployment diagram (write only)",
		Generate:    plantuml.Generate,
	},
	{
		Name:        "json",
		Extensions:  []string{".json"},
		Description: "canonical diagram JSON",
		Parse:       parseJSON,
		Generate:    generateJSON,
	},
}

// parseJSON and generateJSON adapt the canonical JSON codec in pkg/io to
// the byte-oriented registry signatures.
func parseJSON(data []byte) (*ir.Diagram, error) {
	return pkgio.ReadJSON(bytes.NewReader(data))
}

func generateJSON(d *ir.Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := pkgio.WriteJSON(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Names returns the names of all registered formats.
func Names() []string {
	names := make([]string, len(All))
	for i, f := range All {
		names[i] = f.Name
	}
	return names
}

// ByName returns the format with the given name or alias.
func ByName(name string) (*Format, error) {
	for _, f := range All {
		if f.Matches(name) {
			return f, nil
		}
	}
	return nil, errors.New(errors.ErrCodeFormatNotFound,
		"unknown format %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Detect resolves a format from a file path and, when the extension is not
// conclusive, the file content. Either argument may be empty.
func Detect(path string, data []byte) (*Format, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		for _, f := range All {
			if f.HasExtension(ext) {
				return f, nil
			}
		}
	}
	for _, f := range All {
		if f.Sniff != nil && f.Sniff(data) {
			return f, nil
		}
	}
	return nil, errors.New(errors.ErrCodeFormatNotFound,
		"cannot detect diagram format of %q", filepath.Base(path))
}
