package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

// WriteJSON encodes a diagram as pretty-printed JSON and writes it to w.
// Nil element slices are written as empty arrays, so the output always
// validates against the embedded schema and can be re-imported with
// [ReadJSON] for round-trip processing.
func WriteJSON(d *ir.Diagram, w io.Writer) error {
	out := *d
	if out.Nodes == nil {
		out.Nodes = []ir.Node{}
	}
	if out.Edges == nil {
		out.Edges = []ir.Edge{}
	}
	if hasNilChildren(out.Groups) {
		groups := make([]ir.Group, len(out.Groups))
		copy(groups, out.Groups)
		for i := range groups {
			if groups[i].Children == nil {
				groups[i].Children = []string{}
			}
		}
		out.Groups = groups
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return errors.Wrap(errors.ErrCodeGenerate, err, "encode diagram document")
	}
	return nil
}

func hasNilChildren(groups []ir.Group) bool {
	for i := range groups {
		if groups[i].Children == nil {
			return true
		}
	}
	return false
}

// ExportJSON writes a diagram to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(d *ir.Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(d, f)
}
