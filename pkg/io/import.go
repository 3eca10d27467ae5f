package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

// ReadJSON decodes a diagram document from r.
//
// The document is validated against the embedded JSON Schema before
// decoding; see [ValidateSchema] for what that covers. An absent "type"
// field reads as [ir.TypeFlowchart].
//
// The returned diagram is independent of r and can be modified freely.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*ir.Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read diagram document")
	}
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var d ir.Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram document")
	}
	if d.Type == "" {
		d.Type = ir.TypeFlowchart
	}
	return &d, nil
}

// ImportJSON reads the diagram document at path.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. It returns the same validation errors as [ReadJSON] for malformed
// documents.
func ImportJSON(path string) (*ir.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
