// Package io provides JSON import and export for diagrams.
//
// # Overview
//
// The JSON form is the canonical serialization of [ir.Diagram]: every field
// the model carries survives a round trip, including element metadata that
// syntax packages stash for their own use. The format is designed for:
//
//   - Interchange with external tools that produce or consume diagrams
//   - Caching of parsed diagrams for faster re-conversion
//   - Round-trip preservation: import, transform, export, re-import identically
//
// # JSON Format
//
// A document is a single object mirroring the ir types:
//
//	{
//	  "id": "checkout",
//	  "type": "flowchart",
//	  "nodes": [
//	    {"id": "cart", "label": "Cart"},
//	    {"id": "pay", "label": "Pay", "shape": "diamond"}
//	  ],
//	  "edges": [
//	    {"id": "cart-pay", "source": "cart", "target": "pay"}
//	  ],
//	  "groups": []
//	}
//
// Only "id" is required; absent arrays read as empty and an absent "type"
// reads as "flowchart". Geometry (position, size, waypoints, viewport) is
// optional and carried through untouched.
//
// # Schema Validation
//
// Import validates documents against an embedded JSON Schema (draft
// 2020-12) before decoding, so structural mistakes surface with their
// instance location ("/nodes/3/shape") instead of as a half-decoded
// diagram. [ValidateSchema] exposes the same check for callers that want
// the verdict without the decode. The schema is compiled once per process.
//
// Schema validation is structural only. Referential rules (edge endpoints
// exist, ids are unique) are the validate package's job.
//
// # Import
//
// Use [ImportJSON] to read a diagram from a file path, or [ReadJSON] to
// read from any io.Reader:
//
//	d, err := io.ImportJSON("checkout.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// Use [ExportJSON] to write a diagram to a file, or [WriteJSON] to write to
// any io.Writer. Output is pretty-printed and always validates against the
// embedded schema, so exported files can be hand-edited and re-imported.
//
// # Concurrency
//
// All functions are safe for concurrent use. Imported diagrams are
// independent instances owned by the caller.
//
// [ir.Diagram]: github.com/WhiteBite/diaflow/pkg/ir.Diagram
package io
