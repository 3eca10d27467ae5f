// Package ir defines the canonical in-memory representation for
// flowchart-like diagrams, independent of any textual diagram syntax.
//
// # Overview
//
// Every other part of Diaflow speaks this representation: format parsers
// produce a [Diagram], the builder and mutator reshape it under validated
// invariants, the layout engine assigns geometry to it, and format
// generators consume it to emit target syntax. The package itself is pure
// data: no I/O, no logging, no validation policy.
//
// # Core Types
//
//   - [Diagram]: root aggregate owning all elements
//   - [Node]: a shaped, optionally positioned element
//   - [Edge]: a directed connection between two nodes
//   - [Group]: a container expressing nesting through child ID references
//
// A Diagram owns ordered slices of nodes, edges, and groups. Element order
// is meaningful and preserved through serialization: generators emit
// elements in diagram order.
//
// # Identity
//
// Node and Group IDs share one namespace; Edge IDs live in their own.
// Edges connect Nodes only, never Groups. Groups contain Nodes or other
// Groups purely through their Children ID list; there is no physical tree.
// These rules are enforced by the validate, build, and mutate packages,
// not here.
//
// # Geometry
//
// Position and Size are pointer fields: nil means "not yet laid out".
// Positions are top-left based with y growing downward. The layout package
// fills them in; parsers may also carry source geometry through.
//
// # JSON
//
// The types carry JSON tags and marshal directly to Diaflow's canonical
// interchange format. File-level import/export and schema validation live
// in the io package.
//
// # Mutability
//
// Nothing in this package guards against aliasing. Callers that need
// isolation use [Diagram.Clone], which copies every nested slice, map,
// and pointer so the copy shares no mutable memory with the original.
// The build and mutate packages rely on this to keep their inputs intact.
package ir
