// Package build constructs diagrams from nothing through a fluent,
// immutable chain.
//
// # Overview
//
// A [Builder] accumulates a diagram one element at a time. Every chain
// method returns a new Builder holding a deep-cloned snapshot; the
// receiver is never modified, so partial chains can be held, branched,
// and reused freely:
//
//	base := build.New("flow").
//		AddNode(ir.Node{ID: "start", Label: "Start"}).
//		AddNode(ir.Node{ID: "end", Label: "End"})
//
//	d, err := base.AddEdge(ir.Edge{Source: "start", Target: "end"}).Build()
//
// # Fail-Fast Checks
//
// Each operation checks its own invariants at the call site: node and
// group IDs must be new within the shared node-and-group namespace, edge
// endpoints must name existing nodes, edge IDs must be new among edges,
// group children must exist. The first violation poisons the chain: later
// calls become no-ops and [Builder.Build] returns that first error, so a
// broken chain never leaks partial state.
//
// Note the namespaces: these per-operation checks keep nodes and groups
// in one ID space and edges in another. The final validation pass in
// Build compares all three kinds against a single registry, so an edge
// whose ID collides with a node's passes every fail-fast check and still
// fails Build.
//
// # Defaults
//
// New elements receive the documented style defaults (white fill, black
// stroke, stroke width 2, font size 14) merged under caller-supplied
// values, plus a rectangle shape for nodes and standard arrow and line
// settings for edges. An omitted edge ID is generated as "source-target".
//
// # Terminal Operations
//
// [Builder.Build] runs the validator (references on, geometry off) and
// returns the finished diagram or the first error with its path.
// [Builder.Preview] returns the in-progress snapshot without validation
// for inspection mid-construction.
package build
