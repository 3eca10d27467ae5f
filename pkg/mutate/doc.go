// Package mutate transforms existing diagrams through a queue of recorded
// operations.
//
// # Overview
//
// A [Mutator] wraps a deep clone of a base diagram, so the caller's value is
// never touched. Chain methods do not edit anything: each one records a
// discriminated [Op] and returns a new Mutator sharing the base snapshot
// plus the extended queue. The queue runs only at a terminal call:
//
//	m := mutate.New(d).
//		RemoveNode("cache", true).
//		AddEdge(ir.Edge{Source: "api", Target: "db"})
//	next, err := m.Apply()
//
// [Mutator.Apply] replays the queue against a fresh clone and validates the
// result, returning an error that cites the first violation. [Mutator.Preview]
// replays without the final validation, so half-valid intermediate states can
// be inspected. [Mutator.Operations] exposes the pending queue and
// [Mutator.Reset] discards it.
//
// # Failure model
//
// Violations an operation can detect from its arguments alone (a non-positive
// resize, a nil batched op) poison the chain immediately, exactly like the
// build package. Violations that depend on diagram state (unknown ids,
// duplicates, a non-cascading removal of a still-referenced node) surface
// during replay, tagged with the queue position of the offending operation.
// Either way no partial state escapes: a failed Apply or Preview returns nil.
//
// # Identifier namespaces
//
// The per-operation checks keep nodes and groups in one id namespace and
// edges in another, while Apply's closing validation compares all three
// against a single registry. See the build package documentation; the same
// asymmetry applies here.
package mutate
