package mutate

import (
	"slices"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
	"github.com/WhiteBite/diaflow/pkg/validate"
)

// Mutator holds a private clone of a base diagram and a queue of pending
// operations. Chain methods never modify the receiver; they return a new
// Mutator with the operation appended, or the receiver itself once the
// chain is poisoned.
//
// The zero value is not usable; start with [New].
type Mutator struct {
	base *ir.Diagram
	ops  []Op
	err  error
}

// New returns a Mutator over a deep clone of d. The caller's diagram is
// never modified, not even by a later Apply.
func New(d *ir.Diagram) *Mutator {
	return &Mutator{base: d.Clone()}
}

// enqueue extends the queue copy-on-write so sibling chains branched off
// one Mutator cannot clobber each other's appends.
func (m *Mutator) enqueue(op Op) *Mutator {
	if m.err != nil {
		return m
	}
	ops := make([]Op, len(m.ops), len(m.ops)+1)
	copy(ops, m.ops)
	return &Mutator{base: m.base, ops: append(ops, op)}
}

// fail poisons the chain with the first error.
func (m *Mutator) fail(err error) *Mutator {
	return &Mutator{base: m.base, ops: m.ops, err: err}
}

// Err returns the first argument-level violation recorded by the chain, or
// nil. State-dependent violations surface at Apply or Preview instead.
func (m *Mutator) Err() error {
	return m.err
}

// AddNode queues a node insertion.
func (m *Mutator) AddNode(n ir.Node) *Mutator {
	return m.enqueue(AddNodeOp{Node: n.Clone()})
}

// UpdateNode queues a partial node update.
func (m *Mutator) UpdateNode(id string, changes NodeChanges) *Mutator {
	return m.enqueue(UpdateNodeOp{ID: id, Changes: changes})
}

// RemoveNode queues a node removal. With cascade, edges touching the node
// go too; without it, the removal fails while any edge references the node.
func (m *Mutator) RemoveNode(id string, cascade bool) *Mutator {
	return m.enqueue(RemoveNodeOp{ID: id, Cascade: cascade})
}

// MoveNode queues a position change.
func (m *Mutator) MoveNode(id string, pos ir.Position) *Mutator {
	return m.enqueue(MoveNodeOp{ID: id, Position: pos})
}

// ResizeNode queues a size change. Non-positive dimensions poison the
// chain immediately.
func (m *Mutator) ResizeNode(id string, size ir.Size) *Mutator {
	if m.err != nil {
		return m
	}
	if size.Width <= 0 || size.Height <= 0 {
		return m.fail(errors.New(errors.ErrCodeInvalidGeometry,
			"resize %q: size must be positive, got %gx%g", id, size.Width, size.Height))
	}
	return m.enqueue(ResizeNodeOp{ID: id, Size: size})
}

// AddEdge queues an edge insertion.
func (m *Mutator) AddEdge(e ir.Edge) *Mutator {
	return m.enqueue(AddEdgeOp{Edge: e.Clone()})
}

// UpdateEdge queues a partial edge update.
func (m *Mutator) UpdateEdge(id string, changes EdgeChanges) *Mutator {
	return m.enqueue(UpdateEdgeOp{ID: id, Changes: changes})
}

// RemoveEdge queues an edge removal.
func (m *Mutator) RemoveEdge(id string) *Mutator {
	return m.enqueue(RemoveEdgeOp{ID: id})
}

// ReconnectEdge queues an endpoint change. An empty source or target keeps
// the current endpoint; supplying neither poisons the chain.
func (m *Mutator) ReconnectEdge(id, source, target string) *Mutator {
	if m.err != nil {
		return m
	}
	if source == "" && target == "" {
		return m.fail(errors.New(errors.ErrCodeInvalidInput,
			"reconnect %q: no endpoint supplied", id))
	}
	return m.enqueue(ReconnectEdgeOp{ID: id, Source: source, Target: target})
}

// AddGroup queues a group insertion.
func (m *Mutator) AddGroup(g ir.Group) *Mutator {
	return m.enqueue(AddGroupOp{Group: g.Clone()})
}

// UpdateGroup queues a partial group update.
func (m *Mutator) UpdateGroup(id string, changes GroupChanges) *Mutator {
	return m.enqueue(UpdateGroupOp{ID: id, Changes: changes})
}

// RemoveGroup queues a group removal. With ungroup, the children survive as
// top-level elements; without it, the transitive children are deleted too.
func (m *Mutator) RemoveGroup(id string, ungroup bool) *Mutator {
	return m.enqueue(RemoveGroupOp{ID: id, Ungroup: ungroup})
}

// AddToGroup queues a union of ids into a group's children.
func (m *Mutator) AddToGroup(groupID string, ids ...string) *Mutator {
	return m.enqueue(AddToGroupOp{GroupID: groupID, Children: slices.Clone(ids)})
}

// RemoveFromGroup queues a difference of ids from a group's children.
func (m *Mutator) RemoveFromGroup(groupID string, ids ...string) *Mutator {
	return m.enqueue(RemoveFromGroupOp{GroupID: groupID, Children: slices.Clone(ids)})
}

// Batch queues pre-built operations in order. A nil operation poisons the
// chain.
func (m *Mutator) Batch(ops ...Op) *Mutator {
	if m.err != nil {
		return m
	}
	for _, op := range ops {
		if op == nil {
			return m.fail(errors.New(errors.ErrCodeInvalidInput, "batch contains a nil operation"))
		}
	}
	return m.enqueue(BatchOp{Ops: slices.Clone(ops)})
}

// Operations returns a copy of the pending queue, in application order.
func (m *Mutator) Operations() []Op {
	return slices.Clone(m.ops)
}

// Reset discards the pending queue, and any chain poison with it. The base
// snapshot is kept.
func (m *Mutator) Reset() *Mutator {
	return &Mutator{base: m.base}
}

// Apply replays the queue against a fresh clone of the base, validates the
// result (references on, geometry off), and returns it. The error cites the
// offending operation for replay failures, or the first issue's message and
// path for validation failures. The base snapshot is untouched either way,
// so the Mutator can keep being used.
func (m *Mutator) Apply() (*ir.Diagram, error) {
	d, err := m.replay()
	if err != nil {
		return nil, err
	}
	rep := validate.Check(d, validate.Options{SkipLayout: true})
	if err := rep.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// Preview replays the queue without the final validation, returning a
// possibly-invalid diagram for inspection. Replay failures still surface.
func (m *Mutator) Preview() (*ir.Diagram, error) {
	return m.replay()
}

func (m *Mutator) replay() (*ir.Diagram, error) {
	if m.err != nil {
		return nil, m.err
	}
	d := m.base.Clone()
	for i, op := range m.ops {
		if err := applyOp(d, op); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "op[%d] %s failed", i, op.Name())
		}
	}
	return d, nil
}
