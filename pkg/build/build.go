package build

import (
	"github.com/google/uuid"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
	"github.com/WhiteBite/diaflow/pkg/validate"
)

// Builder accumulates a diagram under fail-fast invariant checks. Chain
// methods never modify the receiver: they return a new Builder with a
// cloned snapshot, or the receiver itself once the chain is poisoned by
// an earlier error.
//
// The zero value is not usable; start with [New].
type Builder struct {
	diagram *ir.Diagram
	err     error
}

// New returns a Builder for an empty flowchart diagram. An empty id
// generates one.
func New(id string) *Builder {
	if id == "" {
		id = "diagram-" + uuid.New().String()
	}
	return &Builder{diagram: ir.New(id)}
}

// next clones the snapshot for the out-edge of a chain method. Poisoned
// chains short-circuit: callers must check b.err first.
func (b *Builder) next() *Builder {
	return &Builder{diagram: b.diagram.Clone()}
}

// fail poisons the chain with the first error.
func (b *Builder) fail(err error) *Builder {
	return &Builder{diagram: b.diagram, err: err}
}

// Err returns the first fail-fast violation recorded by the chain, or nil.
// Build returns the same error; Err lets callers inspect mid-chain.
func (b *Builder) Err() error {
	return b.err
}

// Type sets the diagram category. Unknown categories poison the chain.
func (b *Builder) Type(t ir.DiagramType) *Builder {
	if b.err != nil {
		return b
	}
	if !t.Valid() {
		return b.fail(errors.New(errors.ErrCodeInvalidInput, "unknown diagram type %q", t))
	}
	nb := b.next()
	nb.diagram.Type = t
	return nb
}

// Name sets the diagram's display name.
func (b *Builder) Name(name string) *Builder {
	if b.err != nil {
		return b
	}
	nb := b.next()
	nb.diagram.Name = name
	return nb
}

// AddNode appends a node. The ID must be non-empty and new within the
// shared node-and-group namespace; edge IDs are not consulted. The node
// receives the documented style defaults under any caller-set fields and
// a rectangle shape when none is given.
func (b *Builder) AddNode(n ir.Node) *Builder {
	if b.err != nil {
		return b
	}
	if err := errors.ValidateElementID(n.ID); err != nil {
		return b.fail(err)
	}
	if b.idTaken(n.ID) {
		return b.fail(errors.New(errors.ErrCodeDuplicateID, "node %q already exists", n.ID))
	}

	if n.Shape == "" {
		n.Shape = ir.ShapeRectangle
	}
	n.Style = n.Style.WithDefaults()

	nb := b.next()
	nb.diagram.Nodes = append(nb.diagram.Nodes, n.Clone())
	return nb
}

// AddEdge appends an edge. Source and target must name existing nodes.
// An empty edge ID is generated as "source-target" and must be new among
// edge IDs. Arrowheads and the line pattern default to a plain directed
// solid edge.
func (b *Builder) AddEdge(e ir.Edge) *Builder {
	if b.err != nil {
		return b
	}
	if _, ok := b.diagram.Node(e.Source); !ok {
		return b.fail(errors.New(errors.ErrCodeNotFound, "source node %q not found", e.Source))
	}
	if _, ok := b.diagram.Node(e.Target); !ok {
		return b.fail(errors.New(errors.ErrCodeNotFound, "target node %q not found", e.Target))
	}

	if e.ID == "" {
		e.ID = e.Source + "-" + e.Target
	}
	if _, ok := b.diagram.Edge(e.ID); ok {
		return b.fail(errors.New(errors.ErrCodeDuplicateID, "edge %q already exists", e.ID))
	}

	if e.ArrowSource == "" {
		e.ArrowSource = ir.ArrowNone
	}
	if e.ArrowTarget == "" {
		e.ArrowTarget = ir.ArrowStandard
	}
	if e.Line == "" {
		e.Line = ir.LineSolid
	}
	e.Style = e.Style.WithEdgeDefaults()

	nb := b.next()
	nb.diagram.Edges = append(nb.diagram.Edges, e.Clone())
	return nb
}

// AddGroup appends a group. The ID must be non-empty and new within the
// shared node-and-group namespace, and every child must name an existing
// node or group.
func (b *Builder) AddGroup(g ir.Group) *Builder {
	if b.err != nil {
		return b
	}
	if err := errors.ValidateElementID(g.ID); err != nil {
		return b.fail(err)
	}
	if b.idTaken(g.ID) {
		return b.fail(errors.New(errors.ErrCodeDuplicateID, "group %q already exists", g.ID))
	}
	for _, child := range g.Children {
		if !b.idTaken(child) {
			return b.fail(errors.New(errors.ErrCodeNotFound, "group child %q not found", child))
		}
	}

	g.Style = g.Style.WithDefaults()

	nb := b.next()
	nb.diagram.Groups = append(nb.diagram.Groups, g.Clone())
	return nb
}

// Viewport sets the diagram viewport. The size must be positive.
func (b *Builder) Viewport(v ir.Viewport) *Builder {
	if b.err != nil {
		return b
	}
	if v.Width <= 0 || v.Height <= 0 {
		return b.fail(errors.New(errors.ErrCodeInvalidGeometry, "viewport size must be positive"))
	}
	nb := b.next()
	nb.diagram.Viewport = &v
	return nb
}

// Meta sets one metadata key on the diagram.
func (b *Builder) Meta(key string, value any) *Builder {
	if b.err != nil {
		return b
	}
	nb := b.next()
	if nb.diagram.Metadata == nil {
		nb.diagram.Metadata = ir.Metadata{}
	}
	nb.diagram.Metadata[key] = value
	return nb
}

// Build validates the assembled diagram (references on, geometry off) and
// returns it. A poisoned chain returns its first fail-fast error; a
// diagram failing validation returns an error citing the first issue's
// message and path. The returned diagram is a clone, so the builder can
// keep being used afterwards.
func (b *Builder) Build() (*ir.Diagram, error) {
	if b.err != nil {
		return nil, b.err
	}
	rep := validate.Check(b.diagram, validate.Options{SkipLayout: true})
	if err := rep.Err(); err != nil {
		return nil, err
	}
	return b.diagram.Clone(), nil
}

// Preview returns the in-progress snapshot without validation. On a
// poisoned chain it returns the state before the failing operation.
func (b *Builder) Preview() *ir.Diagram {
	return b.diagram.Clone()
}

// idTaken reports whether the ID is used by a node or group. Edges keep
// their own namespace.
func (b *Builder) idTaken(id string) bool {
	if _, ok := b.diagram.Node(id); ok {
		return true
	}
	_, ok := b.diagram.Group(id)
	return ok
}
