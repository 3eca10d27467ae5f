package mutate

import (
	"maps"
	"slices"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

// applyOp executes one operation against d in place. d is always a private
// clone owned by the replay, so in-place edits never leak.
func applyOp(d *ir.Diagram, op Op) error {
	switch o := op.(type) {
	case AddNodeOp:
		return applyAddNode(d, o)
	case UpdateNodeOp:
		return applyUpdateNode(d, o)
	case RemoveNodeOp:
		return applyRemoveNode(d, o)
	case MoveNodeOp:
		return applyMoveNode(d, o)
	case ResizeNodeOp:
		return applyResizeNode(d, o)
	case AddEdgeOp:
		return applyAddEdge(d, o)
	case UpdateEdgeOp:
		return applyUpdateEdge(d, o)
	case RemoveEdgeOp:
		return applyRemoveEdge(d, o)
	case ReconnectEdgeOp:
		return applyReconnectEdge(d, o)
	case AddGroupOp:
		return applyAddGroup(d, o)
	case UpdateGroupOp:
		return applyUpdateGroup(d, o)
	case RemoveGroupOp:
		return applyRemoveGroup(d, o)
	case AddToGroupOp:
		return applyAddToGroup(d, o)
	case RemoveFromGroupOp:
		return applyRemoveFromGroup(d, o)
	case BatchOp:
		for _, sub := range o.Ops {
			if sub == nil {
				return errors.New(errors.ErrCodeInvalidInput, "batch contains a nil operation")
			}
			if err := applyOp(d, sub); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInternal, "unknown operation %T", op)
	}
}

// =============================================================================
// Node appliers
// =============================================================================

func applyAddNode(d *ir.Diagram, o AddNodeOp) error {
	n := o.Node
	if err := errors.ValidateElementID(n.ID); err != nil {
		return err
	}
	if idTaken(d, n.ID) {
		return errors.New(errors.ErrCodeDuplicateID, "node %q already exists", n.ID)
	}

	if n.Shape == "" {
		n.Shape = ir.ShapeRectangle
	}
	n.Style = n.Style.WithDefaults()

	d.Nodes = append(d.Nodes, n.Clone())
	return nil
}

func applyUpdateNode(d *ir.Diagram, o UpdateNodeOp) error {
	n, ok := d.Node(o.ID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", o.ID)
	}

	ch := o.Changes
	if ch.Label != nil {
		n.Label = *ch.Label
	}
	if ch.Shape != nil {
		n.Shape = *ch.Shape
	}
	if ch.Position != nil {
		p := *ch.Position
		n.Position = &p
	}
	if ch.Size != nil {
		s := *ch.Size
		n.Size = &s
	}
	if ch.Style != nil {
		n.Style = *ch.Style
	}
	if ch.Ports != nil {
		n.Ports = slices.Clone(ch.Ports)
	}
	if ch.Metadata != nil {
		n.Metadata = maps.Clone(ch.Metadata)
	}
	return nil
}

func applyRemoveNode(d *ir.Diagram, o RemoveNodeOp) error {
	if _, ok := d.Node(o.ID); !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", o.ID)
	}

	touching := d.EdgesTouching(o.ID)
	if !o.Cascade && len(touching) > 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"cannot remove node %q: referenced by edges %v", o.ID, touching)
	}

	deleteNode(d, o.ID)
	for _, eid := range touching {
		deleteEdge(d, eid)
	}
	stripChild(d, o.ID)
	return nil
}

func applyMoveNode(d *ir.Diagram, o MoveNodeOp) error {
	n, ok := d.Node(o.ID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", o.ID)
	}
	p := o.Position
	n.Position = &p
	return nil
}

func applyResizeNode(d *ir.Diagram, o ResizeNodeOp) error {
	// Re-checked here because batched ops bypass the chain's check.
	if o.Size.Width <= 0 || o.Size.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry,
			"resize %q: size must be positive, got %gx%g", o.ID, o.Size.Width, o.Size.Height)
	}
	n, ok := d.Node(o.ID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", o.ID)
	}
	s := o.Size
	n.Size = &s
	return nil
}

// =============================================================================
// Edge appliers
// =============================================================================

func applyAddEdge(d *ir.Diagram, o AddEdgeOp) error {
	e := o.Edge
	if _, ok := d.Node(e.Source); !ok {
		return errors.New(errors.ErrCodeNotFound, "source node %q not found", e.Source)
	}
	if _, ok := d.Node(e.Target); !ok {
		return errors.New(errors.ErrCodeNotFound, "target node %q not found", e.Target)
	}

	if e.ID == "" {
		e.ID = e.Source + "-" + e.Target
	}
	if _, ok := d.Edge(e.ID); ok {
		return errors.New(errors.ErrCodeDuplicateID, "edge %q already exists", e.ID)
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

	d.Edges = append(d.Edges, e.Clone())
	return nil
}

func applyUpdateEdge(d *ir.Diagram, o UpdateEdgeOp) error {
	e, ok := d.Edge(o.ID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "edge %q not found", o.ID)
	}

	ch := o.Changes
	if ch.Label != nil {
		e.Label = *ch.Label
	}
	if ch.LabelPosition != nil {
		p := *ch.LabelPosition
		e.LabelPosition = &p
	}
	if ch.ArrowSource != nil {
		e.ArrowSource = *ch.ArrowSource
	}
	if ch.ArrowTarget != nil {
		e.ArrowTarget = *ch.ArrowTarget
	}
	if ch.Line != nil {
		e.Line = *ch.Line
	}
	if ch.Style != nil {
		e.Style = *ch.Style
	}
	if ch.Waypoints != nil {
		e.Waypoints = slices.Clone(ch.Waypoints)
	}
	if ch.Metadata != nil {
		e.Metadata = maps.Clone(ch.Metadata)
	}
	return nil
}

func applyRemoveEdge(d *ir.Diagram, o RemoveEdgeOp) error {
	if _, ok := d.Edge(o.ID); !ok {
		return errors.New(errors.ErrCodeNotFound, "edge %q not found", o.ID)
	}
	deleteEdge(d, o.ID)
	return nil
}

func applyReconnectEdge(d *ir.Diagram, o ReconnectEdgeOp) error {
	e, ok := d.Edge(o.ID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "edge %q not found", o.ID)
	}

	src, tgt := e.Source, e.Target
	if o.Source != "" {
		src = o.Source
	}
	if o.Target != "" {
		tgt = o.Target
	}
	// The kept endpoint is checked too: the base diagram may carry a
	// dangling edge, and reconnecting must not preserve it silently.
	if _, ok := d.Node(src); !ok {
		return errors.New(errors.ErrCodeNotFound, "source node %q not found", src)
	}
	if _, ok := d.Node(tgt); !ok {
		return errors.New(errors.ErrCodeNotFound, "target node %q not found", tgt)
	}

	e.Source, e.Target = src, tgt
	return nil
}

// =============================================================================
// Group appliers
// =============================================================================

func applyAddGroup(d *ir.Diagram, o AddGroupOp) error {
	g := o.Group
	if err := errors.ValidateElementID(g.ID); err != nil {
		return err
	}
	if idTaken(d, g.ID) {
		return errors.New(errors.ErrCodeDuplicateID, "group %q already exists", g.ID)
	}
	for _, child := range g.Children {
		if !idTaken(d, child) {
			return errors.New(errors.ErrCodeNotFound, "group child %q not found", child)
		}
	}

	g.Style = g.Style.WithDefaults()

	d.Groups = append(d.Groups, g.Clone())
	return nil
}

func applyUpdateGroup(d *ir.Diagram, o UpdateGroupOp) error {
	g, ok := d.Group(o.ID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "group %q not found", o.ID)
	}

	ch := o.Changes
	if ch.Label != nil {
		g.Label = *ch.Label
	}
	if ch.Children != nil {
		g.Children = slices.Clone(ch.Children)
	}
	if ch.Position != nil {
		p := *ch.Position
		g.Position = &p
	}
	if ch.Size != nil {
		s := *ch.Size
		g.Size = &s
	}
	if ch.Style != nil {
		g.Style = *ch.Style
	}
	if ch.Collapsed != nil {
		g.Collapsed = *ch.Collapsed
	}
	if ch.Metadata != nil {
		g.Metadata = maps.Clone(ch.Metadata)
	}
	return nil
}

func applyRemoveGroup(d *ir.Diagram, o RemoveGroupOp) error {
	g, ok := d.Group(o.ID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "group %q not found", o.ID)
	}

	if o.Ungroup {
		// Children survive as top-level elements.
		deleteGroup(d, o.ID)
		stripChild(d, o.ID)
		return nil
	}

	nodes, groups := descendants(d, g)
	deleteGroup(d, o.ID)
	stripChild(d, o.ID)
	for id := range groups {
		deleteGroup(d, id)
		stripChild(d, id)
	}
	for id := range nodes {
		for _, eid := range d.EdgesTouching(id) {
			deleteEdge(d, eid)
		}
		deleteNode(d, id)
		stripChild(d, id)
	}
	return nil
}

func applyAddToGroup(d *ir.Diagram, o AddToGroupOp) error {
	g, ok := d.Group(o.GroupID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "group %q not found", o.GroupID)
	}
	for _, id := range o.Children {
		if !idTaken(d, id) {
			return errors.New(errors.ErrCodeNotFound, "group child %q not found", id)
		}
	}
	for _, id := range o.Children {
		if !g.HasChild(id) {
			g.Children = append(g.Children, id)
		}
	}
	return nil
}

func applyRemoveFromGroup(d *ir.Diagram, o RemoveFromGroupOp) error {
	g, ok := d.Group(o.GroupID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "group %q not found", o.GroupID)
	}
	g.Children = slices.DeleteFunc(g.Children, func(c string) bool {
		return slices.Contains(o.Children, c)
	})
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// idTaken reports whether the ID is used by a node or group. Edges keep
// their own namespace.
func idTaken(d *ir.Diagram, id string) bool {
	if _, ok := d.Node(id); ok {
		return true
	}
	_, ok := d.Group(id)
	return ok
}

func deleteNode(d *ir.Diagram, id string) {
	d.Nodes = slices.DeleteFunc(d.Nodes, func(n ir.Node) bool { return n.ID == id })
}

func deleteEdge(d *ir.Diagram, id string) {
	d.Edges = slices.DeleteFunc(d.Edges, func(e ir.Edge) bool { return e.ID == id })
}

func deleteGroup(d *ir.Diagram, id string) {
	d.Groups = slices.DeleteFunc(d.Groups, func(g ir.Group) bool { return g.ID == id })
}

// stripChild removes id from every group's children list.
func stripChild(d *ir.Diagram, id string) {
	for i := range d.Groups {
		d.Groups[i].Children = slices.DeleteFunc(d.Groups[i].Children, func(c string) bool {
			return c == id
		})
	}
}

// descendants collects the transitive children of root, split into node ids
// and group ids. Traversal tolerates containment cycles in the input, which
// an unvalidated base diagram may carry.
func descendants(d *ir.Diagram, root *ir.Group) (nodes, groups map[string]bool) {
	nodes = make(map[string]bool)
	groups = make(map[string]bool)

	queue := slices.Clone(root.Children)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if _, ok := d.Node(id); ok {
			nodes[id] = true
			continue
		}
		if g, ok := d.Group(id); ok && !groups[id] {
			groups[id] = true
			queue = append(queue, g.Children...)
		}
	}
	return nodes, groups
}
