package mutate

import "github.com/WhiteBite/diaflow/pkg/ir"

// Op is one queued mutation. The concrete types below are the only
// implementations; the applier matches on them exhaustively.
type Op interface {
	// Name returns the operation kind, e.g. "remove-node".
	Name() string

	isOp()
}

// =============================================================================
// Node operations
// =============================================================================

// AddNodeOp inserts a node. The id must be free in the node-and-group
// namespace; style defaults are applied the same way the build package
// applies them.
type AddNodeOp struct {
	Node ir.Node
}

// UpdateNodeOp merges partial changes onto an existing node.
type UpdateNodeOp struct {
	ID      string
	Changes NodeChanges
}

// RemoveNodeOp deletes a node. With Cascade set, every edge touching the
// node is deleted too and the id is stripped from all group children.
// Without it, the removal fails while any edge still references the node.
type RemoveNodeOp struct {
	ID      string
	Cascade bool
}

// MoveNodeOp sets a node's position.
type MoveNodeOp struct {
	ID       string
	Position ir.Position
}

// ResizeNodeOp sets a node's size. Width and height must be positive.
type ResizeNodeOp struct {
	ID   string
	Size ir.Size
}

// NodeChanges is a partial node update. Nil fields keep the current value;
// there is no way to clear a field back to unset. The node's ID is not part
// of the changes and always survives.
//
// Style and Metadata replace wholesale when set, they are not merged
// field-by-field.
type NodeChanges struct {
	Label    *string
	Shape    *ir.Shape
	Position *ir.Position
	Size     *ir.Size
	Style    *ir.Style
	Ports    []ir.Port
	Metadata ir.Metadata
}

// =============================================================================
// Edge operations
// =============================================================================

// AddEdgeOp inserts an edge. Both endpoints must name existing nodes; an
// empty id is generated as "source-target" and must be free among edge ids.
type AddEdgeOp struct {
	Edge ir.Edge
}

// UpdateEdgeOp merges partial changes onto an existing edge. Endpoints are
// deliberately absent from [EdgeChanges]; rewiring goes through
// [ReconnectEdgeOp], which checks that the new endpoints are live.
type UpdateEdgeOp struct {
	ID      string
	Changes EdgeChanges
}

// RemoveEdgeOp deletes an edge.
type RemoveEdgeOp struct {
	ID string
}

// ReconnectEdgeOp replaces one or both endpoints of an existing edge. An
// empty Source or Target keeps the current endpoint. Both resulting
// endpoints must name live nodes.
type ReconnectEdgeOp struct {
	ID     string
	Source string
	Target string
}

// EdgeChanges is a partial edge update, with the same nil-keeps-current
// convention as [NodeChanges].
type EdgeChanges struct {
	Label         *string
	LabelPosition *ir.Point
	ArrowSource   *ir.ArrowType
	ArrowTarget   *ir.ArrowType
	Line          *ir.LineType
	Style         *ir.Style
	Waypoints     []ir.Point
	Metadata      ir.Metadata
}

// =============================================================================
// Group operations
// =============================================================================

// AddGroupOp inserts a group. The id must be free in the node-and-group
// namespace and every child must name an existing node or group.
type AddGroupOp struct {
	Group ir.Group
}

// UpdateGroupOp merges partial changes onto an existing group.
type UpdateGroupOp struct {
	ID      string
	Changes GroupChanges
}

// RemoveGroupOp deletes a group. With Ungroup set, only the group record
// goes away and its children survive as top-level elements. Without it, the
// group's transitive children (nodes and nested groups) are deleted as well,
// along with every edge touching a deleted node.
type RemoveGroupOp struct {
	ID      string
	Ungroup bool
}

// AddToGroupOp unions ids into a group's children. Every id must name an
// existing node or group; ids already present are kept once.
type AddToGroupOp struct {
	GroupID  string
	Children []string
}

// RemoveFromGroupOp removes ids from a group's children. Ids not present
// are ignored.
type RemoveFromGroupOp struct {
	GroupID  string
	Children []string
}

// GroupChanges is a partial group update, with the same nil-keeps-current
// convention as [NodeChanges]. A non-nil Children replaces the list
// wholesale.
type GroupChanges struct {
	Label     *string
	Children  []string
	Position  *ir.Position
	Size      *ir.Size
	Style     *ir.Style
	Collapsed *bool
	Metadata  ir.Metadata
}

// =============================================================================
// Composite operations
// =============================================================================

// BatchOp applies a pre-built list of operations in order. Batching is
// equivalent to chaining the operations individually.
type BatchOp struct {
	Ops []Op
}

// Name implements [Op].
func (AddNodeOp) Name() string         { return "add-node" }
func (UpdateNodeOp) Name() string      { return "update-node" }
func (RemoveNodeOp) Name() string      { return "remove-node" }
func (MoveNodeOp) Name() string        { return "move-node" }
func (ResizeNodeOp) Name() string      { return "resize-node" }
func (AddEdgeOp) Name() string         { return "add-edge" }
func (UpdateEdgeOp) Name() string      { return "update-edge" }
func (RemoveEdgeOp) Name() string      { return "remove-edge" }
func (ReconnectEdgeOp) Name() string   { return "reconnect-edge" }
func (AddGroupOp) Name() string        { return "add-group" }
func (UpdateGroupOp) Name() string     { return "update-group" }
func (RemoveGroupOp) Name() string     { return "remove-group" }
func (AddToGroupOp) Name() string      { return "add-to-group" }
func (RemoveFromGroupOp) Name() string { return "remove-from-group" }
func (BatchOp) Name() string           { return "batch" }

func (AddNodeOp) isOp()         {}
func (UpdateNodeOp) isOp()      {}
func (RemoveNodeOp) isOp()      {}
func (MoveNodeOp) isOp()        {}
func (ResizeNodeOp) isOp()      {}
func (AddEdgeOp) isOp()         {}
func (UpdateEdgeOp) isOp()      {}
func (RemoveEdgeOp) isOp()      {}
func (ReconnectEdgeOp) isOp()   {}
func (AddGroupOp) isOp()        {}
func (UpdateGroupOp) isOp()     {}
func (RemoveGroupOp) isOp()     {}
func (AddToGroupOp) isOp()      {}
func (RemoveFromGroupOp) isOp() {}
func (BatchOp) isOp()           {}
