package ir

// =============================================================================
// Diagram - Root Aggregate
// =============================================================================

// Metadata stores arbitrary key-value pairs attached to diagrams or elements.
// Parsers use it to carry source-syntax details (e.g., original style strings)
// through a conversion without the core understanding them.
type Metadata map[string]any

// Diagram is the root aggregate: it owns every node, edge, and group.
// No element exists independent of a Diagram.
//
// Diagrams are replaced wholesale, never edited in place: the build and
// mutate packages clone before changing anything, so a Diagram value held
// by a caller is stable until the caller itself overwrites it.
type Diagram struct {
	ID       string      `json:"id"`
	Name     string      `json:"name,omitempty"`
	Type     DiagramType `json:"type"`
	Nodes    []Node      `json:"nodes"`
	Edges    []Edge      `json:"edges"`
	Groups   []Group     `json:"groups,omitempty"`
	Viewport *Viewport   `json:"viewport,omitempty"`
	Metadata Metadata    `json:"metadata,omitempty"`
}

// New returns an empty flowchart diagram with the given ID.
func New(id string) *Diagram {
	return &Diagram{ID: id, Type: TypeFlowchart}
}

// Viewport describes the visible region of a laid-out diagram.
// The layout package computes it as the node bounding box plus margins.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a shaped diagram element. Position and Size are nil until layout
// has been applied (or a parser carried geometry through from the source).
//
// The zero value is not usable: ID must be set before the node enters a
// Diagram.
type Node struct {
	ID       string    `json:"id"`
	Label    string    `json:"label,omitempty"`
	Shape    Shape     `json:"shape,omitempty"`
	Position *Position `json:"position,omitempty"`
	Size     *Size     `json:"size,omitempty"`
	Style    Style     `json:"style,omitzero"`
	Ports    []Port    `json:"ports,omitempty"`
	Metadata Metadata  `json:"metadata,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Port returns the named port and true, or nil and false if not found.
func (n *Node) Port(name string) (*Port, bool) {
	for i := range n.Ports {
		if n.Ports[i].Name == name {
			return &n.Ports[i], true
		}
	}
	return nil, false
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed connection between two nodes. Source and Target are
// Node IDs; edges never attach to groups. An empty ArrowSource, ArrowTarget,
// or Line means the documented default (no source head, a standard target
// head, a solid line).
type Edge struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Target        string    `json:"target"`
	SourcePort    string    `json:"source_port,omitempty"`
	TargetPort    string    `json:"target_port,omitempty"`
	Label         string    `json:"label,omitempty"`
	LabelPosition *Point    `json:"label_position,omitempty"`
	ArrowSource   ArrowType `json:"arrow_source,omitempty"`
	ArrowTarget   ArrowType `json:"arrow_target,omitempty"`
	Line          LineType  `json:"line,omitempty"`
	Style         Style     `json:"style,omitzero"`
	Waypoints     []Point   `json:"waypoints,omitempty"`
	Metadata      Metadata  `json:"metadata,omitempty"`
}

// Touches reports whether the edge starts or ends at the given node.
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// =============================================================================
// Group
// =============================================================================

// Group is a container element. Nesting is expressed purely through the
// Children ID list, whose entries may name Nodes or other Groups; there is
// no physical containment tree.
type Group struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	Children  []string  `json:"children"`
	Position  *Position `json:"position,omitempty"`
	Size      *Size     `json:"size,omitempty"`
	Style     Style     `json:"style,omitzero"`
	Collapsed bool      `json:"collapsed,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
}

// HasChild reports whether the given ID appears in the group's children.
func (g *Group) HasChild(id string) bool {
	for _, c := range g.Children {
		if c == id {
			return true
		}
	}
	return false
}

// =============================================================================
// Lookup Helpers
// =============================================================================

// Lookups scan linearly: diagrams hold tens to low thousands of elements,
// and the ordered slices are the source of truth. Callers doing many
// lookups build their own index maps.

// Node returns the node with the given ID and true, or nil and false if not
// found. The pointer refers into the diagram's slice, so writes through it
// modify the diagram.
func (d *Diagram) Node(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// Edge returns the edge with the given ID and true, or nil and false if not
// found. The pointer refers into the diagram's slice.
func (d *Diagram) Edge(id string) (*Edge, bool) {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return &d.Edges[i], true
		}
	}
	return nil, false
}

// Group returns the group with the given ID and true, or nil and false if
// not found. The pointer refers into the diagram's slice.
func (d *Diagram) Group(id string) (*Group, bool) {
	for i := range d.Groups {
		if d.Groups[i].ID == id {
			return &d.Groups[i], true
		}
	}
	return nil, false
}

// EdgesTouching returns the IDs of all edges whose source or target is the
// given node, in diagram order. Returns nil when no edge touches the node.
func (d *Diagram) EdgesTouching(nodeID string) []string {
	var ids []string
	for i := range d.Edges {
		if d.Edges[i].Touches(nodeID) {
			ids = append(ids, d.Edges[i].ID)
		}
	}
	return ids
}
