package ir

import "slices"

// Clone returns a deep copy of the diagram sharing no mutable memory with
// the original: every nested slice, map, and pointer field is copied. The
// build and mutate packages clone before every change so callers never see
// aliased state.
//
// Metadata values are copied one level deep. A caller that stores mutable
// values (nested maps, slices) inside Metadata and mutates them afterwards
// can still observe sharing; scalar values, the overwhelmingly common case,
// are fully isolated.
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}
	out := &Diagram{
		ID:       d.ID,
		Name:     d.Name,
		Type:     d.Type,
		Viewport: cloneViewport(d.Viewport),
		Metadata: cloneMetadata(d.Metadata),
	}
	if d.Nodes != nil {
		out.Nodes = make([]Node, len(d.Nodes))
		for i := range d.Nodes {
			out.Nodes[i] = d.Nodes[i].Clone()
		}
	}
	if d.Edges != nil {
		out.Edges = make([]Edge, len(d.Edges))
		for i := range d.Edges {
			out.Edges[i] = d.Edges[i].Clone()
		}
	}
	if d.Groups != nil {
		out.Groups = make([]Group, len(d.Groups))
		for i := range d.Groups {
			out.Groups[i] = d.Groups[i].Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Position = clonePosition(n.Position)
	n.Size = cloneSize(n.Size)
	n.Ports = slices.Clone(n.Ports)
	n.Metadata = cloneMetadata(n.Metadata)
	return n
}

// Clone returns a deep copy of the edge.
func (e Edge) Clone() Edge {
	e.LabelPosition = clonePoint(e.LabelPosition)
	e.Waypoints = slices.Clone(e.Waypoints)
	e.Metadata = cloneMetadata(e.Metadata)
	return e
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	g.Children = slices.Clone(g.Children)
	g.Position = clonePosition(g.Position)
	g.Size = cloneSize(g.Size)
	g.Metadata = cloneMetadata(g.Metadata)
	return g
}

func cloneViewport(v *Viewport) *Viewport {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func clonePosition(p *Position) *Position {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func cloneSize(s *Size) *Size {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func cloneMetadata(m Metadata) Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
