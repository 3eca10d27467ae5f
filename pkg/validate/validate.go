package validate

import (
	"fmt"
	"math"
	"time"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/ir"
)

// Options controls which checks run and how findings are classified.
// The zero value gives the documented defaults: references and layout are
// checked, connectivity and style checks are off, no size limits.
type Options struct {
	// Strict counts warnings against validity. Warnings keep their
	// severity in the report either way.
	Strict bool

	// SkipReferences disables the referential-integrity check. The build
	// and mutate packages never skip it.
	SkipReferences bool

	// SkipLayout disables the geometry checks entirely. Construction-time
	// validation uses this, since unlaid-out diagrams have no geometry yet.
	SkipLayout bool

	// AllowAutoLayout tolerates nodes without a position when layout is
	// checked. AllowAutoSize does the same for missing sizes. Geometry
	// that is present is checked regardless.
	AllowAutoLayout bool
	AllowAutoSize   bool

	// CheckConnectivity warns about nodes no edge touches and about
	// self-loops.
	CheckConnectivity bool

	// CheckStyles warns about unparseable style values.
	CheckStyles bool

	// MaxNodes and MaxEdges bound diagram size. Zero means unlimited.
	MaxNodes int
	MaxEdges int
}

// Check validates a diagram and returns a complete report. It never panics
// and never returns early: every finding the enabled checks can make is in
// the report. A nil diagram yields an invalid report, not a crash.
func Check(d *ir.Diagram, opts Options) Report {
	start := time.Now()
	var rep Report

	if d == nil {
		rep.AddError("", CodeMissingDiagram, "diagram is nil")
		rep.Stats.Duration = time.Since(start)
		return rep
	}

	rep.Stats = Stats{Nodes: len(d.Nodes), Edges: len(d.Edges), Groups: len(d.Groups)}

	checkStructure(d, &rep)
	checkUniqueIDs(d, &rep)
	if !opts.SkipReferences {
		checkReferences(d, &rep)
	}
	checkContainment(d, &rep)
	if !opts.SkipLayout {
		checkGeometry(d, opts, &rep)
	}
	if opts.CheckConnectivity {
		checkConnectivity(d, &rep)
	}
	if opts.CheckStyles {
		checkStyles(d, &rep)
	}
	checkLimits(d, opts, &rep)

	rep.Valid = len(rep.Errors) == 0 && (!opts.Strict || len(rep.Warnings) == 0)
	rep.Stats.Duration = time.Since(start)
	return rep
}

// IsValid reports whether the diagram passes [Check] with the given options.
func IsValid(d *ir.Diagram, opts Options) bool {
	return Check(d, opts).Valid
}

// Errors runs [Check] and returns only the errors.
func Errors(d *ir.Diagram, opts Options) []Issue {
	return Check(d, opts).Errors
}

// Warnings runs [Check] and returns only the warnings.
func Warnings(d *ir.Diagram, opts Options) []Issue {
	return Check(d, opts).Warnings
}

// checkStructure verifies required fields and enum values element by
// element. It also flags the benign oddities (empty diagram, empty group)
// as warnings.
func checkStructure(d *ir.Diagram, rep *Report) {
	if d.ID == "" {
		rep.AddError("id", CodeMissingID, "diagram id is required")
	}
	if d.Type != "" && !d.Type.Valid() {
		rep.AddWarning("type", CodeUnknownType, "unknown diagram type %q", d.Type)
	}
	if len(d.Nodes) == 0 {
		rep.AddWarning("nodes", CodeNoNodes, "diagram has no nodes")
	}

	for i := range d.Nodes {
		n := &d.Nodes[i]
		if n.ID == "" {
			rep.AddError(fmt.Sprintf("nodes[%d].id", i), CodeMissingID, "node id is required")
		}
		if !n.Shape.Valid() {
			rep.AddWarning(fmt.Sprintf("nodes[%d].shape", i), CodeUnknownShape, "unknown shape %q", n.Shape)
		}
	}

	for i := range d.Edges {
		e := &d.Edges[i]
		if e.ID == "" {
			rep.AddError(fmt.Sprintf("edges[%d].id", i), CodeMissingID, "edge id is required")
		}
		if e.Source == "" {
			rep.AddError(fmt.Sprintf("edges[%d].source", i), CodeMissingReference, "edge source is required")
		}
		if e.Target == "" {
			rep.AddError(fmt.Sprintf("edges[%d].target", i), CodeMissingReference, "edge target is required")
		}
		if !e.ArrowSource.Valid() {
			rep.AddWarning(fmt.Sprintf("edges[%d].arrow_source", i), CodeUnknownArrow, "unknown arrow type %q", e.ArrowSource)
		}
		if !e.ArrowTarget.Valid() {
			rep.AddWarning(fmt.Sprintf("edges[%d].arrow_target", i), CodeUnknownArrow, "unknown arrow type %q", e.ArrowTarget)
		}
		if !e.Line.Valid() {
			rep.AddWarning(fmt.Sprintf("edges[%d].line", i), CodeUnknownLine, "unknown line type %q", e.Line)
		}
	}

	for i := range d.Groups {
		g := &d.Groups[i]
		if g.ID == "" {
			rep.AddError(fmt.Sprintf("groups[%d].id", i), CodeMissingID, "group id is required")
		}
		if len(g.Children) == 0 {
			rep.AddWarning(fmt.Sprintf("groups[%d].children", i), CodeEmptyGroup, "group %q has no children", g.ID)
		}
	}
}

// checkUniqueIDs compares the IDs of all nodes, edges, AND groups against
// one shared registry. This is stricter than the split namespaces the
// builder and mutator enforce per operation: an edge reusing a node's ID
// passes their fail-fast checks but is a duplicate here.
func checkUniqueIDs(d *ir.Diagram, rep *Report) {
	seen := make(map[string]string, len(d.Nodes)+len(d.Edges)+len(d.Groups))

	record := func(id, kind, path string) {
		if id == "" {
			return // reported by checkStructure
		}
		if prev, ok := seen[id]; ok {
			rep.AddError(path, CodeDuplicateID, "duplicate id %q: already used by a %s", id, prev)
			return
		}
		seen[id] = kind
	}

	for i := range d.Nodes {
		record(d.Nodes[i].ID, "node", fmt.Sprintf("nodes[%d].id", i))
	}
	for i := range d.Edges {
		record(d.Edges[i].ID, "edge", fmt.Sprintf("edges[%d].id", i))
	}
	for i := range d.Groups {
		record(d.Groups[i].ID, "group", fmt.Sprintf("groups[%d].id", i))
	}
}

// checkReferences verifies that every edge endpoint names a node and every
// group child names a node or group. Endpoints that name a group get a
// dedicated message, since that mistake reads differently from a typo.
func checkReferences(d *ir.Diagram, rep *Report) {
	nodes := make(map[string]bool, len(d.Nodes))
	for i := range d.Nodes {
		nodes[d.Nodes[i].ID] = true
	}
	groups := make(map[string]bool, len(d.Groups))
	for i := range d.Groups {
		groups[d.Groups[i].ID] = true
	}

	endpoint := func(id, path string) {
		if id == "" || nodes[id] {
			return
		}
		if groups[id] {
			rep.AddError(path, CodeInvalidReference, "edge endpoint %q is a group; edges connect nodes only", id)
			return
		}
		rep.AddError(path, CodeInvalidReference, "node %q not found", id)
	}

	for i := range d.Edges {
		endpoint(d.Edges[i].Source, fmt.Sprintf("edges[%d].source", i))
		endpoint(d.Edges[i].Target, fmt.Sprintf("edges[%d].target", i))
	}

	for i := range d.Groups {
		for j, child := range d.Groups[i].Children {
			path := fmt.Sprintf("groups[%d].children[%d]", i, j)
			if child == "" {
				rep.AddError(path, CodeMissingReference, "group child id is empty")
				continue
			}
			if !nodes[child] && !groups[child] {
				rep.AddError(path, CodeInvalidReference, "group child %q not found", child)
			}
		}
	}
}

// checkContainment walks group-to-group child references depth first and
// reports any group revisited along a single path.
//
// # Algorithm
//
// Each root group starts a walk with a visited set containing only itself.
// Descending into a child group copies the set before extending it, so the
// set describes exactly one path from the root. Sibling subtrees therefore
// share nothing: a diamond (G1 containing G2 and G3, both containing G4)
// is legal and reports no cycle, while any path that reaches the same
// group twice is reported.
//
// Children that are nodes or unknown IDs are skipped here; the reference
// check owns those findings.
func checkContainment(d *ir.Diagram, rep *Report) {
	groups := make(map[string]*ir.Group, len(d.Groups))
	for i := range d.Groups {
		if d.Groups[i].ID != "" {
			groups[d.Groups[i].ID] = &d.Groups[i]
		}
	}

	var rootPath string
	var walk func(g *ir.Group, visited map[string]bool)
	walk = func(g *ir.Group, visited map[string]bool) {
		for _, childID := range g.Children {
			child, ok := groups[childID]
			if !ok {
				continue
			}
			if visited[childID] {
				rep.AddError(rootPath, CodeCircularGroup, "circular containment: group %q is nested inside itself", childID)
				continue
			}
			branch := make(map[string]bool, len(visited)+1)
			for id := range visited {
				branch[id] = true
			}
			branch[childID] = true
			walk(child, branch)
		}
	}

	for i := range d.Groups {
		g := &d.Groups[i]
		if g.ID == "" {
			continue
		}
		rootPath = fmt.Sprintf("groups[%d]", i)
		walk(g, map[string]bool{g.ID: true})
	}
}

// checkGeometry verifies node positions and sizes: present geometry must
// be finite with positive dimensions; absent geometry is an error unless
// the options tolerate it.
func checkGeometry(d *ir.Diagram, opts Options, rep *Report) {
	for i := range d.Nodes {
		n := &d.Nodes[i]

		switch {
		case n.Position == nil:
			if !opts.AllowAutoLayout {
				rep.AddError(fmt.Sprintf("nodes[%d].position", i), CodeMissingPosition, "node %q has no position", n.ID)
			}
		case !finite(n.Position.X) || !finite(n.Position.Y):
			rep.AddError(fmt.Sprintf("nodes[%d].position", i), CodeInvalidPosition, "node %q position must be finite", n.ID)
		}

		switch {
		case n.Size == nil:
			if !opts.AllowAutoSize {
				rep.AddError(fmt.Sprintf("nodes[%d].size", i), CodeMissingSize, "node %q has no size", n.ID)
			}
		case !finite(n.Size.Width) || !finite(n.Size.Height):
			rep.AddError(fmt.Sprintf("nodes[%d].size", i), CodeInvalidSize, "node %q size must be finite", n.ID)
		case n.Size.Width <= 0 || n.Size.Height <= 0:
			rep.AddError(fmt.Sprintf("nodes[%d].size", i), CodeInvalidSize, "node %q size must be positive", n.ID)
		}
	}
}

// checkConnectivity warns about nodes no edge touches and about edges that
// loop back to their own source. Self-loops are permitted, not errors.
func checkConnectivity(d *ir.Diagram, rep *Report) {
	touched := make(map[string]bool, len(d.Nodes))
	for i := range d.Edges {
		e := &d.Edges[i]
		touched[e.Source] = true
		touched[e.Target] = true
		if e.Source != "" && e.Source == e.Target {
			rep.AddWarning(fmt.Sprintf("edges[%d]", i), CodeSelfLoop, "edge %q connects node %q to itself", e.ID, e.Source)
		}
	}

	for i := range d.Nodes {
		if id := d.Nodes[i].ID; id != "" && !touched[id] {
			rep.AddWarning(fmt.Sprintf("nodes[%d]", i), CodeDisconnectedNode, "node %q is not connected to any edge", id)
		}
	}
}

// checkStyles warns about color values no supported target syntax can
// consume and about negative font metrics.
func checkStyles(d *ir.Diagram, rep *Report) {
	styleAt := func(path string, s ir.Style) {
		if s.Fill != "" {
			if err := errors.ValidateColor(s.Fill); err != nil {
				rep.AddWarning(path+".fill", CodeInvalidStyle, "%s", errors.UserMessage(err))
			}
		}
		if s.Stroke != "" {
			if err := errors.ValidateColor(s.Stroke); err != nil {
				rep.AddWarning(path+".stroke", CodeInvalidStyle, "%s", errors.UserMessage(err))
			}
		}
		if s.FontColor != "" {
			if err := errors.ValidateColor(s.FontColor); err != nil {
				rep.AddWarning(path+".font_color", CodeInvalidStyle, "%s", errors.UserMessage(err))
			}
		}
		if s.StrokeWidth < 0 {
			rep.AddWarning(path+".stroke_width", CodeInvalidStyle, "stroke width cannot be negative")
		}
		if s.FontSize < 0 {
			rep.AddWarning(path+".font_size", CodeInvalidStyle, "font size cannot be negative")
		}
	}

	for i := range d.Nodes {
		styleAt(fmt.Sprintf("nodes[%d].style", i), d.Nodes[i].Style)
	}
	for i := range d.Edges {
		styleAt(fmt.Sprintf("edges[%d].style", i), d.Edges[i].Style)
	}
	for i := range d.Groups {
		styleAt(fmt.Sprintf("groups[%d].style", i), d.Groups[i].Style)
	}
}

// checkLimits enforces the configured maximum element counts.
func checkLimits(d *ir.Diagram, opts Options, rep *Report) {
	if opts.MaxNodes > 0 && len(d.Nodes) > opts.MaxNodes {
		rep.AddError("nodes", CodeTooManyNodes, "diagram has %d nodes (max %d)", len(d.Nodes), opts.MaxNodes)
	}
	if opts.MaxEdges > 0 && len(d.Edges) > opts.MaxEdges {
		rep.AddError("edges", CodeTooManyEdges, "diagram has %d edges (max %d)", len(d.Edges), opts.MaxEdges)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
