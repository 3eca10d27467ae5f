package ir

// =============================================================================
// Diagram Types
// =============================================================================

// DiagramType categorizes a diagram by family. Only flowcharts get the full
// treatment from the layout engine; the other categories exist so parsers
// can classify sources without losing information.
type DiagramType string

// Diagram categories.
const (
	TypeFlowchart DiagramType = "flowchart"
	TypeSequence  DiagramType = "sequence"
	TypeClass     DiagramType = "class"
	TypeState     DiagramType = "state"
	TypeER        DiagramType = "er"
	TypeGantt     DiagramType = "gantt"
	TypePie       DiagramType = "pie"
	TypeMindmap   DiagramType = "mindmap"
	TypeUnknown   DiagramType = "unknown"
)

// diagramTypes lists every recognized category.
var diagramTypes = []DiagramType{
	TypeFlowchart, TypeSequence, TypeClass, TypeState,
	TypeER, TypeGantt, TypePie, TypeMindmap, TypeUnknown,
}

// Valid reports whether t is a recognized diagram category.
func (t DiagramType) Valid() bool {
	for _, dt := range diagramTypes {
		if t == dt {
			return true
		}
	}
	return false
}

// DiagramTypes returns all recognized diagram categories.
func DiagramTypes() []DiagramType {
	out := make([]DiagramType, len(diagramTypes))
	copy(out, diagramTypes)
	return out
}

// =============================================================================
// Shapes
// =============================================================================

// Shape identifies a node's visual form. An empty Shape is treated as
// [ShapeRectangle] everywhere a shape matters.
type Shape string

// Node shapes.
const (
	ShapeRectangle     Shape = "rectangle"
	ShapeRoundedRect   Shape = "rounded-rectangle"
	ShapeCircle        Shape = "circle"
	ShapeEllipse       Shape = "ellipse"
	ShapeDiamond       Shape = "diamond"
	ShapeHexagon       Shape = "hexagon"
	ShapeParallelogram Shape = "parallelogram"
	ShapeTrapezoid     Shape = "trapezoid"
	ShapeCylinder      Shape = "cylinder"
	ShapeDocument      Shape = "document"
	ShapeCloud         Shape = "cloud"
	ShapeActor         Shape = "actor"
	ShapeNote          Shape = "note"
	ShapeCustom        Shape = "custom"
)

var shapes = []Shape{
	ShapeRectangle, ShapeRoundedRect, ShapeCircle, ShapeEllipse,
	ShapeDiamond, ShapeHexagon, ShapeParallelogram, ShapeTrapezoid,
	ShapeCylinder, ShapeDocument, ShapeCloud, ShapeActor,
	ShapeNote, ShapeCustom,
}

// Valid reports whether s is a recognized shape. The empty shape is valid
// (it defaults to a rectangle).
func (s Shape) Valid() bool {
	if s == "" {
		return true
	}
	for _, sh := range shapes {
		if s == sh {
			return true
		}
	}
	return false
}

// Shapes returns all recognized node shapes.
func Shapes() []Shape {
	out := make([]Shape, len(shapes))
	copy(out, shapes)
	return out
}

// DefaultSize returns the natural size for a node of this shape, used when
// a node carries no explicit size. Symmetric shapes (circle, diamond) get
// square boxes so layout spacing stays even.
func (s Shape) DefaultSize() Size {
	switch s {
	case ShapeCircle:
		return Size{Width: 80, Height: 80}
	case ShapeDiamond:
		return Size{Width: 100, Height: 100}
	case ShapeEllipse:
		return Size{Width: 120, Height: 70}
	case ShapeHexagon:
		return Size{Width: 140, Height: 60}
	case ShapeCylinder:
		return Size{Width: 100, Height: 80}
	case ShapeActor:
		return Size{Width: 60, Height: 100}
	case ShapeDocument, ShapeNote:
		return Size{Width: 120, Height: 80}
	case ShapeCloud:
		return Size{Width: 140, Height: 80}
	default:
		return Size{Width: 120, Height: 60}
	}
}

// =============================================================================
// Arrowheads and Lines
// =============================================================================

// ArrowType identifies the marker drawn at an edge endpoint. The zero value
// means the endpoint default: no marker at the source, [ArrowStandard] at
// the target.
type ArrowType string

// Arrowhead markers.
const (
	ArrowNone          ArrowType = "none"
	ArrowStandard      ArrowType = "arrow"
	ArrowOpen          ArrowType = "open"
	ArrowDiamond       ArrowType = "diamond"
	ArrowDiamondFilled ArrowType = "diamond-filled"
	ArrowCircle        ArrowType = "circle"
	ArrowCircleFilled  ArrowType = "circle-filled"
	ArrowCross         ArrowType = "cross"
	ArrowBar           ArrowType = "bar"
)

var arrowTypes = []ArrowType{
	ArrowNone, ArrowStandard, ArrowOpen, ArrowDiamond, ArrowDiamondFilled,
	ArrowCircle, ArrowCircleFilled, ArrowCross, ArrowBar,
}

// Valid reports whether a is a recognized arrowhead. The empty value is
// valid (endpoint default applies).
func (a ArrowType) Valid() bool {
	if a == "" {
		return true
	}
	for _, at := range arrowTypes {
		if a == at {
			return true
		}
	}
	return false
}

// LineType identifies an edge's stroke pattern. The zero value means
// [LineSolid].
type LineType string

// Edge line patterns.
const (
	LineSolid  LineType = "solid"
	LineDashed LineType = "dashed"
	LineDotted LineType = "dotted"
	LineThick  LineType = "thick"
)

var lineTypes = []LineType{LineSolid, LineDashed, LineDotted, LineThick}

// Valid reports whether l is a recognized line pattern. The empty value is
// valid (solid applies).
func (l LineType) Valid() bool {
	if l == "" {
		return true
	}
	for _, lt := range lineTypes {
		if l == lt {
			return true
		}
	}
	return false
}
