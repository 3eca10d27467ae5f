package ir

// =============================================================================
// Geometry
// =============================================================================

// Position is a top-left based coordinate pair. The y axis grows downward,
// matching SVG and every supported target syntax.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a free coordinate pair, used for edge waypoints and label
// positions.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Port is a named attachment point on a node boundary. X and Y are relative
// coordinates in [0,1] measured from the node's top-left corner, so
// {0.5, 0} is the middle of the top edge.
type Port struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// =============================================================================
// Style
// =============================================================================

// Default style values, applied by the builder to new elements and assumed
// by generators when a field is unset.
const (
	DefaultFill        = "#ffffff"
	DefaultStroke      = "#000000"
	DefaultStrokeWidth = 2.0
	DefaultFontSize    = 14.0
)

// Style holds the visual attributes shared by nodes, edges, and groups.
// Every field is optional; the zero value means "unset" and generators
// substitute the documented defaults. Style is comparable, so a zero check
// is a plain equality test.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`
	FontFamily  string  `json:"font_family,omitempty"`
	FontColor   string  `json:"font_color,omitempty"`
}

// IsZero reports whether no style field is set.
func (s Style) IsZero() bool { return s == Style{} }

// WithDefaults returns a copy of s with unset fill, stroke, stroke width,
// and font size fields filled from the documented defaults. Set fields are
// left untouched, so caller-supplied values always win.
func (s Style) WithDefaults() Style {
	if s.Fill == "" {
		s.Fill = DefaultFill
	}
	return s.WithEdgeDefaults()
}

// WithEdgeDefaults is [Style.WithDefaults] without the fill. Edges take no
// fill default: only closed arrowheads have area to paint, and generators
// pick their own fill for those.
func (s Style) WithEdgeDefaults() Style {
	if s.Stroke == "" {
		s.Stroke = DefaultStroke
	}
	if s.StrokeWidth == 0 {
		s.StrokeWidth = DefaultStrokeWidth
	}
	if s.FontSize == 0 {
		s.FontSize = DefaultFontSize
	}
	return s
}
