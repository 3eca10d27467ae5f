// Package drawio converts between diagrams and draw.io mxGraph XML.
//
// # File Shape
//
// Generated files are uncompressed mxfile documents with a single diagram:
//
//	<mxfile host="diaflow">
//	  <diagram id="..." name="...">
//	    <mxGraphModel><root>
//	      <mxCell id="0"/>
//	      <mxCell id="1" parent="0"/>
//	      ...element cells...
//	    </root></mxGraphModel>
//	  </diagram>
//	</mxfile>
//
// The two anchor cells are always present, groups are emitted before their
// members, and every element cell's parent is either its containing group
// or the layer cell "1". The parser also accepts a bare mxGraphModel root
// and diagrams whose content is deflate-compressed (the draw.io default
// save format).
//
// # Style Strings
//
// Element appearance travels in the mxCell style attribute. The parser
// extracts the keys it understands (shape tokens, fillColor, strokeColor,
// strokeWidth, fontSize, fontColor, fontFamily, dashed, arrow ends) and
// keeps the complete original string in element metadata under
// "drawio_style"; the generator reuses that string verbatim when present,
// so unknown style keys survive a round trip.
package drawio

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/WhiteBite/diaflow/pkg/ir"
)

// styleKey is the metadata key carrying the original style string.
const styleKey = "drawio_style"

type mxFile struct {
	XMLName  xml.Name    `xml:"mxfile"`
	Host     string      `xml:"host,attr,omitempty"`
	Diagrams []mxDiagram `xml:"diagram"`
}

type mxDiagram struct {
	ID      string        `xml:"id,attr,omitempty"`
	Name    string        `xml:"name,attr,omitempty"`
	Model   *mxGraphModel `xml:"mxGraphModel"`
	Content string        `xml:",chardata"`
}

type mxGraphModel struct {
	XMLName xml.Name `xml:"mxGraphModel"`
	Root    mxRoot   `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

// mxCell field order matches the attribute order draw.io itself saves.
type mxCell struct {
	ID          string      `xml:"id,attr"`
	Value       string      `xml:"value,attr,omitempty"`
	Style       string      `xml:"style,attr,omitempty"`
	Vertex      string      `xml:"vertex,attr,omitempty"`
	Edge        string      `xml:"edge,attr,omitempty"`
	Connectable string      `xml:"connectable,attr,omitempty"`
	Collapsed   string      `xml:"collapsed,attr,omitempty"`
	Parent      string      `xml:"parent,attr,omitempty"`
	Source      string      `xml:"source,attr,omitempty"`
	Target      string      `xml:"target,attr,omitempty"`
	Geometry    *mxGeometry `xml:"mxGeometry"`
}

type mxGeometry struct {
	X        float64       `xml:"x,attr,omitempty"`
	Y        float64       `xml:"y,attr,omitempty"`
	Width    float64       `xml:"width,attr,omitempty"`
	Height   float64       `xml:"height,attr,omitempty"`
	Relative string        `xml:"relative,attr,omitempty"`
	As       string        `xml:"as,attr"`
	Points   *mxPointArray `xml:"Array"`
}

type mxPointArray struct {
	As     string    `xml:"as,attr"`
	Points []mxPoint `xml:"mxPoint"`
}

type mxPoint struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

// =============================================================================
// Style Strings
// =============================================================================

// parsedStyle is a decoded style attribute: bare tokens (the first of which
// names the shape for many styles) plus key=value pairs.
type parsedStyle struct {
	tokens map[string]bool
	values map[string]string
}

func parseStyle(s string) parsedStyle {
	ps := parsedStyle{tokens: make(map[string]bool), values: make(map[string]string)}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if k, v, ok := strings.Cut(part, "="); ok {
			ps.values[k] = v
		} else {
			ps.tokens[part] = true
		}
	}
	return ps
}

func (ps parsedStyle) is(key, want string) bool { return ps.values[key] == want }

// nodeShape recovers the shape from a decoded style.
func (ps parsedStyle) nodeShape() ir.Shape {
	if v, ok := ps.values["shape"]; ok {
		switch v {
		case "hexagon":
			return ir.ShapeHexagon
		case "parallelogram":
			return ir.ShapeParallelogram
		case "trapezoid":
			return ir.ShapeTrapezoid
		case "cylinder", "cylinder3":
			return ir.ShapeCylinder
		case "document":
			return ir.ShapeDocument
		case "cloud":
			return ir.ShapeCloud
		case "umlActor", "actor":
			return ir.ShapeActor
		case "note":
			return ir.ShapeNote
		default:
			return ir.ShapeCustom
		}
	}
	switch {
	case ps.tokens["ellipse"] && ps.is("aspect", "fixed"):
		return ir.ShapeCircle
	case ps.tokens["ellipse"]:
		return ir.ShapeEllipse
	case ps.tokens["rhombus"]:
		return ir.ShapeDiamond
	case ps.is("rounded", "1"):
		return ir.ShapeRoundedRect
	default:
		return ir.ShapeRectangle
	}
}

// shapeStyles maps shapes to their draw.io base style. Rectangle variants
// are handled separately because they differ only in the rounded key.
var shapeStyles = map[ir.Shape]string{
	ir.ShapeCircle:        "ellipse;aspect=fixed;whiteSpace=wrap;html=1",
	ir.ShapeEllipse:       "ellipse;whiteSpace=wrap;html=1",
	ir.ShapeDiamond:       "rhombus;whiteSpace=wrap;html=1",
	ir.ShapeHexagon:       "shape=hexagon;whiteSpace=wrap;html=1",
	ir.ShapeParallelogram: "shape=parallelogram;whiteSpace=wrap;html=1",
	ir.ShapeTrapezoid:     "shape=trapezoid;whiteSpace=wrap;html=1",
	ir.ShapeCylinder:      "shape=cylinder3;whiteSpace=wrap;html=1",
	ir.ShapeDocument:      "shape=document;whiteSpace=wrap;html=1",
	ir.ShapeCloud:         "shape=cloud;whiteSpace=wrap;html=1",
	ir.ShapeActor:         "shape=umlActor;verticalLabelPosition=bottom;html=1",
	ir.ShapeNote:          "shape=note;whiteSpace=wrap;html=1",
}

func baseNodeStyle(s ir.Shape) string {
	if base, ok := shapeStyles[s]; ok {
		return base
	}
	if s == ir.ShapeRoundedRect {
		return "rounded=1;whiteSpace=wrap;html=1"
	}
	return "rounded=0;whiteSpace=wrap;html=1"
}

// appendStyle renders the shared Style fields onto a style string. The
// result always ends with a semicolon, matching what draw.io itself saves.
func appendStyle(base string, s ir.Style) string {
	var b strings.Builder
	b.WriteString(base)
	if !strings.HasSuffix(base, ";") {
		b.WriteString(";")
	}
	add := func(key, val string) { b.WriteString(key + "=" + val + ";") }
	if s.Fill != "" {
		add("fillColor", s.Fill)
	}
	if s.Stroke != "" {
		add("strokeColor", s.Stroke)
	}
	if s.StrokeWidth != 0 {
		add("strokeWidth", trimFloat(s.StrokeWidth))
	}
	if s.FontSize != 0 {
		add("fontSize", trimFloat(s.FontSize))
	}
	if s.FontColor != "" {
		add("fontColor", s.FontColor)
	}
	if s.FontFamily != "" {
		add("fontFamily", s.FontFamily)
	}
	return b.String()
}

func trimFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

// readStyle extracts the shared Style fields from a decoded style.
func (ps parsedStyle) readStyle() ir.Style {
	var s ir.Style
	if v, ok := ps.values["fillColor"]; ok && v != "none" {
		s.Fill = v
	}
	if v, ok := ps.values["strokeColor"]; ok && v != "none" {
		s.Stroke = v
	}
	if v, ok := ps.values["strokeWidth"]; ok {
		fmt.Sscanf(v, "%g", &s.StrokeWidth)
	}
	if v, ok := ps.values["fontSize"]; ok {
		fmt.Sscanf(v, "%g", &s.FontSize)
	}
	if v, ok := ps.values["fontColor"]; ok {
		s.FontColor = v
	}
	if v, ok := ps.values["fontFamily"]; ok {
		s.FontFamily = v
	}
	return s
}
