// Package mermaid converts between diagrams and Mermaid flowchart text.
//
// # Overview
//
// Both directions work on the flowchart grammar only: a `flowchart` or
// `graph` header, node definitions with shape brackets, link lines, and
// `subgraph`/`end` blocks. Other Mermaid diagram kinds (sequence, class,
// state) are out of scope here; their headers fail to parse.
//
// # Shape Mapping
//
// Shapes map to Mermaid's bracket pairs:
//
//	rectangle        id["label"]
//	rounded-rect     id("label")
//	circle           id(("label"))
//	ellipse          id(["label"])    (stadium, closest Mermaid has)
//	diamond          id{"label"}
//	hexagon          id{{"label"}}
//	parallelogram    id[/"label"/]
//	trapezoid        id[/"label"\]
//	cylinder         id[("label")]
//
// Shapes with no Mermaid equivalent (document, cloud, actor, note, custom)
// render as rectangles. The parser maps each bracket pair back to the shape
// on the left.
//
// # Link Mapping
//
// Lines and target arrowheads map to link operators:
//
//	solid  + arrow    -->        thick + arrow    ==>
//	solid  + none     ---        thick + none     ===
//	dashed + arrow    -.->       dashed + none    -.-
//
// Dotted lines share the dashed operator and come back as dashed; Mermaid
// has no separate dotted link. Non-standard arrowheads flatten to the
// standard one, and source arrowheads are dropped.
//
// # Parser Limits
//
// The parser accepts what the generator emits plus the common hand-written
// forms: `graph` headers, longer links (`--->`), link chains
// (`a --> b --> c`), trailing semicolons, and `%%` comments. Styling
// directives (`style`, `classDef`, `class`, `linkStyle`, `click`) are not
// supported and fail with the offending line number, as does any line that
// matches no production. A failed parse never returns a partial diagram.
package mermaid
