package io

import (
	"bytes"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/WhiteBite/diaflow/pkg/errors"
)

// diagramSchemaJSON is the JSON Schema for diagram documents. Embedded as a
// constant to avoid filesystem dependencies.
const diagramSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/WhiteBite/diaflow/schemas/diagram.json",
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "name": { "type": "string" },
    "type": {
      "type": "string",
      "enum": ["flowchart", "sequence", "class", "state", "er", "gantt", "pie", "mindmap", "unknown"]
    },
    "nodes": { "type": "array", "items": { "$ref": "#/$defs/node" } },
    "edges": { "type": "array", "items": { "$ref": "#/$defs/edge" } },
    "groups": { "type": "array", "items": { "$ref": "#/$defs/group" } },
    "viewport": { "$ref": "#/$defs/viewport" },
    "metadata": { "type": "object" }
  },
  "additionalProperties": false,
  "$defs": {
    "node": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "label": { "type": "string" },
        "shape": {
          "type": "string",
          "enum": ["rectangle", "rounded-rectangle", "circle", "ellipse", "diamond", "hexagon", "parallelogram", "trapezoid", "cylinder", "document", "cloud", "actor", "note", "custom"]
        },
        "position": { "$ref": "#/$defs/point" },
        "size": { "$ref": "#/$defs/size" },
        "style": { "$ref": "#/$defs/style" },
        "ports": { "type": "array", "items": { "$ref": "#/$defs/port" } },
        "metadata": { "type": "object" }
      },
      "additionalProperties": false
    },
    "edge": {
      "type": "object",
      "required": ["id", "source", "target"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "source": { "type": "string" },
        "target": { "type": "string" },
        "source_port": { "type": "string" },
        "target_port": { "type": "string" },
        "label": { "type": "string" },
        "label_position": { "$ref": "#/$defs/point" },
        "arrow_source": { "$ref": "#/$defs/arrow" },
        "arrow_target": { "$ref": "#/$defs/arrow" },
        "line": { "type": "string", "enum": ["solid", "dashed", "dotted", "thick"] },
        "style": { "$ref": "#/$defs/style" },
        "waypoints": { "type": "array", "items": { "$ref": "#/$defs/point" } },
        "metadata": { "type": "object" }
      },
      "additionalProperties": false
    },
    "group": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "label": { "type": "string" },
        "children": { "type": "array", "items": { "type": "string" } },
        "position": { "$ref": "#/$defs/point" },
        "size": { "$ref": "#/$defs/size" },
        "style": { "$ref": "#/$defs/style" },
        "collapsed": { "type": "boolean" },
        "metadata": { "type": "object" }
      },
      "additionalProperties": false
    },
    "arrow": {
      "type": "string",
      "enum": ["none", "arrow", "open", "diamond", "diamond-filled", "circle", "circle-filled", "cross", "bar"]
    },
    "point": {
      "type": "object",
      "required": ["x", "y"],
      "properties": {
        "x": { "type": "number" },
        "y": { "type": "number" }
      },
      "additionalProperties": false
    },
    "size": {
      "type": "object",
      "required": ["width", "height"],
      "properties": {
        "width": { "type": "number" },
        "height": { "type": "number" }
      },
      "additionalProperties": false
    },
    "port": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "x": { "type": "number" },
        "y": { "type": "number" }
      },
      "additionalProperties": false
    },
    "style": {
      "type": "object",
      "properties": {
        "fill": { "type": "string" },
        "stroke": { "type": "string" },
        "stroke_width": { "type": "number" },
        "font_size": { "type": "number" },
        "font_family": { "type": "string" },
        "font_color": { "type": "string" }
      },
      "additionalProperties": false
    },
    "viewport": {
      "type": "object",
      "required": ["width", "height"],
      "properties": {
        "x": { "type": "number" },
        "y": { "type": "number" },
        "width": { "type": "number" },
        "height": { "type": "number" }
      },
      "additionalProperties": false
    }
  }
}`

// compileSchema compiles the embedded schema once per process.
var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	const url = "https://github.com/WhiteBite/diaflow/schemas/diagram.json"
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(diagramSchemaJSON))
	if err != nil {
		return nil, err
	}
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
})

// ValidateSchema checks that data is a structurally valid diagram document.
// Violations are reported with their instance location, so "/nodes/3/shape"
// points at the offending value. Referential rules (dangling edges,
// duplicate ids) are out of scope here; see the validate package.
func ValidateSchema(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "compile diagram schema")
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON")
	}
	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}
	return nil
}

func schemaError(err error) error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "schema validation")
	}
	violations := collectViolations(verr)
	if len(violations) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidFormat, verr, "schema validation")
	}
	return errors.New(errors.ErrCodeInvalidFormat,
		"not a valid diagram document: %s", strings.Join(violations, "; "))
}

// collectViolations walks a ValidationError tree and collects leaf messages
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{loc + ": " + leafMessage(verr)}
	}
	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}

var violationPrinter = message.NewPrinter(language.English)

// leafMessage renders a single violation without the multi-line tree
// header that ValidationError.Error produces.
func leafMessage(verr *jsonschema.ValidationError) string {
	if verr.ErrorKind != nil {
		return verr.ErrorKind.LocalizedString(violationPrinter)
	}
	return verr.Error()
}
