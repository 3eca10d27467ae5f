// Package pkg provides the core libraries for Diaflow diagram conversion.
//
// # Overview
//
// Diaflow translates diagrams between text formats (Mermaid, Graphviz DOT,
// draw.io, PlantUML) through a shared intermediate representation. The pkg
// directory is organized into four main areas:
//
//  1. [ir] - The diagram model plus validation, construction, and mutation
//  2. [formats] - Format registry with per-format parsers and generators
//  3. [layout] - Automatic node placement (layered and grid algorithms)
//  4. [pipeline] - Orchestration (parse → validate → layout → generate)
//
// # Architecture
//
// The typical data flow through Diaflow:
//
//	Source text (.mmd, .dot, .drawio, .puml, .json)
//	         ↓
//	    [formats] package (parse into the IR)
//	         ↓
//	    [validate] package (structural checks)
//	         ↓
//	    [layout] package (position nodes)
//	         ↓
//	    [formats] package (generate target syntax)
//
// # Quick Start
//
// Convert a Mermaid flowchart to DOT:
//
//	import (
//	    "context"
//	    "github.com/WhiteBite/diaflow/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Convert(context.Background(), src, pipeline.Options{
//	    From: "mermaid",
//	    To:   "dot",
//	})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(res.Output)
//
// # Main Packages
//
// ## Diagram Model
//
// [ir] - The intermediate representation: diagrams, nodes, edges, groups,
// geometry, and styles. Every format parses into and generates from this
// model, so adding a format means writing one parser and one generator, not
// one converter per format pair.
//
// [validate] - Non-throwing structural validation. Check collects every
// problem into a report instead of stopping at the first, so callers can
// show users the complete picture.
//
// [build] - Immutable fail-fast diagram construction. Chain methods return
// new builders; the first invalid operation poisons the chain and Build
// surfaces that error.
//
// [mutate] - Transactional diagram editing. Apply clones the input, runs a
// batch of operations, and either returns the fully updated clone or the
// original untouched.
//
// ## Conversion
//
// [formats] - The format registry. Each syntax lives in its own subpackage
// ([formats/mermaid], [formats/dot], [formats/drawio], [formats/plantuml])
// and registers parse and generate capabilities; canonical JSON is handled
// by [io].
//
// [io] - Canonical JSON serialization with schema validation. Documents are
// checked against an embedded JSON Schema on read, so malformed input fails
// with a path-qualified error instead of a zero-valued diagram.
//
// [layout] - Automatic placement for diagrams with no geometry. The layered
// algorithm ranks nodes by edge direction and minimizes crossings; the grid
// algorithm is the total fallback that always succeeds.
//
// ## Infrastructure
//
// [pipeline] - Complete conversion pipeline (parse → validate → layout →
// generate) used by the CLI, HTTP API, and MCP server. Ensures consistent
// behavior across all entry points, with per-stage caching keyed by content
// hash.
//
// [cache] - Cache backends behind one interface: FileCache for the CLI
// (filesystem), RedisCache and MongoCache for shared deployments, and a
// NullCache for tests and one-shot runs.
//
// [errors] - Coded errors shared by every surface. Codes map to exit codes
// in the CLI and status codes in the HTTP API.
//
// [observability] - Hooks for metrics and tracing. No-op by default;
// applications register implementations at startup to receive pipeline,
// cache, and server events.
//
// [buildinfo] - Version metadata injected at build time via ldflags.
//
// # Common Workflows
//
// Parse a single format directly:
//
//	f, _ := formats.ByName("mermaid")
//	d, err := f.Parse(src)
//
// Build a diagram programmatically:
//
//	d, err := build.New("pipeline").
//	    AddNode(ir.Node{ID: "a", Label: "Start"}).
//	    AddNode(ir.Node{ID: "b", Label: "Done"}).
//	    AddEdge(ir.Edge{ID: "e1", Source: "a", Target: "b"}).
//	    Build()
//
// Edit an existing diagram transactionally:
//
//	label := "Begin"
//	updated, err := mutate.New(d).
//	    UpdateNode("a", mutate.NodeChanges{Label: &label}).
//	    RemoveNode("c", true).
//	    Apply()
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/formats/...     # Specific package
//	go test -run Example          # Examples only
//
// [ir]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/ir
// [validate]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/validate
// [build]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/build
// [mutate]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/mutate
// [formats]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/formats
// [formats/mermaid]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/formats/mermaid
// [formats/dot]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/formats/dot
// [formats/drawio]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/formats/drawio
// [formats/plantuml]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/formats/plantuml
// [io]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/io
// [layout]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/layout
// [pipeline]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/cache
// [errors]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/errors
// [observability]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/WhiteBite/diaflow/pkg/buildinfo
package pkg
