// Package formats is the registry of diagram text formats diaflow can read
// and write.
//
// # Overview
//
// Every supported syntax lives in its own subpackage and is described here
// by a [Format] entry: a name, file extensions, and the Parse/Generate
// functions the syntax supports. Conversion code never imports a syntax
// package directly; it looks the format up by name or file path and calls
// through the entry:
//
//	f, err := formats.ByName("mermaid")
//	if err != nil {
//	    return err
//	}
//	d, err := f.Parse(src)
//
// # Architecture
//
// The format system has three layers:
//
//  1. Syntax packages ([mermaid], [dot], [drawio], [plantuml]): self-contained
//     text <-> IR converters that depend only on [ir]
//  2. Registry (this package): the [All] table plus name and path lookup
//  3. Pipeline ([pipeline]): staged conversion that picks formats per run
//
// The canonical JSON form of the IR is registered as the "json" format so
// conversion treats it like any other syntax; its codec lives in [io].
//
// # Capabilities
//
// Not every format goes both ways. [Format.CanParse] and
// [Format.CanGenerate] report direction support, and [ByName] callers are
// expected to check the direction they need:
//
//   - [mermaid]: parse + generate (flowchart subset)
//   - [dot]: parse + generate (digraph subset)
//   - [drawio]: parse + generate (mxGraph XML)
//   - [plantuml]: generate only
//   - json: parse + generate (canonical interchange, [io])
//
// [mermaid]: github.com/WhiteBite/diaflow/pkg/formats/mermaid
// [dot]: github.com/WhiteBite/diaflow/pkg/formats/dot
// [drawio]: github.com/WhiteBite/diaflow/pkg/formats/drawio
// [plantuml]: github.com/WhiteBite/diaflow/pkg/formats/plantuml
// [ir]: github.com/WhiteBite/diaflow/pkg/ir
// [io]: github.com/WhiteBite/diaflow/pkg/io
// [pipeline]: github.com/WhiteBite/diaflow/pkg/pipeline
package formats
