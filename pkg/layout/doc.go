// Package layout assigns geometry to diagrams: node positions, edge
// waypoints, and a viewport.
//
// # Overview
//
// [Apply] is total. It runs the selected placement engine and, when that
// engine fails in any way (an error, a panic, a non-finite coordinate in
// its output), falls back to a deterministic grid placement that cannot
// fail:
//
//	laid := layout.Apply(ctx, d, layout.Options{Direction: layout.DirectionLR})
//
// The returned diagram always satisfies: every node has a finite,
// non-negative position, regardless of input topology. Cycles,
// self-loops, and disconnected components are all fine. The input diagram
// is never modified.
//
// # Engines
//
// The layered engine drives Graphviz dot through the same render path the
// rest of the ecosystem uses: emit DOT text, render it to attributed DOT,
// and read positions back out of the output. Graphviz works in points at
// 72 per inch with the y axis growing upward; the engine converts to
// top-left based pixel coordinates on readback.
//
// The grid engine places nodes row by row with pure arithmetic. It exists
// as the fallback but can be selected directly with
// [Options.Algorithm] = [AlgorithmGrid].
//
// Engines implement [Engine]; the fallback decision lives in [Apply], not
// inside any engine.
package layout
