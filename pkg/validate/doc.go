// Package validate checks diagram structural integrity and reports every
// problem it finds in a single pass.
//
// # Overview
//
// [Check] is a pure function from a diagram and options to a [Report]. It
// never returns a Go error and never panics, even for nil input: problems
// with the diagram are data in the report, not failures of the check. The
// build and mutate packages run it as their final gate; callers can run it
// directly to lint diagrams coming out of parsers.
//
// # Checks
//
// In order:
//
//  1. Structure: required fields are present, enum values are known,
//     empty diagrams and empty groups draw warnings.
//  2. ID uniqueness: every node, edge, and group ID is checked against one
//     shared registry, so an edge reusing a node's ID is a duplicate.
//  3. References: edge endpoints must name nodes, group children must name
//     nodes or groups.
//  4. Containment: no group may transitively contain itself. The walk
//     carries a per-branch copy of the visited set, so sibling subtrees
//     cannot poison each other.
//  5. Layout sanity: present geometry must be finite with positive sizes;
//     absent geometry is an error unless tolerated via options.
//  6. Connectivity: disconnected nodes and self-loops draw warnings.
//  7. Limits: node and edge counts against configured maximums.
//
// Checks 1-4 always run (references can be skipped); 5 runs unless skipped;
// 6 and 7 are opt-in.
//
// # Options
//
// The zero [Options] value gives the documented defaults: references and
// layout are checked, connectivity and style checks are off, no limits.
// [Options.Strict] promotes warnings into the validity decision without
// reclassifying them in the report.
//
// # Reports
//
// A [Report] lists errors and warnings as [Issue] values with stable codes
// and JSON-style paths ("edges[2].source"), plus element counts and check
// duration in [Stats]. [Report.Err] collapses a failed report into a single
// coded error citing the first issue, which is exactly what the build and
// mutate packages surface.
package validate
