package validate

import (
	"fmt"
	"time"

	"github.com/WhiteBite/diaflow/pkg/errors"
)

// Severity classifies an issue as blocking or advisory.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Stable issue codes. Codes are part of the public contract: callers match
// on them, so they never change even when messages are reworded.
const (
	CodeMissingDiagram   = "missing-diagram"
	CodeMissingID        = "missing-id"
	CodeMissingReference = "missing-reference"
	CodeUnknownType      = "unknown-type"
	CodeUnknownShape     = "unknown-shape"
	CodeUnknownArrow     = "unknown-arrow"
	CodeUnknownLine      = "unknown-line"
	CodeNoNodes          = "no-nodes"
	CodeEmptyGroup       = "empty-group"
	CodeDuplicateID      = "duplicate-id"
	CodeInvalidReference = "invalid-reference"
	CodeCircularGroup    = "circular-group"
	CodeMissingPosition  = "missing-position"
	CodeMissingSize      = "missing-size"
	CodeInvalidPosition  = "invalid-position"
	CodeInvalidSize      = "invalid-size"
	CodeInvalidStyle     = "invalid-style"
	CodeDisconnectedNode = "disconnected-node"
	CodeSelfLoop         = "self-loop"
	CodeTooManyNodes     = "too-many-nodes"
	CodeTooManyEdges     = "too-many-edges"
)

// Issue is a single validation finding.
type Issue struct {
	Path     string   `json:"path"`     // JSON-style location, e.g. "edges[2].source"
	Code     string   `json:"code"`     // Stable machine-readable code
	Message  string   `json:"message"`  // Human-readable description
	Severity Severity `json:"severity"` // error or warning
}

// String renders the issue as "path: message".
func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Stats summarizes what a check covered.
type Stats struct {
	Nodes    int           `json:"nodes"`
	Edges    int           `json:"edges"`
	Groups   int           `json:"groups"`
	Duration time.Duration `json:"duration"`
}

// Report is the complete result of a [Check] call. Valid is true when no
// errors were found (and, in strict mode, no warnings either). Warnings
// stay warnings in the report regardless of strictness; strict mode only
// changes the validity decision.
type Report struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Stats    Stats   `json:"stats"`
}

// AddError appends an error issue.
func (r *Report) AddError(path, code, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{
		Path:     path,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	})
}

// AddWarning appends a warning issue.
func (r *Report) AddWarning(path, code, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{
		Path:     path,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
	})
}

// Merge appends all issues from other into r.
func (r *Report) Merge(other Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// FirstIssue returns the issue that decided an invalid report: the first
// error, or the first warning when only strictness failed the check.
// Returns the zero Issue and false for a valid report.
func (r *Report) FirstIssue() (Issue, bool) {
	if len(r.Errors) > 0 {
		return r.Errors[0], true
	}
	if !r.Valid && len(r.Warnings) > 0 {
		return r.Warnings[0], true
	}
	return Issue{}, false
}

// Err collapses the report into a single error, or nil when the report is
// valid. The error cites the first issue's message and path and carries
// the VALIDATION_FAILED code.
func (r *Report) Err() error {
	if r.Valid {
		return nil
	}
	if issue, ok := r.FirstIssue(); ok {
		return errors.New(errors.ErrCodeValidation, "%s (at %s)", issue.Message, issue.Path)
	}
	return errors.New(errors.ErrCodeValidation, "diagram failed validation with %d errors", len(r.Errors))
}
