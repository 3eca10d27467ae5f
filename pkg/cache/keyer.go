package cache

import "fmt"

// LayoutKeyOpts carries the layout parameters that determine a layout
// result. Two runs with equal diagram hashes and equal opts are
// guaranteed to produce the same positions, so they share a cache entry.
type LayoutKeyOpts struct {
	Algorithm   string
	Direction   string
	NodeSpacing float64
	RankSpacing float64
	MarginX     float64
	MarginY     float64
}

// Keyer derives cache keys for the pipeline's content classes.
type Keyer interface {
	// DiagramKey keys a parsed diagram by source format and source hash.
	DiagramKey(format, sourceHash string) string

	// LayoutKey keys a layout result by diagram hash and layout options.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys generated output by diagram hash and target format.
	ArtifactKey(diagramHash, format string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DiagramKey generates a key for a parsed diagram.
// Format and hash are short and already collision-free, so the key keeps
// them readable instead of hashing again.
func (k *DefaultKeyer) DiagramKey(format, sourceHash string) string {
	return fmt.Sprintf("diagram:%s:%s", format, sourceHash)
}

// LayoutKey generates a key for a layout result.
func (k *DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", diagramHash, opts)
}

// ArtifactKey generates a key for generated output.
func (k *DefaultKeyer) ArtifactKey(diagramHash, format string) string {
	return fmt.Sprintf("artifact:%s:%s", diagramHash, format)
}
