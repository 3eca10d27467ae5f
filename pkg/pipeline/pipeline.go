// Package pipeline provides the staged diagram conversion used by every
// entry point.
//
// This package implements the complete parse → validate → layout → generate
// sequence behind the CLI, HTTP API, and MCP surfaces. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: Decode source text into a diagram via the format registry
//  2. Validate: Check structure, references, and style values
//  3. Layout: Assign positions through the layout engines
//  4. Generate: Encode the diagram in the target format
//
// Each stage can be run independently or as part of the complete pipeline.
// Parse, layout, and generate results are cached by content hash; validation
// is cheap and always recomputed.
//
// # Usage
//
// Create a Runner and convert:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    From: "mermaid",
//	    To:   "drawio",
//	}
//	result, err := runner.Convert(ctx, src, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.drawio", result.Output, 0o644)
//
// Run individual stages:
//
//	// Parse only
//	d, err := runner.Parse(ctx, src, opts)
//
//	// Layout an existing diagram
//	laid, err := runner.ApplyLayout(ctx, d, opts)
//
//	// Generate from an existing diagram
//	out, err := runner.Generate(ctx, laid, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/WhiteBite/diaflow/pkg/cache"
	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/formats"
	"github.com/WhiteBite/diaflow/pkg/ir"
	"github.com/WhiteBite/diaflow/pkg/layout"
	"github.com/WhiteBite/diaflow/pkg/validate"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and MCP
// =============================================================================

const (
	// DefaultLayout is the layout algorithm used when none is requested.
	DefaultLayout = string(layout.AlgorithmLayered)

	// DefaultDirection is the default flow direction.
	DefaultDirection = string(layout.DirectionTB)
)

// ValidLayouts is the set of supported layout algorithms.
var ValidLayouts = map[string]bool{
	string(layout.AlgorithmLayered): true,
	string(layout.AlgorithmGrid):    true,
	string(layout.AlgorithmNone):    true,
}

// ValidDirections is the set of supported flow directions.
var ValidDirections = map[string]bool{
	string(layout.DirectionTB): true,
	string(layout.DirectionBT): true,
	string(layout.DirectionLR): true,
	string(layout.DirectionRL): true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a conversion run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	From       string `json:"from,omitempty"`        // Source format name; empty means detect
	SourcePath string `json:"source_path,omitempty"` // Original filename, used for detection
	Refresh    bool   `json:"refresh,omitempty"`     // Recompute cached stage results

	// Validate options
	SkipValidate bool `json:"skip_validate,omitempty"` // Skip the validation stage (default: false = validate)
	Strict       bool `json:"strict,omitempty"`        // Count warnings against validity

	// Layout options
	Layout      string  `json:"layout,omitempty"` // layered, grid, none
	Direction   string  `json:"direction,omitempty"`
	NodeSpacing float64 `json:"node_spacing,omitempty"`
	RankSpacing float64 `json:"rank_spacing,omitempty"`
	MarginX     float64 `json:"margin_x,omitempty"`
	MarginY     float64 `json:"margin_y,omitempty"`

	// Generate options
	To string `json:"to"` // Target format name

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a conversion run.
type Result struct {
	// Diagram is the parsed and laid out diagram.
	Diagram *ir.Diagram

	// DiagramHash is the content hash of the laid out diagram.
	DiagramHash string

	// Report holds the validation findings. Zero when validation was skipped.
	Report validate.Report

	// Output contains the generated target-format bytes.
	Output []byte

	// FromFormat and ToFormat are the resolved format names.
	FromFormat string
	ToFormat   string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	ParseTime    time.Duration
	ValidateTime time.Duration
	LayoutTime   time.Duration
	GenerateTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit    bool // Whether the parsed diagram came from cache
	LayoutHit   bool // Whether the layout result came from cache
	GenerateHit bool // Whether the output came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format name is registered.
func ValidateFormat(name string) error {
	_, err := formats.ByName(name)
	return err
}

// ValidateLayout checks that a layout algorithm is valid.
func ValidateLayout(name string) error {
	if !ValidLayouts[name] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid layout: %q (must be one of: layered, grid, none)", name)
	}
	return nil
}

// ValidateDirection checks that a flow direction is valid.
func ValidateDirection(dir string) error {
	if !ValidDirections[dir] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid direction: %q (must be one of: TB, BT, LR, RL)", dir)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks and canonicalizes the source format.
// An empty From is allowed; the parse stage then detects the format from
// the source path and content.
func (o *Options) ValidateForParse() error {
	if o.From != "" {
		f, err := formats.ByName(o.From)
		if err != nil {
			return err
		}
		if !f.CanParse() {
			return errors.New(errors.ErrCodeUnsupported, "format %q cannot be parsed", f.Name)
		}
		o.From = f.Name
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetLayoutDefaults sets default values for the layout stage.
// Defaults are materialized here rather than left to the layout package so
// equivalent runs produce equal cache keys.
func (o *Options) SetLayoutDefaults() {
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if o.NodeSpacing <= 0 {
		o.NodeSpacing = layout.DefaultNodeSpacing
	}
	if o.RankSpacing <= 0 {
		o.RankSpacing = layout.DefaultRankSpacing
	}
	if o.MarginX <= 0 {
		o.MarginX = layout.DefaultMargin
	}
	if o.MarginY <= 0 {
		o.MarginY = layout.DefaultMargin
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for the layout stage.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateLayout(o.Layout); err != nil {
		return err
	}
	return ValidateDirection(o.Direction)
}

// ValidateForGenerate checks and canonicalizes the target format.
func (o *Options) ValidateForGenerate() error {
	if o.To == "" {
		return errors.New(errors.ErrCodeInvalidInput, "target format is required")
	}
	f, err := formats.ByName(o.To)
	if err != nil {
		return err
	}
	if !f.CanGenerate() {
		return errors.New(errors.ErrCodeUnsupported, "format %q cannot be generated", f.Name)
	}
	o.To = f.Name

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// ShouldValidate returns whether the validation stage should run.
func (o *Options) ShouldValidate() bool {
	return !o.SkipValidate
}

// LayoutOptions converts the layout fields into the layout package's options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Algorithm:   layout.Algorithm(o.Layout),
		Direction:   layout.Direction(o.Direction),
		NodeSpacing: o.NodeSpacing,
		RankSpacing: o.RankSpacing,
		MarginX:     o.MarginX,
		MarginY:     o.MarginY,
	}
}

// ValidateOptions returns the checks the validation stage runs with.
// Conversion validates before layout, so missing geometry is tolerated.
func (o *Options) ValidateOptions() validate.Options {
	return validate.Options{
		Strict:          o.Strict,
		AllowAutoLayout: true,
		AllowAutoSize:   true,
	}
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Algorithm:   o.Layout,
		Direction:   o.Direction,
		NodeSpacing: o.NodeSpacing,
		RankSpacing: o.RankSpacing,
		MarginX:     o.MarginX,
		MarginY:     o.MarginY,
	}
}
