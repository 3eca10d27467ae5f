package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/WhiteBite/diaflow/pkg/cache"
	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/formats"
	"github.com/WhiteBite/diaflow/pkg/ir"
	pkgio "github.com/WhiteBite/diaflow/pkg/io"
	"github.com/WhiteBite/diaflow/pkg/layout"
	"github.com/WhiteBite/diaflow/pkg/observability"
	"github.com/WhiteBite/diaflow/pkg/validate"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store conversion results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Convert runs the complete parse → validate → layout → generate pipeline
// with caching.
func (r *Runner) Convert(ctx context.Context, src []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{ToFormat: opts.To}

	// Stage 1: Parse
	parseStart := time.Now()
	d, from, parseHit, err := r.ParseWithCacheInfo(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.FromFormat = from
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = len(d.Nodes)
	result.Stats.EdgeCount = len(d.Edges)
	result.CacheInfo.ParseHit = parseHit

	r.Logger.Info("parsed diagram",
		"format", from,
		"nodes", len(d.Nodes),
		"edges", len(d.Edges),
		"duration", result.Stats.ParseTime)

	// Stage 2: Validate
	if opts.ShouldValidate() {
		validateStart := time.Now()
		result.Report = validate.Check(d, opts.ValidateOptions())
		result.Stats.ValidateTime = time.Since(validateStart)
		if err := result.Report.Err(); err != nil {
			return nil, err
		}

		r.Logger.Info("validated diagram",
			"warnings", len(result.Report.Warnings),
			"duration", result.Stats.ValidateTime)
	}

	// Stage 3: Layout
	layoutStart := time.Now()
	laid, layoutHit, err := r.ApplyLayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = laid
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"algorithm", opts.Layout,
		"duration", result.Stats.LayoutTime)

	// Content hash of the laid out diagram for cache keys and API responses
	if data, err := marshalDiagram(laid); err == nil {
		result.DiagramHash = cache.Hash(data)
	}

	// Stage 4: Generate
	generateStart := time.Now()
	out, generateHit, err := r.GenerateWithCacheInfo(ctx, laid, opts)
	if err != nil {
		return nil, err
	}
	result.Output = out
	result.Stats.GenerateTime = time.Since(generateStart)
	result.CacheInfo.GenerateHit = generateHit

	r.Logger.Info("generated output",
		"format", opts.To,
		"bytes", len(out),
		"duration", result.Stats.GenerateTime)

	return result, nil
}

// ParseWithCacheInfo decodes source text with caching. It returns the
// diagram, the resolved source format name, and cache hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, src []byte, opts Options) (*ir.Diagram, string, bool, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, "", false, err
	}

	var f *formats.Format
	var err error
	if opts.From != "" {
		f, err = formats.ByName(opts.From)
	} else {
		f, err = formats.Detect(opts.SourcePath, src)
	}
	if err != nil {
		return nil, "", false, err
	}
	if !f.CanParse() {
		return nil, "", false, errors.New(errors.ErrCodeUnsupported,
			"format %q cannot be parsed", f.Name)
	}

	cacheKey := r.Keyer.DiagramKey(f.Name, cache.Hash(src))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if d, err := unmarshalDiagram(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "diagram")
				return d, f.Name, true, nil // Cache hit
			}
		}
		observability.Cache().OnCacheMiss(ctx, "diagram")
	}

	observability.Pipeline().OnParseStart(ctx, f.Name)
	start := time.Now()
	d, err := f.Parse(src)
	if err != nil {
		observability.Pipeline().OnParseComplete(ctx, f.Name, 0, time.Since(start), err)
		return nil, "", false, err
	}
	observability.Pipeline().OnParseComplete(ctx, f.Name, len(d.Nodes), time.Since(start), nil)

	// Cache the result
	if data, err := marshalDiagram(d); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLDiagram)
		observability.Cache().OnCacheSet(ctx, "diagram", len(data))
	}

	return d, f.Name, false, nil // Cache miss
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards
// the format name and cache hit info.
func (r *Runner) Parse(ctx context.Context, src []byte, opts Options) (*ir.Diagram, error) {
	d, _, _, err := r.ParseWithCacheInfo(ctx, src, opts)
	return d, err
}

// Validate runs the validation stage on a diagram.
func (r *Runner) Validate(d *ir.Diagram, opts Options) validate.Report {
	return validate.Check(d, opts.ValidateOptions())
}

// ApplyLayoutWithCacheInfo lays out a diagram with caching and returns cache
// hit info.
func (r *Runner) ApplyLayoutWithCacheInfo(ctx context.Context, d *ir.Diagram, opts Options) (*ir.Diagram, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	if d == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "diagram is nil")
	}

	// Route engine diagnostics to the runner's logger
	ctx = log.WithContext(ctx, r.Logger)

	// Pass-through runs are plain clones, not worth caching
	if opts.Layout == string(layout.AlgorithmNone) {
		return layout.Apply(ctx, d, opts.LayoutOptions()), false, nil
	}

	data, err := marshalDiagram(d)
	if err != nil {
		// Unhashable diagram, lay out without caching
		return layout.Apply(ctx, d, opts.LayoutOptions()), false, nil
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())

	// Try cache first
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if laid, err := unmarshalDiagram(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return laid, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	observability.Pipeline().OnLayoutStart(ctx, opts.Layout, len(d.Nodes))
	start := time.Now()
	laid := layout.Apply(ctx, d, opts.LayoutOptions())
	observability.Pipeline().OnLayoutComplete(ctx, opts.Layout, time.Since(start), nil)

	// Cache the result
	if out, err := marshalDiagram(laid); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, out, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(out))
	}

	return laid, false, nil // Cache miss
}

// ApplyLayout is a convenience wrapper that calls ApplyLayoutWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ApplyLayout(ctx context.Context, d *ir.Diagram, opts Options) (*ir.Diagram, error) {
	laid, _, err := r.ApplyLayoutWithCacheInfo(ctx, d, opts)
	return laid, err
}

// GenerateWithCacheInfo encodes a diagram with caching and returns cache hit
// info.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, d *ir.Diagram, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, false, err
	}
	if d == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "diagram is nil")
	}

	f, err := formats.ByName(opts.To)
	if err != nil {
		return nil, false, err
	}

	data, err := marshalDiagram(d)
	if err != nil {
		// Unhashable diagram, generate without caching
		return uncachedGenerate(f, d)
	}
	cacheKey := r.Keyer.ArtifactKey(cache.Hash(data), f.Name)

	// Try cache first
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return cached, true, nil // Cache hit
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	observability.Pipeline().OnGenerateStart(ctx, f.Name)
	start := time.Now()
	out, err := f.Generate(d)
	if err != nil {
		observability.Pipeline().OnGenerateComplete(ctx, f.Name, 0, time.Since(start), err)
		return nil, false, err
	}
	observability.Pipeline().OnGenerateComplete(ctx, f.Name, len(out), time.Since(start), nil)

	// Cache the result
	_ = r.Cache.Set(ctx, cacheKey, out, cache.TTLArtifact)
	observability.Cache().OnCacheSet(ctx, "artifact", len(out))

	return out, false, nil // Cache miss
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, d *ir.Diagram, opts Options) ([]byte, error) {
	out, _, err := r.GenerateWithCacheInfo(ctx, d, opts)
	return out, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func uncachedGenerate(f *formats.Format, d *ir.Diagram) ([]byte, bool, error) {
	out, err := f.Generate(d)
	return out, false, err
}

// marshalDiagram renders the canonical JSON used for hashing and caching.
func marshalDiagram(d *ir.Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := pkgio.WriteJSON(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalDiagram(data []byte) (*ir.Diagram, error) {
	return pkgio.ReadJSON(bytes.NewReader(data))
}
