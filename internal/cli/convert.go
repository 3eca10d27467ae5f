package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/formats"
	"github.com/WhiteBite/diaflow/pkg/pipeline"
)

// watchDebounce batches the burst of events an editor fires per save into a
// single rebuild.
const watchDebounce = 250 * time.Millisecond

// convertCommand creates the convert command, the main entry point of the
// tool. It runs the full parse, validate, layout, generate pipeline.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		inputs  []string
		output  string
		noCache bool
		watch   bool
	)
	opts := pipeline.Options{}
	cfg := c.config()

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert diagrams between text formats",
		Long: `Convert diagrams between text formats.

Each input is parsed into the shared intermediate representation, validated,
laid out, and written in the target syntax. The source format is detected
from the file extension and content unless --from is given; the target comes
from --to or the output path's extension.

Multiple inputs convert in parallel, each to a sibling file with the target
format's extension. With --watch, diaflow keeps running and reconverts a
file whenever it changes.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := append(args, inputs...)
			if len(files) == 0 {
				return fmt.Errorf("no input files (pass paths as arguments or with -i)")
			}
			if output != "" && len(files) > 1 {
				return fmt.Errorf("--output applies to a single input; with multiple inputs paths are derived per file")
			}
			if watch {
				return c.runWatch(cmd.Context(), files, opts, output, noCache)
			}
			return c.runConvert(cmd.Context(), files, opts, output, noCache)
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "input file (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or '-' for stdout (default: derived from input)")
	cmd.Flags().StringVar(&opts.From, "from", "", "source format (default: detect from extension and content)")
	cmd.Flags().StringVarP(&opts.To, "to", "t", cfg.Convert.To, "target format (default: derived from output extension)")
	cmd.Flags().StringVar(&opts.Layout, "layout", cfg.Layout.Algorithm, "layout algorithm: layered (default), grid, none")
	cmd.Flags().StringVar(&opts.Direction, "direction", cfg.Layout.Direction, "flow direction: TB (default), BT, LR, RL")
	cmd.Flags().Float64Var(&opts.NodeSpacing, "node-spacing", cfg.Layout.NodeSpacing, "gap between sibling nodes")
	cmd.Flags().Float64Var(&opts.RankSpacing, "rank-spacing", cfg.Layout.RankSpacing, "gap between ranks")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat validation warnings as errors")
	cmd.Flags().BoolVar(&opts.SkipValidate, "no-validate", false, "skip diagram validation")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute cached stage results")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&watch, "watch", false, "watch inputs and reconvert on change")

	return cmd
}

// runConvert converts the given files once. A single file gets a spinner
// and may write to an explicit output; multiple files run in parallel with
// derived output paths.
func (c *CLI) runConvert(ctx context.Context, files []string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	if len(files) == 1 {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Converting %s...", filepath.Base(files[0])))
		spinner.Start()
		res, outPath, err := c.convertOne(ctx, runner, files[0], opts, output)
		if err != nil {
			spinner.StopWithError("Conversion failed")
			return err
		}
		spinner.Stop()
		printConvertResult(files[0], outPath, res)
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for _, file := range files {
		g.Go(func() error {
			res, outPath, err := c.convertOne(gctx, runner, file, opts, "")
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			printConvertResult(file, outPath, res)
			return nil
		})
	}
	return g.Wait()
}

// convertOne reads one input, resolves the target format, runs the
// pipeline, and writes the output. An empty output derives a sibling path
// from the target format's extension; "-" streams to stdout.
func (c *CLI) convertOne(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string) (*pipeline.Result, string, error) {
	src, err := os.ReadFile(input)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", input, err)
	}
	opts.SourcePath = input
	if opts.To == "" {
		opts.To = formatForPath(output)
	}
	if opts.To == "" {
		return nil, "", fmt.Errorf("cannot determine target format (use --to or an output path with a known extension)")
	}

	res, err := runner.Convert(ctx, src, opts)
	if err != nil {
		if errors.Is(err, errors.ErrCodeValidation) {
			return nil, "", fmt.Errorf("%s: %w\nRun 'diaflow validate %s' for the full report", input, err, input)
		}
		return nil, "", fmt.Errorf("%s: %w", input, err)
	}

	outPath := output
	if outPath == "" {
		outPath = derivedOutput(input, res.ToFormat)
	}
	if outPath == input {
		return nil, "", fmt.Errorf("refusing to overwrite input %s (pass --output)", input)
	}

	out, err := openOutput(outPath)
	if err != nil {
		return nil, "", err
	}
	defer out.Close()
	if _, err := out.Write(res.Output); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", outPath, err)
	}
	return res, outPath, nil
}

// printConvertResult prints the status block for one converted file.
// Nothing is printed for stdout output so the generated text stays clean.
func printConvertResult(input, outPath string, res *pipeline.Result) {
	if outPath == "-" {
		return
	}
	printSuccess("Converted %s (%s → %s)", filepath.Base(input), res.FromFormat, res.ToFormat)
	printFile(outPath)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, fullyCached(res))
	if n := len(res.Report.Warnings); n > 0 {
		printDetail("%d validation warnings · run 'diaflow validate %s' for details", n, input)
	}
}

// fullyCached reports whether every cacheable stage was served from cache.
func fullyCached(res *pipeline.Result) bool {
	ci := res.CacheInfo
	return ci.ParseHit && ci.LayoutHit && ci.GenerateHit
}

// runWatch converts the files once, then re-runs any file that changes.
// A failed conversion reports the error and keeps watching.
func (c *CLI) runWatch(ctx context.Context, files []string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger
	logger := loggerFromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	// An explicit output only makes sense for a single watched file.
	perFile := output
	if len(files) > 1 {
		perFile = ""
	}

	for _, file := range files {
		if err := watcher.Add(file); err != nil {
			return fmt.Errorf("watch %s: %w", file, err)
		}
		res, outPath, err := c.convertOne(ctx, runner, file, opts, perFile)
		if err != nil {
			printError("%v", err)
			continue
		}
		printConvertResult(file, outPath, res)
	}
	printInfo("Watching %d file(s), ctrl-c to stop", len(files))

	dirty := make(map[string]bool)
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			dirty[ev.Name] = true
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", werr)
		case <-timerC:
			timer = nil
			timerC = nil
			for file := range dirty {
				// Editors that save via rename replace the inode, which
				// silently drops the watch; re-arm before converting.
				_ = watcher.Add(file)
				p := newProgress(logger)
				if _, _, err := c.convertOne(ctx, runner, file, opts, perFile); err != nil {
					printError("%v", err)
					continue
				}
				p.done("Rebuilt " + filepath.Base(file))
			}
			clear(dirty)
		}
	}
}

// formatForPath maps an output path's extension to a generable format name.
// Empty when the path is empty, "-", or the extension is unknown.
func formatForPath(path string) string {
	if path == "" || path == "-" {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range formats.All {
		if f.CanGenerate() && f.HasExtension(ext) {
			return f.Name
		}
	}
	return ""
}

// derivedOutput replaces input's extension with the target format's primary
// extension.
func derivedOutput(input, format string) string {
	ext := ".out"
	if f, err := formats.ByName(format); err == nil && len(f.Extensions) > 0 {
		ext = f.Extensions[0]
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}
