package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/WhiteBite/diaflow/pkg/io"
	"github.com/WhiteBite/diaflow/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}
	cfg := c.config()

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute node positions for a diagram",
		Long: `Compute node positions for a diagram.

The file is parsed (any readable format), every node is assigned a position
and size, and the result is written as canonical JSON. The layered algorithm
places nodes rank by rank along the flow direction; grid is the
deterministic fallback and is also used when the layered engine cannot
handle the graph.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or '-' for stdout (default: <input>.layout.json)")
	cmd.Flags().StringVar(&opts.From, "from", "", "source format (default: detect from extension and content)")
	cmd.Flags().StringVar(&opts.Layout, "algorithm", cfg.Layout.Algorithm, "layout algorithm: layered (default), grid, none")
	cmd.Flags().StringVar(&opts.Direction, "direction", cfg.Layout.Direction, "flow direction: TB (default), BT, LR, RL")
	cmd.Flags().Float64Var(&opts.NodeSpacing, "node-spacing", cfg.Layout.NodeSpacing, "gap between sibling nodes")
	cmd.Flags().Float64Var(&opts.RankSpacing, "rank-spacing", cfg.Layout.RankSpacing, "gap between ranks")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute cached stage results")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout parses the input, applies the layout, and writes canonical JSON.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger
	opts.SourcePath = input
	opts.SetLayoutDefaults()

	d, err := runner.Parse(ctx, src, opts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Layout))
	spinner.Start()
	laid, cacheHit, err := runner.ApplyLayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outPath := output
	if outPath == "" {
		outPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}

	out, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := pkgio.WriteJSON(laid, out); err != nil {
		return fmt.Errorf("write output %s: %w", outPath, err)
	}

	if outPath != "-" {
		printSuccess("Layout complete")
		printFile(outPath)
		printStats(len(laid.Nodes), len(laid.Edges), cacheHit)
		printNewline()
		printNextStep("Convert", "diaflow convert "+outPath+" --to mermaid")
	}
	return nil
}
