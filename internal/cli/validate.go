package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WhiteBite/diaflow/pkg/cache"
	"github.com/WhiteBite/diaflow/pkg/pipeline"
	"github.com/WhiteBite/diaflow/pkg/validate"
)

// validateCommand creates the validate command for checking diagrams
// against the structural rules.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		from   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a diagram against the structural rules",
		Long: `Check a diagram against the structural rules.

The file is parsed (any readable format) and checked for duplicate IDs,
dangling references, unknown enum values, malformed geometry, and group
cycles. Errors make the diagram invalid; warnings are advisory unless
--strict is given.

The command exits non-zero when the diagram is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], from, strict)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source format (default: detect from extension and content)")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")

	return cmd
}

// runValidate parses the input and prints the full validation report.
func (c *CLI) runValidate(ctx context.Context, input, from string, strict bool) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	// Validation is cheap and reports should always reflect the file on
	// disk, so no cache is involved.
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
	opts := pipeline.Options{From: from, SourcePath: input, Strict: strict}

	d, err := runner.Parse(ctx, src, opts)
	if err != nil {
		return err
	}

	report := runner.Validate(d, opts)
	printReport(input, report)
	return report.Err()
}

// printReport renders a validation report with one line per issue.
func printReport(input string, rep validate.Report) {
	if rep.Valid && len(rep.Warnings) == 0 {
		printSuccess("%s is valid", input)
		printDetail("%d nodes · %d edges · %d groups", rep.Stats.Nodes, rep.Stats.Edges, rep.Stats.Groups)
		return
	}

	for _, issue := range rep.Errors {
		printIssue(issue)
	}
	for _, issue := range rep.Warnings {
		printIssue(issue)
	}
	printNewline()

	switch {
	case !rep.Valid && len(rep.Errors) > 0:
		printError("%s is invalid: %s", input, countIssues(rep))
	case !rep.Valid:
		printError("%s is invalid in strict mode: %s", input, countIssues(rep))
	default:
		printSuccess("%s is valid (%s)", input, countIssues(rep))
	}
}

// printIssue renders one finding as "  ✗ path  message" with the severity
// deciding icon and color.
func printIssue(i validate.Issue) {
	icon := styleIconWarning.Render(iconWarning)
	if i.Severity == validate.SeverityError {
		icon = styleIconError.Render(iconError)
	}
	line := "  " + icon + " "
	if i.Path != "" {
		line += StyleDim.Render(i.Path) + "  "
	}
	line += StyleValue.Render(i.Message) + "  " + StyleDim.Render("["+i.Code+"]")
	fmt.Println(line)
}

// countIssues summarizes a report as "N errors, M warnings", dropping the
// zero side.
func countIssues(rep validate.Report) string {
	switch {
	case len(rep.Errors) > 0 && len(rep.Warnings) > 0:
		return fmt.Sprintf("%d errors, %d warnings", len(rep.Errors), len(rep.Warnings))
	case len(rep.Errors) > 0:
		return fmt.Sprintf("%d errors", len(rep.Errors))
	default:
		return fmt.Sprintf("%d warnings", len(rep.Warnings))
	}
}
