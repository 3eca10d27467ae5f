package cli

import (
	"github.com/spf13/cobra"

	"github.com/WhiteBite/diaflow/internal/mcp"
)

// mcpCommand creates the mcp command running the stdio tool server.
func (c *CLI) mcpCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool server on stdio",
		Long: `Run the MCP tool server on stdio.

The server exposes convert, validate and layout as Model Context
Protocol tools, so agent hosts can drive the conversion pipeline
directly. The protocol owns stdin and stdout; logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			s := mcp.NewServer(mcp.Deps{Runner: runner, Logger: c.Logger})
			return s.Serve(ctx)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching for this server")

	return cmd
}
