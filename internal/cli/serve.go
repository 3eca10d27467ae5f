package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/WhiteBite/diaflow/internal/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cfg := c.config()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Long: `Run the HTTP conversion API.

The server exposes the conversion pipeline over JSON endpoints:

  POST /api/convert    convert a diagram between formats
  POST /api/validate   validate a diagram and return the report
  GET  /api/formats    list supported formats
  GET  /healthz        liveness probe

It serves until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(server.Config{
				Addr:   addr,
				Runner: runner,
				Logger: c.Logger,
			})

			printInfo("Serving on %s", StyleLink.Render(displayAddr(addr)))
			printDetail("ctrl-c to stop")
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", cfg.Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching for this server")

	return cmd
}

// displayAddr turns a listen address into a URL worth printing.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
