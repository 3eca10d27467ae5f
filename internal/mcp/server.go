// Package mcp exposes the conversion pipeline as Model Context Protocol
// tools over stdio.
//
// Three tools are registered: diaflow.convert runs the full pipeline,
// diaflow.validate returns a structural report, and diaflow.layout
// computes positions and returns the laid out diagram as canonical JSON.
// Tool-level failures come back as MCP error results rather than protocol
// errors so agents can read and react to them.
package mcp

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/WhiteBite/diaflow/pkg/buildinfo"
	"github.com/WhiteBite/diaflow/pkg/formats"
	"github.com/WhiteBite/diaflow/pkg/pipeline"
)

// Deps holds the dependencies for creating a Server.
type Deps struct {
	Runner *pipeline.Runner
	Logger *log.Logger
}

// Server wraps an MCP server with diagram tool handlers.
type Server struct {
	runner    *pipeline.Runner
	logger    *log.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a Server with the diagram tools registered.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	s := &Server{
		runner: deps.Runner,
		logger: logger,
	}

	mcpSrv := server.NewMCPServer(
		"diaflow",
		buildinfo.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Diaflow converts diagrams between text formats (mermaid, dot, drawio, plantuml, json). Use diaflow.convert to translate a diagram, diaflow.validate to check its structure before converting, and diaflow.layout to compute node positions without changing format."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or
// stdin closes. The protocol owns stdout; logs must go to stderr.
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the registered MCP tools as ServerTool entries.
func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: convertTool(), Handler: s.handleConvert},
		{Tool: validateTool(), Handler: s.handleValidate},
		{Tool: layoutTool(), Handler: s.handleLayout},
	}
}

// --- Tool definitions ---

func convertTool() mcp.Tool {
	return mcp.NewTool("diaflow.convert",
		mcp.WithDescription("Convert a diagram between text formats, validating and laying it out on the way"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Diagram source text")),
		mcp.WithString("to", mcp.Required(),
			mcp.Enum(formats.Names()...),
			mcp.Description("Target format name"),
		),
		mcp.WithString("from", mcp.Description("Source format name (default: detect from content)")),
		mcp.WithString("layout",
			mcp.Enum("layered", "grid", "none"),
			mcp.Description("Layout algorithm (default: layered)"),
		),
		mcp.WithString("direction",
			mcp.Enum("TB", "BT", "LR", "RL"),
			mcp.Description("Flow direction (default: TB)"),
		),
		mcp.WithBoolean("strict", mcp.Description("Count validation warnings as errors")),
		mcp.WithBoolean("skip_validate", mcp.Description("Skip the validation stage")),
	)
}

func validateTool() mcp.Tool {
	return mcp.NewTool("diaflow.validate",
		mcp.WithDescription("Validate diagram structure and references, returning errors and warnings with stable codes"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Diagram source text")),
		mcp.WithString("from", mcp.Description("Source format name (default: detect from content)")),
		mcp.WithBoolean("strict", mcp.Description("Count warnings against validity")),
	)
}

func layoutTool() mcp.Tool {
	return mcp.NewTool("diaflow.layout",
		mcp.WithDescription("Compute node positions for a diagram and return it as canonical JSON"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Diagram source text")),
		mcp.WithString("from", mcp.Description("Source format name (default: detect from content)")),
		mcp.WithString("algorithm",
			mcp.Enum("layered", "grid", "none"),
			mcp.Description("Layout algorithm (default: layered)"),
		),
		mcp.WithString("direction",
			mcp.Enum("TB", "BT", "LR", "RL"),
			mcp.Description("Flow direction (default: TB)"),
		),
		mcp.WithNumber("node_spacing", mcp.Description("Gap between sibling nodes in points")),
		mcp.WithNumber("rank_spacing", mcp.Description("Gap between ranks in points")),
	)
}
