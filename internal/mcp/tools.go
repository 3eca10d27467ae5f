package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	pkgio "github.com/WhiteBite/diaflow/pkg/io"
	"github.com/WhiteBite/diaflow/pkg/pipeline"
)

// handleConvert runs the full pipeline and returns the generated output
// with stats and, unless skipped, the validation report.
func (s *Server) handleConvert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("source is required"), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError("to is required"), nil
	}

	opts := pipeline.Options{
		From:         req.GetString("from", ""),
		To:           to,
		Layout:       req.GetString("layout", ""),
		Direction:    req.GetString("direction", ""),
		Strict:       req.GetBool("strict", false),
		SkipValidate: req.GetBool("skip_validate", false),
		Logger:       s.logger,
	}

	res, convErr := s.runner.Convert(ctx, []byte(source), opts)
	if convErr != nil {
		return mcp.NewToolResultError(convErr.Error()), nil
	}

	out := map[string]any{
		"from":         res.FromFormat,
		"to":           res.ToFormat,
		"output":       string(res.Output),
		"diagram_hash": res.DiagramHash,
		"nodes":        res.Stats.NodeCount,
		"edges":        res.Stats.EdgeCount,
	}
	if opts.ShouldValidate() {
		out["report"] = res.Report
	}
	return marshalResult(out)
}

// handleValidate parses the source and returns the validation report.
func (s *Server) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("source is required"), nil
	}

	opts := pipeline.Options{
		From:   req.GetString("from", ""),
		Strict: req.GetBool("strict", false),
		Logger: s.logger,
	}

	d, parseErr := s.runner.Parse(ctx, []byte(source), opts)
	if parseErr != nil {
		return mcp.NewToolResultError(parseErr.Error()), nil
	}

	return marshalResult(s.runner.Validate(d, opts))
}

// handleLayout parses the source, computes positions, and returns the laid
// out diagram as canonical JSON.
func (s *Server) handleLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("source is required"), nil
	}

	opts := pipeline.Options{
		From:        req.GetString("from", ""),
		Layout:      req.GetString("algorithm", ""),
		Direction:   req.GetString("direction", ""),
		NodeSpacing: req.GetFloat("node_spacing", 0),
		RankSpacing: req.GetFloat("rank_spacing", 0),
		Logger:      s.logger,
	}

	d, parseErr := s.runner.Parse(ctx, []byte(source), opts)
	if parseErr != nil {
		return mcp.NewToolResultError(parseErr.Error()), nil
	}

	laid, layoutErr := s.runner.ApplyLayout(ctx, d, opts)
	if layoutErr != nil {
		return mcp.NewToolResultError(layoutErr.Error()), nil
	}

	var buf bytes.Buffer
	if err := pkgio.WriteJSON(laid, &buf); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode diagram: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(buf.Bytes()))
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
