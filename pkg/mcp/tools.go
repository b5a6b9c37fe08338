package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/casegraph/internal/diagram"
)

// handleCases returns the case picker state for a query.
func (s *CaseGraphServer) handleCases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := s.catalog.Search(ctx, req.GetString("query", ""), req.GetString("selected", ""))
	if err != nil {
		return toolError("case search failed", err), nil
	}
	return marshalResult(sel)
}

// handleFilter returns the ids of the cases matching an expression.
func (s *CaseGraphServer) handleFilter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expression, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError("expression is required"), nil
	}
	engine := req.GetString("engine", "cel")

	ids, err := s.catalog.Where(ctx, engine, expression)
	if err != nil {
		return toolError("filter failed", err), nil
	}
	return marshalResult(map[string]any{"ids": ids})
}

// handleTimeline returns the timeline graph of a case, or its jq projection.
func (s *CaseGraphServer) handleTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caseID, err := req.RequireString("case_id")
	if err != nil {
		return mcp.NewToolResultError("case_id is required"), nil
	}
	s.captureSession(ctx, caseID)

	if jq := req.GetString("jq", ""); jq != "" {
		out, err := s.catalog.Project(ctx, caseID, jq)
		if err != nil {
			return toolError("projection failed", err), nil
		}
		return marshalResult(out)
	}

	g, err := s.catalog.Timeline(ctx, caseID)
	if err != nil {
		return toolError("timeline failed", err), nil
	}
	return marshalResult(g)
}

// handleDiagram renders the timeline of a case in the requested format.
func (s *CaseGraphServer) handleDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caseID, err := req.RequireString("case_id")
	if err != nil {
		return mcp.NewToolResultError("case_id is required"), nil
	}
	format, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError("format is required"), nil
	}
	switch format {
	case "ascii", "mermaid", "svg", "png":
	default:
		return mcp.NewToolResultError("format must be ascii, mermaid, svg or png"), nil
	}
	s.captureSession(ctx, caseID)

	g, err := s.catalog.Timeline(ctx, caseID)
	if err != nil {
		return toolError("timeline failed", err), nil
	}

	switch format {
	case "ascii":
		return mcp.NewToolResultText(diagram.RenderASCIIAuto(g, s.mermaidBinDir)), nil
	case "mermaid":
		return mcp.NewToolResultText(diagram.RenderMermaid(g)), nil
	case "svg":
		svg, err := diagram.RenderImage(ctx, g, diagram.ImageSVG)
		if err != nil {
			return toolError("svg render failed", err), nil
		}
		return mcp.NewToolResultText(string(svg)), nil
	default:
		png, err := diagram.RenderImage(ctx, g, diagram.ImagePNG)
		if err != nil {
			return toolError("image render failed", err), nil
		}
		encoded := base64.StdEncoding.EncodeToString(png)
		return mcp.NewToolResultImage("timeline of case "+caseID, encoded, "image/png"), nil
	}
}

// --- Internal helpers ---

// captureSession records the case the calling session is looking at so
// catalog notifications for it reach that session.
func (s *CaseGraphServer) captureSession(ctx context.Context, caseID string) {
	if session := server.ClientSessionFromContext(ctx); session != nil {
		s.sessions.Watch(session.SessionID(), caseID)
	}
}

// toolError converts err into an error tool result.
func toolError(prefix string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
