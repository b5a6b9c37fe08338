package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/casegraph/internal/catalog"
	"github.com/rendis/casegraph/internal/logging"
	"github.com/rendis/casegraph/internal/streaming"
)

// ServerName and ServerVersion identify the MCP server to clients.
const (
	ServerName    = "casegraph"
	ServerVersion = "1.0.0"
)

// CaseGraphServerDeps holds the dependencies for creating a CaseGraphServer.
type CaseGraphServerDeps struct {
	Catalog *catalog.Catalog
	Hub     streaming.EventHub // optional; enables catalog change notifications
	Logger  *slog.Logger
	// MermaidBinDir is searched for a mermaid-ascii binary for ASCII diagrams.
	MermaidBinDir string
}

// CaseGraphServer wraps an MCP server with the case timeline tools.
type CaseGraphServer struct {
	catalog       *catalog.Catalog
	hub           streaming.EventHub
	logger        *slog.Logger
	mermaidBinDir string
	sessions      *SessionRegistry
	mcpServer     *server.MCPServer
}

// NewCaseGraphServer creates a new CaseGraphServer with all 4 tools registered.
func NewCaseGraphServer(deps CaseGraphServerDeps) *CaseGraphServer {
	s := &CaseGraphServer{
		catalog:       deps.Catalog,
		hub:           deps.Hub,
		logger:        logging.OrDefault(deps.Logger),
		mermaidBinDir: deps.MermaidBinDir,
		sessions:      NewSessionRegistry(),
	}

	hooks := &server.Hooks{}
	hooks.AddOnUnregisterSession(func(_ context.Context, session server.ClientSession) {
		s.sessions.Remove(session.SessionID())
	})

	mcpSrv := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithHooks(hooks),
		server.WithInstructions("casegraph turns case records into decision timelines. Use casegraph.cases to search case ids, casegraph.filter to select cases with a cel, expr or jq predicate over `record`, casegraph.timeline for the positioned node/edge graph (optionally projected with jq), and casegraph.diagram for an ascii, mermaid, svg or png rendering."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin
// closes. Catalog events are forwarded to clients while serving.
func (s *CaseGraphServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.hub != nil {
		notifier := NewCatalogNotifier(s.mcpServer, s.sessions, s.logger)
		go func() {
			if err := notifier.Forward(ctx, s.hub); err != nil {
				s.logger.ErrorContext(ctx, "catalog notifications stopped", "error", err)
			}
		}()
	}

	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *CaseGraphServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the 4 registered MCP tools as ServerTool entries.
func (s *CaseGraphServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: casesTool(), Handler: s.handleCases},
		{Tool: filterTool(), Handler: s.handleFilter},
		{Tool: timelineTool(), Handler: s.handleTimeline},
		{Tool: diagramTool(), Handler: s.handleDiagram},
	}
}

// --- Tool definitions ---

func casesTool() mcp.Tool {
	return mcp.NewTool("casegraph.cases",
		mcp.WithDescription("Search case ids by substring"),
		mcp.WithString("query", mcp.Description("Case-insensitive substring of the case id (default: all cases)")),
		mcp.WithString("selected", mcp.Description("Currently selected case id, kept in the dropdown list")),
	)
}

func filterTool() mcp.Tool {
	return mcp.NewTool("casegraph.filter",
		mcp.WithDescription("Select cases with a boolean expression over record"),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Predicate over record: id, case_id, customer_id, officer, created, closed, open, decision_count, decisions")),
		mcp.WithString("engine",
			mcp.Enum("cel", "expr", "jq"),
			mcp.Description("Expression language (default: cel)"),
		),
	)
}

func timelineTool() mcp.Tool {
	return mcp.NewTool("casegraph.timeline",
		mcp.WithDescription("Build the positioned timeline graph of a case"),
		mcp.WithString("case_id", mcp.Required(), mcp.Description("Catalog id of the case")),
		mcp.WithString("jq", mcp.Description("Optional jq program applied to the graph JSON")),
	)
}

func diagramTool() mcp.Tool {
	return mcp.NewTool("casegraph.diagram",
		mcp.WithDescription("Render the timeline of a case. Returns ASCII art, Mermaid flowchart syntax, SVG markup or a PNG image"),
		mcp.WithString("case_id", mcp.Required(), mcp.Description("Catalog id of the case")),
		mcp.WithString("format", mcp.Required(),
			mcp.Enum("ascii", "mermaid", "svg", "png"),
			mcp.Description("Output format"),
		),
	)
}
