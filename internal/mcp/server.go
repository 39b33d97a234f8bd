package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog personal workout tracker. Query workout templates, completed session history, per-exercise progression trends, weekly volume, and personal records. All weights are kilograms; negative weights are assisted exercises."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolGetExerciseTrend, Handler: h.getExerciseTrend},
		server.ServerTool{Tool: toolGetWeeklyVolume, Handler: h.getWeeklyVolume},
		server.ServerTool{Tool: toolGetRecords, Handler: h.getRecords},
	)

	s.AddResources(
		server.ServerResource{Resource: resActiveSession, Handler: h.activeSession},
		server.ServerResource{Resource: resRecentHistory, Handler: h.recentHistory},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}
