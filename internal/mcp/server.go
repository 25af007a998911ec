package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/cal-pilot/internal/skills"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the calendar skills and the
// semantic event index to MCP clients.
type Server struct {
	hub   *skills.Hub
	index vectordb.EventIndex
	mcp   *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(hub *skills.Hub, index vectordb.EventIndex) *Server {
	s := &Server{
		hub:   hub,
		index: index,
	}

	s.mcp = server.NewMCPServer(
		"calpilot",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(editEventTool, s.handleEditEvent)
	s.mcp.AddTool(removePreferredTimesTool, s.handleRemovePreferredTimes)
	s.mcp.AddTool(searchEventsTool, s.handleSearchEvents)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
