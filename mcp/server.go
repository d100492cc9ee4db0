// Package mcp serves the archive catalog as Model Context Protocol tools.
package mcp

import (
	"archive-browser/cache"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	server *server.MCPServer
}

// NewServer creates an MCP server whose tools read through c.
func NewServer(c *cache.Cache, version string) *Server {
	s := server.NewMCPServer("archive-browser", version)
	s.AddTools(InitTools(c)...)
	return &Server{server: s}
}

// Run serves over stdin and stdout until the client disconnects.
func (s *Server) Run() error {
	return server.ServeStdio(s.server)
}

func newServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool:    tool,
		Handler: handler,
	}
}
