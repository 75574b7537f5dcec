// Package mcp implements the MCP protocol server for telnet-console-mcp.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/cliconsole/telnet-console-mcp/internal/config"
	"github.com/cliconsole/telnet-console-mcp/internal/session"
)

// Server wraps the MCP server implementation.
type Server struct {
	mcpServer *server.MCPServer
	sessions  *session.Manager
	config    *config.Config
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithSessionManager sets the session manager (tests inject one with a
// scripted dialer).
func WithSessionManager(m *session.Manager) ServerOption {
	return func(s *Server) { s.sessions = m }
}

// NewServer creates a new MCP server with the given configuration.
func NewServer(cfg *config.Config, opts ...ServerOption) *Server {
	mcpServer := server.NewMCPServer(
		"telnet-console-mcp",
		Version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		config:    cfg,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.sessions == nil {
		s.sessions = session.NewManager(cfg)
	}

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio transport.
func (s *Server) Run() error {
	slog.Info("starting MCP server on stdio transport")
	return server.ServeStdio(s.mcpServer)
}

// Shutdown tears down all live sessions.
func (s *Server) Shutdown() {
	s.sessions.CloseAll()
}

// UpdateConfig applies a new configuration at runtime. Timing constants,
// session limits, and custom prompt patterns apply to sessions created after
// the update.
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.sessions.UpdateConfig(cfg)
	s.config = cfg
	slog.Info("configuration hot-reloaded")
}
