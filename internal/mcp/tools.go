package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(telnetConnectTool(), s.handleTelnetConnect)
	s.mcpServer.AddTool(telnetExecuteTool(), s.handleTelnetExecute)
	s.mcpServer.AddTool(telnetListSessionsTool(), s.handleTelnetListSessions)
	s.mcpServer.AddTool(telnetDisconnectTool(), s.handleTelnetDisconnect)
}

// Tool definitions

func telnetConnectTool() mcp.Tool {
	return mcp.NewTool("telnet_connect",
		mcp.WithDescription("Open a Telnet session to a console device. "+
			"Returns the session ID and the device's current mode: "+
			"'SW1>' is user mode (run 'enable' for privileged), 'SW1#' is privileged, "+
			"'SW1(config)#' is global configuration, 'SW1(config-if)#' is interface configuration."),
		mcp.WithString("host",
			mcp.Required(),
			mcp.Description("Device host address"),
		),
		mcp.WithNumber("port",
			mcp.Required(),
			mcp.Description("Device Telnet port"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Connect timeout in milliseconds (default: 5000)"),
		),
	)
}

func telnetExecuteTool() mcp.Tool {
	return mcp.NewTool("telnet_execute",
		mcp.WithDescription("Execute a command in a Telnet session. "+
			"The device prompt is detected adaptively, so the call returns as soon as "+
			"output is complete rather than waiting out the full timeout. Commands like "+
			"ping or traceroute automatically get at least a 12 second wait."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("The session ID returned by telnet_connect"),
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The command to send"),
		),
		mcp.WithNumber("wait_ms",
			mcp.Description("Maximum wait for output in milliseconds (default: 2000)"),
		),
	)
}

func telnetListSessionsTool() mcp.Tool {
	return mcp.NewTool("telnet_list_sessions",
		mcp.WithDescription("List all active Telnet sessions"),
	)
}

func telnetDisconnectTool() mcp.Tool {
	return mcp.NewTool("telnet_disconnect",
		mcp.WithDescription("Disconnect a Telnet session"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("The session ID"),
		),
	)
}

// Tool result payloads. Field names are part of the tool contract.

type connectResult struct {
	Success    bool   `json:"success"`
	SessionID  string `json:"sessionId"`
	DeviceMode string `json:"deviceMode"`
	Message    string `json:"message"`
}

type executeResult struct {
	Success    bool   `json:"success"`
	Output     string `json:"output"`
	DeviceMode string `json:"deviceMode"`
}

// Tool handlers

func (s *Server) handleTelnetConnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	host := mcp.ParseString(req, "host", "")
	port := mcp.ParseInt(req, "port", 0)
	timeout := mcp.ParseInt(req, "timeout", 0)

	if host == "" {
		return mcp.NewToolResultError("host is required"), nil
	}
	if port < 1 || port > 65535 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid port: %d", port)), nil
	}

	slog.Info("connecting to device",
		slog.String("host", host),
		slog.Int("port", port),
	)

	sess, err := s.sessions.Connect(host, port, timeout)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// An empty command is just a line terminator; the device answers with a
	// fresh prompt, which tells us the current mode.
	initial, err := sess.Exec("", probeWaitMs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(connectResult{
		Success:    true,
		SessionID:  sess.ID,
		DeviceMode: sess.DetectMode(initial),
		Message:    "connected",
	})
}

func (s *Server) handleTelnetExecute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := mcp.ParseString(req, "session_id", "")
	command := mcp.ParseString(req, "command", "")
	waitMs := mcp.ParseInt(req, "wait_ms", 0)

	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slog.Info("executing command",
		slog.String("session_id", sessionID),
		slog.String("command", command),
	)

	output, err := sess.Exec(command, waitMs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(executeResult{
		Success:    true,
		Output:     output,
		DeviceMode: sess.DetectMode(output),
	})
}

func (s *Server) handleTelnetListSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries := s.sessions.List()
	if len(summaries) == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var b strings.Builder
	b.WriteString("Active sessions:\n")
	for _, sum := range summaries {
		fmt.Fprintf(&b, "- ID: %s\n", sum.SessionID)
		fmt.Fprintf(&b, "  Device: %s:%d\n", sum.Host, sum.Port)
		fmt.Fprintf(&b, "  Connected: %s\n", sum.ConnectedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleTelnetDisconnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := mcp.ParseString(req, "session_id", "")

	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	if err := s.sessions.Disconnect(sessionID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s disconnected", sessionID)), nil
}

// jsonResult converts a value to a JSON tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
