package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/matchbridge/match"
	"github.com/wricardo/matchbridge/sdk"
)

// Server exposes the bridge's live session registry as MCP tools so an
// operator (or agent) can inspect and poke running matches.
type Server struct {
	bridge    *sdk.SDK
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server bound to the given bridge.
func NewServer(bridge *sdk.SDK) *Server {
	s := &Server{bridge: bridge}
	s.initMCPServer()
	return s
}

// MCPServer returns the underlying MCP server for embedding in an HTTP
// endpoint.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio (blocking).
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Match Bridge",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Match Bridge - MCP Interface

Inspect and control the live match sessions this game server holds.

AVAILABLE TOOLS:
- list_matches: List all active match sessions
- match_status: Connection status of a specific match
- send_test_frame: Push a single scene frame into a match stream
- end_match: Send the end-of-stream marker for a match
- disconnect_match: Tear a match connection down`),
	)

	s.registerTools()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_matches",
		Description: "List all active match sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListMatches)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "match_status",
		Description: "Get the connection status of a specific match",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match ID",
				},
			},
			Required: []string{"match_id"},
		},
	}, s.handleMatchStatus)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "send_test_frame",
		Description: "Push a single scene frame into a match stream (for debugging the downstream consumer)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match ID",
				},
				"state_json": map[string]interface{}{
					"type":        "string",
					"description": "Optional JSON object to send as the frame's state bag",
				},
			},
			Required: []string{"match_id"},
		},
	}, s.handleSendTestFrame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "end_match",
		Description: "Send the end-of-stream marker for a match",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match ID",
				},
			},
			Required: []string{"match_id"},
		},
	}, s.handleEndMatch)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "disconnect_match",
		Description: "Tear a match connection down and evict it from the registry",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"match_id": map[string]interface{}{
					"type":        "string",
					"description": "Match ID",
				},
			},
			Required: []string{"match_id"},
		},
	}, s.handleDisconnectMatch)
}

func (s *Server) handleListMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := s.bridge.Registry().All()
	if len(sessions) == 0 {
		return mcp.NewToolResultText("No active matches."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active matches (%d):\n", len(sessions))
	for _, sess := range sessions {
		status := "connecting"
		if sess.IsConnected() {
			status = "connected"
		}
		fmt.Fprintf(&sb, "- %s [%s] %s\n", sess.MatchID, status, sess.WSURL)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleMatchStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	matchID, _ := args["match_id"].(string)

	sess, ok := s.bridge.Registry().Get(matchID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no active session for match %q", matchID)), nil
	}

	status := "connecting"
	if sess.IsConnected() {
		status = "connected"
	}
	return mcp.NewToolResultText(fmt.Sprintf("match %s: %s (target %s)", sess.MatchID, status, sess.WSURL)), nil
}

func (s *Server) handleSendTestFrame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	matchID, _ := args["match_id"].(string)
	stateJSON, _ := args["state_json"].(string)

	sess, ok := s.bridge.Registry().Get(matchID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no active session for match %q", matchID)), nil
	}

	var state map[string]interface{}
	if stateJSON != "" {
		if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("state_json is not a JSON object: %v", err)), nil
		}
	}

	sess.SendStateUpdate([]match.StateFrame{{State: state}})
	return mcp.NewToolResultText(fmt.Sprintf("frame sent to match %s", matchID)), nil
}

func (s *Server) handleEndMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	matchID, _ := args["match_id"].(string)

	sess, ok := s.bridge.Registry().Get(matchID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no active session for match %q", matchID)), nil
	}

	sess.EndMatch()
	return mcp.NewToolResultText(fmt.Sprintf("end_frames sent for match %s", matchID)), nil
}

func (s *Server) handleDisconnectMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	matchID, _ := args["match_id"].(string)

	sess, ok := s.bridge.Registry().Get(matchID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no active session for match %q", matchID)), nil
	}

	sess.Disconnect()
	return mcp.NewToolResultText(fmt.Sprintf("match %s disconnected", matchID)), nil
}
