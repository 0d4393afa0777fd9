// Package mcp provides a Model Context Protocol surface over the bridge's
// live session registry.
//
// The mcp package implements:
//   - MCP server for operator and agent integration
//   - Tool definitions over running match sessions
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
//   - list_matches: List all active match sessions
//   - match_status: Connection status of a specific match
//   - send_test_frame: Push a single scene frame into a match stream
//   - end_match: Send the end-of-stream marker
//   - disconnect_match: Tear a match connection down
//
// Usage:
//
//	// Stdio mode
//	srv := mcp.NewServer(bridge)
//	srv.ServeStdio()
//
//	// HTTP mode
//	srv.MCPServer().HandleMessage(ctx, body)
//
// The tools operate directly on the registry; they do not proxy through the
// webhook adapters.
package mcp
