// Package server provides the MCP server implementation for the NetSummary service.
package server

import "context"

// SummaryToolServer defines the interface for the MCP server that handles
// summarization tool calls from MCP clients.
type SummaryToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on the specified transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}

// SummaryAgent is the orchestration surface the tool handlers dispatch to.
// *agent.Agent satisfies it.
type SummaryAgent interface {
	// Generate chunks the raw output, summarizes each chunk, and caches the
	// intermediate summaries for the session.
	Generate(ctx context.Context, tenant, resource, rawOutput, instruction string) (bool, string)

	// GetFinalResponse merges the session's cached summaries into one report.
	GetFinalResponse(ctx context.Context, tenant, resource string) (bool, string)

	// ResetSession drops the session's cached summaries.
	ResetSession(tenant, resource string) (int, error)

	// ChunkCount reports how many chunks an output would split into.
	ChunkCount(rawOutput string) int
}
