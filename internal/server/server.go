package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/localrivet/gomcp/server"
	"github.com/netlens/netsummary/internal/errortypes"
	"github.com/netlens/netsummary/internal/tools"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// MCPSummaryToolServer implements the SummaryToolServer interface
// for handling MCP tool calls related to device-output summarization.
type MCPSummaryToolServer struct {
	agent     SummaryAgent
	mcpServer *server.Server
}

// NewSummaryToolServer creates a new MCPSummaryToolServer instance.
func NewSummaryToolServer(agent SummaryAgent) *MCPSummaryToolServer {
	return &MCPSummaryToolServer{
		agent: agent,
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPSummaryToolServer) Initialize() error {
	slog.Info("Initializing MCP Summary Tool Server")

	if s.agent == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	// Create the MCP server
	srv := server.NewServer("netsummary")

	// Register summarize_output tool
	srv = srv.Tool(tools.ToolSummarizeOutput, "Chunk and summarize raw network-device output for a session",
		s.handleSummarizeOutput)

	// Register final_report tool
	srv = srv.Tool(tools.ToolFinalReport, "Merge a session's cached summaries into one final report",
		s.handleFinalReport)

	// Register reset_session tool
	srv = srv.Tool(tools.ToolResetSession, "Discard a session's cached summaries",
		s.handleResetSession)

	s.mcpServer = srv
	slog.Info("MCP Summary Tool Server initialized successfully", "tool_count", 3)
	return nil
}

// Start starts the MCP server on the specified transport.
func (s *MCPSummaryToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	slog.Info("Starting MCP Summary Tool Server")

	// Start the server using stdio transport
	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPSummaryToolServer) Stop() error {
	slog.Info("Stopping MCP Summary Tool Server")
	// The server will exit when stdin is closed
	return nil
}

// handleSummarizeOutput handles the summarize_output MCP tool call.
func (s *MCPSummaryToolServer) handleSummarizeOutput(ctx *server.Context, req tools.SummarizeOutputRequest) (tools.SummarizeOutputResponse, error) {
	slog.Info("Processing summarize_output request",
		"tenant", req.Tenant,
		"resource", req.Resource,
		"output_length", len(req.RawOutput))

	response := tools.SummarizeOutputResponse{
		Status: "success",
	}

	// Fall back to the default instruction when none is given
	instruction := req.Instruction
	if instruction == "" {
		instruction = tools.DefaultInstruction
		slog.Debug("Using default instruction for summarize_output")
	}

	ok, payload := s.agent.Generate(context.Background(), req.Tenant, req.Resource, req.RawOutput, instruction)
	if !ok {
		response.Status = "error"
		response.Error = payload
		return response, nil
	}

	response.Summary = payload
	response.Chunks = s.agent.ChunkCount(req.RawOutput)
	slog.Info("Successfully summarized output",
		"tenant", req.Tenant,
		"resource", req.Resource,
		"chunks", response.Chunks)

	return response, nil
}

// handleFinalReport handles the final_report MCP tool call.
func (s *MCPSummaryToolServer) handleFinalReport(ctx *server.Context, req tools.FinalReportRequest) (tools.FinalReportResponse, error) {
	slog.Info("Processing final_report request", "tenant", req.Tenant, "resource", req.Resource)

	response := tools.FinalReportResponse{
		Status: "success",
	}

	ok, payload := s.agent.GetFinalResponse(context.Background(), req.Tenant, req.Resource)
	if !ok {
		response.Status = "error"
		response.Error = payload
		return response, nil
	}

	response.Report = payload
	slog.Info("Successfully produced final report",
		"tenant", req.Tenant,
		"resource", req.Resource,
		"report_length", len(payload))

	return response, nil
}

// handleResetSession handles the reset_session MCP tool call.
func (s *MCPSummaryToolServer) handleResetSession(ctx *server.Context, req tools.ResetSessionRequest) (tools.ResetSessionResponse, error) {
	slog.Info("Processing reset_session request", "tenant", req.Tenant, "resource", req.Resource)

	response := tools.ResetSessionResponse{
		Status: "success",
	}

	removed, err := s.agent.ResetSession(req.Tenant, req.Resource)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	response.Removed = removed
	slog.Info("Successfully reset session",
		"tenant", req.Tenant,
		"resource", req.Resource,
		"removed", removed)

	return response, nil
}
