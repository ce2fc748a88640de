package server

import (
	"context"
	"errors"
	"testing"

	"github.com/netlens/netsummary/internal/tools"
)

var testError = errors.New("test error")

// MockAgent implements the SummaryAgent interface for testing
type MockAgent struct {
	GenerateCalls []struct {
		Tenant, Resource, RawOutput, Instruction string
	}
	FinalCalls []struct {
		Tenant, Resource string
	}
	ResetCalls []struct {
		Tenant, Resource string
	}

	GenerateResult string
	FinalResult    string
	Chunks         int
	ResetRemoved   int
	FailMessage    string
	ReturnError    bool
}

func (m *MockAgent) Generate(ctx context.Context, tenant, resource, rawOutput, instruction string) (bool, string) {
	m.GenerateCalls = append(m.GenerateCalls, struct {
		Tenant, Resource, RawOutput, Instruction string
	}{tenant, resource, rawOutput, instruction})

	if m.FailMessage != "" {
		return false, m.FailMessage
	}
	return true, m.GenerateResult
}

func (m *MockAgent) GetFinalResponse(ctx context.Context, tenant, resource string) (bool, string) {
	m.FinalCalls = append(m.FinalCalls, struct {
		Tenant, Resource string
	}{tenant, resource})

	if m.FailMessage != "" {
		return false, m.FailMessage
	}
	return true, m.FinalResult
}

func (m *MockAgent) ResetSession(tenant, resource string) (int, error) {
	m.ResetCalls = append(m.ResetCalls, struct {
		Tenant, Resource string
	}{tenant, resource})

	if m.ReturnError {
		return 0, testError
	}
	return m.ResetRemoved, nil
}

func (m *MockAgent) ChunkCount(rawOutput string) int {
	return m.Chunks
}

func initializedServer(t *testing.T, agent SummaryAgent) *MCPSummaryToolServer {
	t.Helper()
	srv := NewSummaryToolServer(agent)
	if err := srv.Initialize(); err != nil {
		t.Fatalf("Failed to initialize server: %v", err)
	}
	return srv
}

// TestSummarizeOutput tests the summarize_output tool handler
func TestSummarizeOutput(t *testing.T) {
	mockAgent := &MockAgent{
		GenerateResult: "BGP table is stable",
		Chunks:         2,
	}
	srv := initializedServer(t, mockAgent)

	req := tools.SummarizeOutputRequest{
		Tenant:      "lab",
		Resource:    "er11",
		RawOutput:   "show ip bgp summary output",
		Instruction: "Summarise the BGP table",
	}

	response, err := srv.handleSummarizeOutput(nil, req)
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", response.Status)
	}
	if response.Summary != "BGP table is stable" {
		t.Errorf("Expected summary from agent, got '%s'", response.Summary)
	}
	if response.Chunks != 2 {
		t.Errorf("Expected 2 chunks, got %d", response.Chunks)
	}

	if len(mockAgent.GenerateCalls) != 1 {
		t.Fatalf("Expected 1 Generate call, got %d", len(mockAgent.GenerateCalls))
	}
	call := mockAgent.GenerateCalls[0]
	if call.Tenant != "lab" || call.Resource != "er11" {
		t.Errorf("Session identifiers not forwarded: %+v", call)
	}
	if call.Instruction != "Summarise the BGP table" {
		t.Errorf("Expected the request instruction, got '%s'", call.Instruction)
	}
}

// TestSummarizeOutputDefaultInstruction tests the instruction fallback
func TestSummarizeOutputDefaultInstruction(t *testing.T) {
	mockAgent := &MockAgent{GenerateResult: "ok"}
	srv := initializedServer(t, mockAgent)

	req := tools.SummarizeOutputRequest{
		Tenant:    "lab",
		Resource:  "er11",
		RawOutput: "output",
	}

	if _, err := srv.handleSummarizeOutput(nil, req); err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if mockAgent.GenerateCalls[0].Instruction != tools.DefaultInstruction {
		t.Errorf("Expected default instruction, got '%s'", mockAgent.GenerateCalls[0].Instruction)
	}
}

// TestFinalReport tests the final_report tool handler
func TestFinalReport(t *testing.T) {
	mockAgent := &MockAgent{
		FinalResult: "Merged report",
	}
	srv := initializedServer(t, mockAgent)

	req := tools.FinalReportRequest{Tenant: "lab", Resource: "er11"}
	response, err := srv.handleFinalReport(nil, req)
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", response.Status)
	}
	if response.Report != "Merged report" {
		t.Errorf("Expected report from agent, got '%s'", response.Report)
	}
	if len(mockAgent.FinalCalls) != 1 {
		t.Fatalf("Expected 1 GetFinalResponse call, got %d", len(mockAgent.FinalCalls))
	}
}

// TestResetSession tests the reset_session tool handler
func TestResetSession(t *testing.T) {
	mockAgent := &MockAgent{ResetRemoved: 3}
	srv := initializedServer(t, mockAgent)

	req := tools.ResetSessionRequest{Tenant: "lab", Resource: "er11"}
	response, err := srv.handleResetSession(nil, req)
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}

	if response.Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", response.Status)
	}
	if response.Removed != 3 {
		t.Errorf("Expected 3 removed, got %d", response.Removed)
	}
}

// TestErrorHandling tests error propagation into the response envelope
func TestErrorHandling(t *testing.T) {
	testCases := []struct {
		name string
		tool string
	}{
		{"Generate Failure", "summarize"},
		{"Final Report Failure", "final"},
		{"Reset Failure", "reset"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockAgent := &MockAgent{
				FailMessage: "backend unreachable",
				ReturnError: true,
			}
			srv := initializedServer(t, mockAgent)

			var status, errMsg string
			switch tc.tool {
			case "summarize":
				resp, err := srv.handleSummarizeOutput(nil, tools.SummarizeOutputRequest{
					Tenant: "lab", Resource: "er11", RawOutput: "output",
				})
				if err != nil {
					t.Fatalf("Handler should not return error: %v", err)
				}
				status, errMsg = resp.Status, resp.Error
			case "final":
				resp, err := srv.handleFinalReport(nil, tools.FinalReportRequest{
					Tenant: "lab", Resource: "er11",
				})
				if err != nil {
					t.Fatalf("Handler should not return error: %v", err)
				}
				status, errMsg = resp.Status, resp.Error
			case "reset":
				resp, err := srv.handleResetSession(nil, tools.ResetSessionRequest{
					Tenant: "lab", Resource: "er11",
				})
				if err != nil {
					t.Fatalf("Handler should not return error: %v", err)
				}
				status, errMsg = resp.Status, resp.Error
			}

			if status != "error" {
				t.Errorf("Expected status 'error', got '%s'", status)
			}
			if errMsg == "" {
				t.Error("Expected non-empty error message")
			}
		})
	}
}

// TestInitializeWithoutAgent tests that a nil agent is rejected
func TestInitializeWithoutAgent(t *testing.T) {
	srv := NewSummaryToolServer(nil)
	if err := srv.Initialize(); err == nil {
		t.Error("Expected initialization to fail without an agent")
	}
}

// TestStartWithoutInitialize tests that Start requires Initialize
func TestStartWithoutInitialize(t *testing.T) {
	srv := NewSummaryToolServer(&MockAgent{})
	if err := srv.Start(); err == nil {
		t.Error("Expected Start to fail before Initialize")
	}
}
