// Package tools defines the MCP tool names and schemas
// for the NetSummary service.
package tools

const (
	// ToolSummarizeOutput is the name of the summarize_output MCP tool
	ToolSummarizeOutput = "summarize_output"

	// ToolFinalReport is the name of the final_report MCP tool
	ToolFinalReport = "final_report"

	// ToolResetSession is the name of the reset_session MCP tool
	ToolResetSession = "reset_session"

	// DefaultInstruction is used when a summarize_output request carries no
	// instruction of its own
	DefaultInstruction = "Summarise the following device output"
)

// SummarizeOutputRequest defines the input schema for summarize_output tool
type SummarizeOutputRequest struct {
	// Tenant is the owning tenant of the session
	Tenant string `json:"tenant"`

	// Resource is the device or resource the output came from
	Resource string `json:"resource"`

	// RawOutput is the device output to chunk and summarize
	RawOutput string `json:"raw_output"`

	// Instruction steers the summarization
	// If not specified, DefaultInstruction will be used
	Instruction string `json:"instruction,omitempty"`
}

// SummarizeOutputResponse defines the output schema for summarize_output tool
type SummarizeOutputResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Summary is the summary of the last processed chunk
	Summary string `json:"summary"`

	// Chunks is the number of chunks the output was split into
	Chunks int `json:"chunks"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// FinalReportRequest defines the input schema for final_report tool
type FinalReportRequest struct {
	// Tenant is the owning tenant of the session
	Tenant string `json:"tenant"`

	// Resource is the device or resource to report on
	Resource string `json:"resource"`
}

// FinalReportResponse defines the output schema for final_report tool
type FinalReportResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Report is the merged final summary
	Report string `json:"report"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ResetSessionRequest defines the input schema for reset_session tool
type ResetSessionRequest struct {
	// Tenant is the owning tenant of the session
	Tenant string `json:"tenant"`

	// Resource is the device or resource whose session is cleared
	Resource string `json:"resource"`
}

// ResetSessionResponse defines the output schema for reset_session tool
type ResetSessionResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Removed is the number of cached summaries discarded
	Removed int `json:"removed"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}
