// Package backend contains the request/response envelope adapters and the
// HTTP client used to reach remote text-generation services.
package backend

import (
	"time"
)

const (
	// Backend variant names
	VariantCompletion     = "completion"
	VariantConversational = "conversational"

	// Default settings
	DefaultTimeout                 = 30 * time.Second
	DefaultCompletionMaxTokens     = 512
	DefaultConversationalMaxTokens = 1024
	DefaultCompletionChunkLen      = 1500
	DefaultConversationalChunkLen  = 6144
)

// Default system preambles, one per variant. The completion preamble is a raw
// prompt prefix; the conversational one becomes the system message content.
const (
	DefaultCompletionPreamble = "### Role: You are a senior network engineer.\n" +
		"### Task: Evaluate and summarise network-device output.\n\n"

	DefaultConversationalPreamble = "You are a senior network engineer. " +
		"Provide feedback on network-device output."
)

// Config holds the settings for one backend. It is immutable once an adapter
// has been constructed from it.
type Config struct {
	// Variant selects the adapter: "completion" or "conversational".
	Variant string

	// Host and Port form the endpoint base for the completion variant.
	Host string
	Port string

	// APIBase and Model form the endpoint for the conversational variant.
	APIBase string
	Model   string

	// AuthToken is sent as a bearer token. Optional for the completion
	// variant, required for the conversational one.
	AuthToken string

	// SystemPreamble overrides the variant's default preamble when non-empty.
	SystemPreamble string

	MaxOutputTokens int
	Timeout         time.Duration
}

// Request is one prepared backend round trip.
type Request struct {
	// Backend is the adapter name, for logs and metrics.
	Backend string

	URL     string
	Headers map[string]string
	Body    []byte

	// Prompt is the raw prompt text for envelopes that echo it back; the
	// completion adapter uses it to strip the echo from the response.
	Prompt string

	// PromptLen is the prompt size in bytes, recorded for observability.
	PromptLen int
}

// Adapter encapsulates one backend's envelope and endpoint-construction rule.
// Implementations are safe for concurrent use; all per-request state lives in
// the Request.
type Adapter interface {
	// Name returns the variant name.
	Name() string

	// Endpoint returns the resolved request URL.
	Endpoint() string

	// BuildRequest composes the request envelope for one chunk.
	BuildRequest(instruction, chunk string) (*Request, error)

	// ParseResponse validates status and body shape and extracts the
	// generated text, trimmed of surrounding whitespace. Failures are
	// classified errortypes.AppErrors.
	ParseResponse(req *Request, status int, body []byte) (string, error)
}
