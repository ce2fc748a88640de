package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/netlens/netsummary/internal/errortypes"
)

// completionPath is the fixed path segment appended to the host:port base.
const completionPath = "/generate"

// CompletionAdapter speaks the single-prompt envelope: a templated prompt
// string in, an "output" field back. Self-hosted instruct models echo the
// prompt at the start of the output, so the echo is stripped before the text
// is handed to the caller.
type CompletionAdapter struct {
	endpoint  string
	preamble  string
	authToken string
	maxTokens int
}

// completionRequest is the wire body for the completion backend.
type completionRequest struct {
	Prompt       string `json:"prompt"`
	MaxNewTokens int    `json:"max_new_tokens"`
}

// completionResponse is the wire body returned by the completion backend.
// Output is a pointer so a missing field can be told apart from an empty one.
type completionResponse struct {
	Output *string `json:"output"`
}

// NewCompletionAdapter creates a completion adapter from the given config.
func NewCompletionAdapter(cfg Config) (*CompletionAdapter, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, errortypes.ConfigError(errors.New("host is empty"), "completion backend requires a host")
	}

	base := "http://" + host
	if port := strings.TrimSpace(cfg.Port); port != "" {
		base += ":" + port
	}

	preamble := cfg.SystemPreamble
	if preamble == "" {
		preamble = DefaultCompletionPreamble
	}

	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = DefaultCompletionMaxTokens
	}

	return &CompletionAdapter{
		endpoint:  base + completionPath,
		preamble:  preamble,
		authToken: strings.TrimSpace(cfg.AuthToken),
		maxTokens: maxTokens,
	}, nil
}

// Name returns the variant name.
func (a *CompletionAdapter) Name() string {
	return VariantCompletion
}

// Endpoint returns the resolved request URL.
func (a *CompletionAdapter) Endpoint() string {
	return a.endpoint
}

// BuildRequest composes the instruct-style prompt embedding the preamble,
// the instruction, and the chunk text.
func (a *CompletionAdapter) BuildRequest(instruction, chunk string) (*Request, error) {
	prompt := fmt.Sprintf("<s>[INST] %s%s\n\n%s [/INST]", a.preamble, instruction, chunk)

	body, err := json.Marshal(completionRequest{
		Prompt:       prompt,
		MaxNewTokens: a.maxTokens,
	})
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to encode completion request")
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if a.authToken != "" {
		headers["Authorization"] = "Bearer " + a.authToken
	}

	return &Request{
		Backend:   VariantCompletion,
		URL:       a.endpoint,
		Headers:   headers,
		Body:      body,
		Prompt:    prompt,
		PromptLen: len(prompt),
	}, nil
}

// ParseResponse validates the status and extracts the "output" field,
// stripping the echoed prompt when the backend repeats it.
func (a *CompletionAdapter) ParseResponse(req *Request, status int, body []byte) (string, error) {
	if status != 200 {
		return "", errortypes.ProtocolError(
			fmt.Errorf("HTTP %d: %s", status, excerpt(body)),
			"completion backend returned error status",
		).WithField("status", status)
	}

	var decoded completionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", errortypes.MalformedResponseError(err, "completion backend returned invalid JSON")
	}
	if decoded.Output == nil {
		return "", errortypes.MalformedResponseError(
			errors.New("response JSON missing 'output' field"),
			"malformed completion response",
		)
	}

	output := *decoded.Output
	if req != nil && req.Prompt != "" {
		output = strings.ReplaceAll(output, req.Prompt, "")
	}

	return strings.TrimSpace(output), nil
}
