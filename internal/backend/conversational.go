package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/netlens/netsummary/internal/errortypes"
)

// ConversationalAdapter speaks the role-tagged message envelope: an ordered
// [system, user] message list in, a nested result.response field back.
type ConversationalAdapter struct {
	endpoint  string
	preamble  string
	authToken string
	maxTokens int
}

// Message is one role-tagged entry in the conversational envelope.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// conversationalRequest is the wire body for the conversational backend.
type conversationalRequest struct {
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

// conversationalResponse is the wire body returned by the conversational
// backend. Pointers distinguish missing fields from empty values.
type conversationalResponse struct {
	Result *struct {
		Response *string `json:"response"`
	} `json:"result"`
}

// NewConversationalAdapter creates a conversational adapter from the given config.
func NewConversationalAdapter(cfg Config) (*ConversationalAdapter, error) {
	apiBase := strings.TrimSpace(cfg.APIBase)
	if apiBase == "" {
		return nil, errortypes.ConfigError(errors.New("api_base is empty"), "conversational backend requires an API base")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errortypes.ConfigError(errors.New("model is empty"), "conversational backend requires a model identifier")
	}

	token := strings.TrimSpace(cfg.AuthToken)
	if token == "" {
		return nil, errortypes.ConfigError(errors.New("auth token is empty"), "conversational backend requires a bearer token")
	}

	preamble := cfg.SystemPreamble
	if preamble == "" {
		preamble = DefaultConversationalPreamble
	}

	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = DefaultConversationalMaxTokens
	}

	return &ConversationalAdapter{
		endpoint:  strings.TrimRight(apiBase, "/") + "/" + model,
		preamble:  preamble,
		authToken: token,
		maxTokens: maxTokens,
	}, nil
}

// Name returns the variant name.
func (a *ConversationalAdapter) Name() string {
	return VariantConversational
}

// Endpoint returns the resolved request URL.
func (a *ConversationalAdapter) Endpoint() string {
	return a.endpoint
}

// BuildRequest composes the [system, user] message list. The user message
// concatenates the instruction and the chunk text.
func (a *ConversationalAdapter) BuildRequest(instruction, chunk string) (*Request, error) {
	userContent := instruction
	if chunk != "" {
		userContent = instruction + "\n\n" + chunk
	}

	body, err := json.Marshal(conversationalRequest{
		Messages: []Message{
			{Role: "system", Content: a.preamble},
			{Role: "user", Content: userContent},
		},
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to encode conversational request")
	}

	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + a.authToken,
		// The hosted API is measurably more reliable when requests look
		// like CLI traffic.
		"User-Agent": "curl/8.1.2",
	}

	return &Request{
		Backend:   VariantConversational,
		URL:       a.endpoint,
		Headers:   headers,
		Body:      body,
		PromptLen: len(userContent),
	}, nil
}

// ParseResponse validates the status and extracts the nested result.response
// field. No echo stripping is needed for this envelope.
func (a *ConversationalAdapter) ParseResponse(_ *Request, status int, body []byte) (string, error) {
	if status != 200 {
		return "", errortypes.ProtocolError(
			fmt.Errorf("HTTP %d: %s", status, excerpt(body)),
			"conversational backend returned error status",
		).WithField("status", status)
	}

	var decoded conversationalResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", errortypes.MalformedResponseError(err, "conversational backend returned invalid JSON")
	}
	if decoded.Result == nil || decoded.Result.Response == nil {
		return "", errortypes.MalformedResponseError(
			errors.New("response JSON missing 'result.response' field"),
			"malformed conversational response",
		)
	}

	return strings.TrimSpace(*decoded.Result.Response), nil
}
