package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// MockResponseConfig holds configuration for mock backend responses
type MockResponseConfig struct {
	StatusCode   int
	ResponseBody interface{}
	Headers      map[string]string
}

// MockServer creates a test server that returns the configured response
func MockServer(t *testing.T, config MockResponseConfig) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set headers
		for k, v := range config.Headers {
			w.Header().Set(k, v)
		}

		// Always set content type if not explicitly set
		if _, exists := config.Headers["Content-Type"]; !exists {
			w.Header().Set("Content-Type", "application/json")
		}

		// Set status code
		w.WriteHeader(config.StatusCode)

		// Write response body
		if config.ResponseBody != nil {
			var respBytes []byte
			var err error

			// Handle string or []byte directly
			switch body := config.ResponseBody.(type) {
			case string:
				respBytes = []byte(body)
			case []byte:
				respBytes = body
			default:
				// Marshal other types to JSON
				respBytes, err = json.Marshal(body)
				if err != nil {
					t.Fatalf("Failed to marshal mock response: %v", err)
				}
			}

			if _, err := w.Write(respBytes); err != nil {
				t.Fatalf("Failed to write response body: %v", err)
			}
		}
	}))
}

// CompletionConfigForURL builds a completion backend Config whose endpoint
// resolves inside the given test server URL.
func CompletionConfigForURL(t *testing.T, serverURL string) Config {
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("Failed to parse test server URL %q: %v", serverURL, err)
	}
	return Config{
		Variant: VariantCompletion,
		Host:    u.Hostname(),
		Port:    u.Port(),
	}
}

// ConversationalConfigForURL builds a conversational backend Config whose
// endpoint resolves to {serverURL}/{model}.
func ConversationalConfigForURL(t *testing.T, serverURL, model string) Config {
	if _, err := url.Parse(serverURL); err != nil {
		t.Fatalf("Failed to parse test server URL %q: %v", serverURL, err)
	}
	return Config{
		Variant:   VariantConversational,
		APIBase:   serverURL,
		Model:     model,
		AuthToken: "test-token",
	}
}

// ScriptedAdapter is a simple Adapter implementation for tests; it returns
// the configured text or error from ParseResponse.
type ScriptedAdapter struct {
	name         string
	endpoint     string
	returnText   string
	returnError  error
	builtPrompts []string
}

// NewScriptedAdapter creates a new ScriptedAdapter targeting the given endpoint
func NewScriptedAdapter(name, endpoint, returnText string, returnError error) *ScriptedAdapter {
	return &ScriptedAdapter{
		name:        name,
		endpoint:    endpoint,
		returnText:  returnText,
		returnError: returnError,
	}
}

// Name returns the configured adapter name
func (a *ScriptedAdapter) Name() string {
	return a.name
}

// Endpoint returns the configured endpoint
func (a *ScriptedAdapter) Endpoint() string {
	return a.endpoint
}

// BuildRequest records the composed instruction+chunk text
func (a *ScriptedAdapter) BuildRequest(instruction, chunk string) (*Request, error) {
	prompt := instruction + "\n\n" + chunk
	a.builtPrompts = append(a.builtPrompts, prompt)
	return &Request{
		Backend:   a.name,
		URL:       a.Endpoint(),
		Headers:   map[string]string{"Content-Type": "application/json"},
		Body:      []byte(`{}`),
		PromptLen: len(prompt),
	}, nil
}

// ParseResponse returns the scripted text or error
func (a *ScriptedAdapter) ParseResponse(_ *Request, _ int, _ []byte) (string, error) {
	return a.returnText, a.returnError
}

// BuiltPrompts returns the prompts composed so far
func (a *ScriptedAdapter) BuiltPrompts() []string {
	return a.builtPrompts
}

var _ Adapter = (*ScriptedAdapter)(nil)
