package backend

import (
	"encoding/json"
	"strings"
	"testing"
)

func conversationalConfig() Config {
	return Config{
		APIBase:   "https://api.example.com/client/v4/accounts/abc123/ai/run/",
		Model:     "meta/llama-3-8b-instruct",
		AuthToken: "cf-token",
	}
}

func TestConversationalEndpointConstruction(t *testing.T) {
	adapter, err := NewConversationalAdapter(conversationalConfig())
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	want := "https://api.example.com/client/v4/accounts/abc123/ai/run/meta/llama-3-8b-instruct"
	if adapter.Endpoint() != want {
		t.Errorf("Unexpected endpoint: %s", adapter.Endpoint())
	}
}

func TestConversationalConfigValidation(t *testing.T) {
	cfg := conversationalConfig()
	cfg.Model = ""
	if _, err := NewConversationalAdapter(cfg); err == nil {
		t.Error("Expected error when model is missing")
	}

	cfg = conversationalConfig()
	cfg.AuthToken = ""
	if _, err := NewConversationalAdapter(cfg); err == nil {
		t.Error("Expected error when bearer token is missing")
	}

	cfg = conversationalConfig()
	cfg.APIBase = ""
	if _, err := NewConversationalAdapter(cfg); err == nil {
		t.Error("Expected error when API base is missing")
	}
}

func TestConversationalRequestEnvelope(t *testing.T) {
	cfg := conversationalConfig()
	cfg.SystemPreamble = "You are a BGP reviewer."
	adapter, err := NewConversationalAdapter(cfg)
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	req, err := adapter.BuildRequest("Summarise routes (part 2/3)", "Network 10.0.0.0/8")
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	var body conversationalRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("Request body is not valid JSON: %v", err)
	}

	if len(body.Messages) != 2 {
		t.Fatalf("Expected [system, user] messages, got %d", len(body.Messages))
	}
	if body.Messages[0].Role != "system" || body.Messages[0].Content != "You are a BGP reviewer." {
		t.Errorf("Unexpected system message: %+v", body.Messages[0])
	}
	if body.Messages[1].Role != "user" {
		t.Errorf("Expected user role, got %q", body.Messages[1].Role)
	}
	if body.Messages[1].Content != "Summarise routes (part 2/3)\n\nNetwork 10.0.0.0/8" {
		t.Errorf("Unexpected user content: %q", body.Messages[1].Content)
	}
	if body.MaxTokens != DefaultConversationalMaxTokens {
		t.Errorf("Expected default max_tokens, got %d", body.MaxTokens)
	}

	if req.Headers["Authorization"] != "Bearer cf-token" {
		t.Errorf("Expected bearer header, got %q", req.Headers["Authorization"])
	}
	if req.Headers["User-Agent"] != "curl/8.1.2" {
		t.Errorf("Expected curl user agent, got %q", req.Headers["User-Agent"])
	}
}

func TestConversationalEmptyChunkOmitsSeparator(t *testing.T) {
	adapter, err := NewConversationalAdapter(conversationalConfig())
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	req, err := adapter.BuildRequest("Merge these summaries", "")
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	var body conversationalRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("Request body is not valid JSON: %v", err)
	}
	if body.Messages[1].Content != "Merge these summaries" {
		t.Errorf("Empty chunk should not append a separator: %q", body.Messages[1].Content)
	}
}

func TestConversationalParseResponse(t *testing.T) {
	adapter, err := NewConversationalAdapter(conversationalConfig())
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	text, err := adapter.ParseResponse(nil, 200, []byte(`{"result":{"response":"  All neighbors up.  "}}`))
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if text != "All neighbors up." {
		t.Errorf("Expected trimmed response, got %q", text)
	}
}

func TestConversationalParseMissingNestedField(t *testing.T) {
	adapter, err := NewConversationalAdapter(conversationalConfig())
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	for _, body := range []string{
		`{"success": true}`,
		`{"result": {}}`,
		`{"result": null}`,
	} {
		_, err := adapter.ParseResponse(nil, 200, []byte(body))
		if err == nil {
			t.Errorf("Expected malformed-response error for body %s", body)
			continue
		}
		if !strings.Contains(err.Error(), "result.response") {
			t.Errorf("Error should name the missing field, got %v", err)
		}
	}
}

func TestConversationalParseStatusFailure(t *testing.T) {
	adapter, err := NewConversationalAdapter(conversationalConfig())
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	_, err = adapter.ParseResponse(nil, 429, []byte(`{"errors":[{"message":"rate limited"}]}`))
	if err == nil {
		t.Fatal("Expected protocol error for HTTP 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Error should carry the status code: %v", err)
	}
}
