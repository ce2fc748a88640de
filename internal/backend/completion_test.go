package backend

import (
	"encoding/json"
	"strings"
	"testing"
)

func completionAdapterForTest(t *testing.T, cfg Config) *CompletionAdapter {
	t.Helper()
	adapter, err := NewCompletionAdapter(cfg)
	if err != nil {
		t.Fatalf("Failed to create completion adapter: %v", err)
	}
	return adapter
}

func TestCompletionEndpointConstruction(t *testing.T) {
	adapter := completionAdapterForTest(t, Config{Host: "10.1.1.5", Port: "8080"})
	if adapter.Endpoint() != "http://10.1.1.5:8080/generate" {
		t.Errorf("Unexpected endpoint: %s", adapter.Endpoint())
	}

	// Port is optional
	adapter = completionAdapterForTest(t, Config{Host: "llm.lab.example"})
	if adapter.Endpoint() != "http://llm.lab.example/generate" {
		t.Errorf("Unexpected endpoint without port: %s", adapter.Endpoint())
	}
}

func TestCompletionRequiresHost(t *testing.T) {
	if _, err := NewCompletionAdapter(Config{Port: "8080"}); err == nil {
		t.Error("Expected error when host is missing")
	}
}

func TestCompletionRequestEnvelope(t *testing.T) {
	adapter := completionAdapterForTest(t, Config{
		Host:            "10.1.1.5",
		Port:            "8080",
		SystemPreamble:  "You review router output. ",
		MaxOutputTokens: 256,
		AuthToken:       "secret",
	})

	req, err := adapter.BuildRequest("Summarise the BGP table (part 1/2)", "Network  Next Hop  Metric")
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	var body completionRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("Request body is not valid JSON: %v", err)
	}

	if body.MaxNewTokens != 256 {
		t.Errorf("Expected max_new_tokens 256, got %d", body.MaxNewTokens)
	}
	if !strings.HasPrefix(body.Prompt, "<s>[INST] You review router output. Summarise the BGP table (part 1/2)") {
		t.Errorf("Prompt missing preamble/instruction prefix: %q", body.Prompt)
	}
	if !strings.Contains(body.Prompt, "\n\nNetwork  Next Hop  Metric") {
		t.Errorf("Prompt missing chunk text: %q", body.Prompt)
	}
	if !strings.HasSuffix(body.Prompt, " [/INST]") {
		t.Errorf("Prompt missing envelope suffix: %q", body.Prompt)
	}

	if req.Headers["Authorization"] != "Bearer secret" {
		t.Errorf("Expected bearer header, got %q", req.Headers["Authorization"])
	}
	if req.Prompt != body.Prompt {
		t.Error("Request.Prompt must carry the wire prompt for echo stripping")
	}
}

func TestCompletionOmitsAuthHeaderWithoutToken(t *testing.T) {
	adapter := completionAdapterForTest(t, Config{Host: "h"})
	req, err := adapter.BuildRequest("summarise", "text")
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if _, ok := req.Headers["Authorization"]; ok {
		t.Error("Authorization header must be absent without a token")
	}
}

func TestCompletionParseStripsEchoAndTrims(t *testing.T) {
	adapter := completionAdapterForTest(t, Config{Host: "h"})
	req, err := adapter.BuildRequest("summarise", "raw output")
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	echoed := req.Prompt + "  The session is established.\n"
	body, _ := json.Marshal(map[string]string{"output": echoed})

	text, err := adapter.ParseResponse(req, 200, body)
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if text != "The session is established." {
		t.Errorf("Expected echo stripped and trimmed, got %q", text)
	}
}

func TestCompletionParseStatusFailure(t *testing.T) {
	adapter := completionAdapterForTest(t, Config{Host: "h"})

	longBody := strings.Repeat("e", 500)
	_, err := adapter.ParseResponse(nil, 500, []byte(longBody))
	if err == nil {
		t.Fatal("Expected protocol error for HTTP 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Error should carry the status code: %v", err)
	}
	if strings.Contains(err.Error(), strings.Repeat("e", 121)) {
		t.Error("Body excerpt should be truncated to 120 characters")
	}
}

func TestCompletionParseMissingOutputField(t *testing.T) {
	adapter := completionAdapterForTest(t, Config{Host: "h"})

	_, err := adapter.ParseResponse(nil, 200, []byte(`{"generated": "text"}`))
	if err == nil {
		t.Fatal("Expected malformed-response error for missing field")
	}
	if !strings.Contains(err.Error(), "output") {
		t.Errorf("Error should name the missing field: %v", err)
	}

	// Present-but-empty output is not malformed
	text, err := adapter.ParseResponse(nil, 200, []byte(`{"output": ""}`))
	if err != nil {
		t.Errorf("Empty output field should parse, got %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty text, got %q", text)
	}
}
