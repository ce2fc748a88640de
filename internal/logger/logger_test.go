package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"fatal":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat("JSON"); got != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %v", got)
	}
	if got := ParseFormat("text"); got != FormatText {
		t.Errorf("ParseFormat(text) = %v", got)
	}
	if got := ParseFormat("yaml"); got != FormatText {
		t.Errorf("Unknown format should fall back to text, got %v", got)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := FromSettings("warn", "text", &buf)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("Messages below warn should be filtered: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("Warn and error messages should pass: %s", out)
	}
}

func TestJSONFormatCarriesServiceTag(t *testing.T) {
	var buf bytes.Buffer
	log := FromSettings("info", "json", &buf)

	log.Info("backend ready", "backend", "completion")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, buf.String())
	}
	if entry["service"] != "netsummary" {
		t.Errorf("Expected service tag, got %v", entry["service"])
	}
	if entry["msg"] != "backend ready" {
		t.Errorf("Expected message, got %v", entry["msg"])
	}
	if entry["backend"] != "completion" {
		t.Errorf("Expected backend attribute, got %v", entry["backend"])
	}
}

func TestNewNilConfigUsesDefaults(t *testing.T) {
	log := New(nil)
	if log == nil {
		t.Fatal("Expected a usable logger")
	}
}
