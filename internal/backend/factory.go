package backend

import (
	"fmt"
	"strings"
)

// NewAdapter returns the adapter for the configured variant. The variant is a
// configuration-time choice; nothing downstream inspects URLs to decide how to
// talk to a backend.
func NewAdapter(cfg Config) (Adapter, error) {
	switch strings.TrimSpace(cfg.Variant) {
	case VariantCompletion:
		return NewCompletionAdapter(cfg)
	case VariantConversational:
		return NewConversationalAdapter(cfg)
	default:
		return nil, fmt.Errorf("unknown backend variant: %q", cfg.Variant)
	}
}

// DefaultChunkLen returns the chunk-length bound conventionally paired with
// the given variant.
func DefaultChunkLen(variant string) int {
	if variant == VariantConversational {
		return DefaultConversationalChunkLen
	}
	return DefaultCompletionChunkLen
}

// DefaultChunkPolicy returns the splitting policy conventionally paired with
// the given variant. Completion backends wrap on word boundaries; conversational
// backends take fixed windows.
func DefaultChunkPolicy(variant string) string {
	if variant == VariantConversational {
		return "fixed-window"
	}
	return "word-wrap"
}

// excerpt truncates a response body for diagnostics.
func excerpt(body []byte) string {
	const maxExcerptLen = 120
	text := strings.TrimSpace(string(body))
	if len(text) > maxExcerptLen {
		return text[:maxExcerptLen]
	}
	return text
}
