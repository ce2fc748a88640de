// Package chunker splits raw device output into bounded-length chunks
// for independent summarization.
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

// Policy identifies a chunk-boundary policy.
type Policy string

const (
	// PolicyWordWrap produces chunks that end at whitespace, each at or
	// under the configured bound. Runs of whitespace are reflowed to a
	// single space when a text spans multiple chunks.
	PolicyWordWrap Policy = "word-wrap"

	// PolicyFixedWindow produces chunks of exactly the configured bound,
	// except the last. Concatenating the chunks reconstructs the input
	// byte for byte.
	PolicyFixedWindow Policy = "fixed-window"
)

// Chunk is one bounded-length slice of the raw input, tagged with its
// 1-based position in the sequence.
type Chunk struct {
	Index int
	Total int
	Text  string
}

// Chunker deterministically splits text into an ordered sequence of chunks.
type Chunker interface {
	// Split returns the ordered chunk texts. Empty input yields zero chunks.
	Split(text string) []string

	// Policy returns the boundary policy this chunker implements.
	Policy() Policy

	// MaxLen returns the configured chunk-length bound.
	MaxLen() int
}

// New creates a Chunker for the given policy and bound.
func New(policy Policy, maxLen int) (Chunker, error) {
	if maxLen <= 0 {
		return nil, fmt.Errorf("chunk length bound must be positive, got %d", maxLen)
	}
	switch policy {
	case PolicyWordWrap:
		return &wordWrapChunker{maxLen: maxLen}, nil
	case PolicyFixedWindow:
		return &fixedWindowChunker{maxLen: maxLen}, nil
	default:
		return nil, errors.New("unknown chunk policy: " + string(policy))
	}
}

// Enumerate converts an ordered chunk-text sequence into indexed chunks.
func Enumerate(parts []string) []Chunk {
	chunks := make([]Chunk, len(parts))
	for i, text := range parts {
		chunks[i] = Chunk{Index: i + 1, Total: len(parts), Text: text}
	}
	return chunks
}

// wordWrapChunker ends chunks at whitespace, keeping each at or under maxLen.
type wordWrapChunker struct {
	maxLen int
}

func (c *wordWrapChunker) Policy() Policy { return PolicyWordWrap }
func (c *wordWrapChunker) MaxLen() int    { return c.maxLen }

func (c *wordWrapChunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	// Inputs under the bound pass through untouched; this is the common case
	// and keeps single-chunk texts byte-identical.
	if len(text) <= c.maxLen {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > c.maxLen {
			flush()
		}

		// Words longer than the bound are hard-split.
		for len(word) > c.maxLen {
			flush()
			chunks = append(chunks, word[:c.maxLen])
			word = word[c.maxLen:]
		}
		if word == "" {
			continue
		}

		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	flush()

	return chunks
}

// fixedWindowChunker slices the input into exact maxLen windows.
type fixedWindowChunker struct {
	maxLen int
}

func (c *fixedWindowChunker) Policy() Policy { return PolicyFixedWindow }
func (c *fixedWindowChunker) MaxLen() int    { return c.maxLen }

func (c *fixedWindowChunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	chunks := make([]string, 0, (len(text)+c.maxLen-1)/c.maxLen)
	for start := 0; start < len(text); start += c.maxLen {
		end := start + c.maxLen
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
