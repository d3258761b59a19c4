package services

import (
	"fmt"
	"strings"
)

// TextChunker splits raw text into bounded, overlapping segments suitable
// for embedding. Window boundaries that land mid-sentence are pulled back to
// the nearest sentence-terminal character so sentences survive chunking.
type TextChunker struct {
	maxSize int
	overlap int
}

// NewTextChunker validates the window configuration. Overlap must be less
// than maxSize or the scan would never advance.
func NewTextChunker(maxSize, overlap int) (*TextChunker, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("chunker: max size must be positive, got %d", maxSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunker: overlap must not be negative, got %d", overlap)
	}
	if overlap >= maxSize {
		return nil, fmt.Errorf("chunker: overlap (%d) must be less than max size (%d)", overlap, maxSize)
	}
	return &TextChunker{maxSize: maxSize, overlap: overlap}, nil
}

func isSentenceTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// Split returns the chunks of text. Empty or whitespace-only input yields no
// chunks; input within one window is returned whole.
func (tc *TextChunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= tc.maxSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + tc.maxSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		// Pull the cut back to the nearest sentence end, searching at most
		// half a window so a terminal-free stretch still makes progress.
		limit := end - tc.maxSize/2
		for i := end - 1; i >= limit; i-- {
			if isSentenceTerminal(text[i]) {
				end = i + 1
				break
			}
		}

		chunks = append(chunks, text[start:end])

		next := end - tc.overlap
		if next <= start {
			// The boundary cut landed inside the overlap; skip the overlap
			// for this step rather than stall.
			next = end
		}
		start = next
	}

	return chunks
}

// MaxSize returns the configured window size.
func (tc *TextChunker) MaxSize() int { return tc.maxSize }

// Overlap returns the configured overlap between adjacent chunks.
func (tc *TextChunker) Overlap() int { return tc.overlap }
