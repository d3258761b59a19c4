package ai

import "fmt"

// EmbeddingError reports that both the SDK and the raw HTTP transport failed
// to produce embeddings. Not retriable within the same request.
type EmbeddingError struct {
	Status  string
	Message string
	Err     error
}

func (e *EmbeddingError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("embedding generation failed: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("embedding generation failed: %s", e.Message)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError reports that both transports failed to produce an answer.
// The pipeline converts this into a visible error-string answer, never an
// aborted batch.
type GenerationError struct {
	Status  string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("answer generation failed: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("answer generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }
