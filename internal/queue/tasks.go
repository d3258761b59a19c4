package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"document-qa-platform/internal/logger"
	"document-qa-platform/services"

	"github.com/hibiken/asynq"
)

const (
	TaskIndexDocument = "document:index"
)

type IndexDocumentPayload struct {
	Source string `json:"source"`
}

// NewIndexDocumentTask enqueues background pre-indexing of one document.
func NewIndexDocumentTask(source string) (*asynq.Task, error) {
	payload, err := json.Marshal(IndexDocumentPayload{Source: source})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIndexDocument,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// TaskProcessor executes queued tasks against the shared pipeline.
type TaskProcessor struct {
	pipeline *services.Pipeline
}

func NewTaskProcessor(pipeline *services.Pipeline) *TaskProcessor {
	return &TaskProcessor{pipeline: pipeline}
}

func (p *TaskProcessor) IndexDocument(ctx context.Context, t *asynq.Task) error {
	var payload IndexDocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Pre-indexing document", "source", payload.Source)

	docID, chunks, err := p.pipeline.IndexDocument(ctx, payload.Source)
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", payload.Source, err)
	}

	logger.Info("Pre-indexed document", "source", payload.Source, "document_id", docID, "chunks", chunks)
	return nil
}
