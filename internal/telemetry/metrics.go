package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	DocumentsIndexed  metric.Int64Counter
	QuestionsAnswered metric.Int64Counter
	QuestionsDegraded metric.Int64Counter
	PipelineDuration  metric.Float64Histogram
	EmbeddingBatches  metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("document-qa-platform")

	documentsIndexed, err := meter.Int64Counter(
		"pipeline.documents.indexed",
		metric.WithDescription("Total documents ingested and indexed"),
	)
	if err != nil {
		return nil, err
	}

	questionsAnswered, err := meter.Int64Counter(
		"pipeline.questions.answered",
		metric.WithDescription("Total questions answered"),
	)
	if err != nil {
		return nil, err
	}

	questionsDegraded, err := meter.Int64Counter(
		"pipeline.questions.degraded",
		metric.WithDescription("Questions that returned a degraded answer"),
	)
	if err != nil {
		return nil, err
	}

	pipelineDuration, err := meter.Float64Histogram(
		"pipeline.request.duration",
		metric.WithDescription("End-to-end pipeline duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	embeddingBatches, err := meter.Int64Counter(
		"embeddings.batches.total",
		metric.WithDescription("Embedding batches requested"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		DocumentsIndexed:  documentsIndexed,
		QuestionsAnswered: questionsAnswered,
		QuestionsDegraded: questionsDegraded,
		PipelineDuration:  pipelineDuration,
		EmbeddingBatches:  embeddingBatches,
	}, nil
}
