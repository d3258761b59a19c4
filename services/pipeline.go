package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"document-qa-platform/internal/logger"
	"document-qa-platform/internal/telemetry"
	"document-qa-platform/internal/vectorindex"
	"document-qa-platform/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const chunkTypeDocumentSegment = "document_segment"

// Embedder converts texts into vectors, order-preserving.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever is the vector index surface the pipeline depends on.
type Retriever interface {
	Upsert(vectors [][]float32, metadata []vectorindex.Metadata, ids []string) ([]string, error)
	Query(vector []float32, topK int) ([]vectorindex.Result, error)
	Stats() vectorindex.Stats
}

// Pipeline coordinates ingestion, chunking, embedding, indexing, retrieval,
// generation, scoring and persistence for one request. All collaborators are
// injected; the pipeline owns none of their lifecycles.
type Pipeline struct {
	chunker   *TextChunker
	ingester  DocumentIngester
	embedder  Embedder
	generator Generator
	index     Retriever
	store     AnswerStore
	scorer    Scorer
	topK      int
	metrics   *telemetry.Metrics
}

func NewPipeline(
	chunker *TextChunker,
	ingester DocumentIngester,
	embedder Embedder,
	generator Generator,
	index Retriever,
	store AnswerStore,
	scorer Scorer,
	topK int,
) *Pipeline {
	if topK <= 0 {
		topK = 3
	}
	return &Pipeline{
		chunker:   chunker,
		ingester:  ingester,
		embedder:  embedder,
		generator: generator,
		index:     index,
		store:     store,
		scorer:    scorer,
		topK:      topK,
	}
}

// WithMetrics attaches application metrics; a nil receiver field disables
// recording.
func (p *Pipeline) WithMetrics(m *telemetry.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// IndexDocument runs the shared prefix of the pipeline: ingest, chunk, embed
// and index one document under a freshly generated document id. Any failure
// here is fatal to the request that triggered it.
func (p *Pipeline) IndexDocument(ctx context.Context, source string) (string, int, error) {
	tracer := otel.Tracer("qa-pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.index_document")
	defer span.End()

	docID := uuid.NewString()
	span.SetAttributes(attribute.String("pipeline.document_id", docID))

	text, err := p.ingester.Ingest(ctx, source)
	if err != nil {
		return "", 0, err
	}

	chunkTexts := p.chunker.Split(text)
	if len(chunkTexts) == 0 {
		return "", 0, &IngestionError{Source: source, Message: "document produced no chunks"}
	}
	span.SetAttributes(attribute.Int("pipeline.chunks", len(chunkTexts)))

	chunks := make([]models.Chunk, len(chunkTexts))
	for i, chunkText := range chunkTexts {
		chunks[i] = models.Chunk{
			Text:             chunkText,
			SourceDocumentID: docID,
			SequenceIndex:    i,
		}
	}

	vectors, err := p.embedder.EmbedTexts(ctx, chunkTexts)
	if err != nil {
		return "", 0, err
	}
	if p.metrics != nil {
		p.metrics.EmbeddingBatches.Add(ctx, 1)
	}

	metadata := make([]vectorindex.Metadata, len(chunks))
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		metadata[i] = vectorindex.Metadata{
			Text:          chunk.Text,
			DocumentID:    chunk.SourceDocumentID,
			SequenceIndex: chunk.SequenceIndex,
			Type:          chunkTypeDocumentSegment,
		}
		ids[i] = fmt.Sprintf("%s_chunk_%d", docID, chunk.SequenceIndex)
	}

	if _, err := p.index.Upsert(vectors, metadata, ids); err != nil {
		return "", 0, fmt.Errorf("vector index upsert failed: %w", err)
	}

	if err := p.store.CreateDocument(ctx, docID, source, source, text, len(chunkTexts)); err != nil {
		// Persistence never blocks answering.
		logger.Warn("Failed to persist document record", "document_id", docID, "error", err)
	}

	if p.metrics != nil {
		p.metrics.DocumentsIndexed.Add(ctx, 1)
	}
	logger.Info("Indexed document", "document_id", docID, "chunks", len(chunkTexts))
	return docID, len(chunkTexts), nil
}

// Run answers all questions against one document. The returned slice always
// matches the order of the input questions; a per-question failure degrades
// only that entry. An error return means the request failed before fan-out
// and no question was attempted.
func (p *Pipeline) Run(ctx context.Context, source string, questions []string) ([]models.AnswerItem, error) {
	tracer := otel.Tracer("qa-pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()
	span.SetAttributes(attribute.Int("pipeline.questions", len(questions)))

	start := time.Now()

	docID, _, err := p.IndexDocument(ctx, source)
	if err != nil {
		span.SetAttributes(attribute.Bool("pipeline.error", true))
		return nil, err
	}

	results := make([]models.AnswerItem, len(questions))
	var wg sync.WaitGroup
	for i, question := range questions {
		wg.Add(1)
		go func(i int, question string) {
			defer wg.Done()
			results[i] = p.answerQuestion(ctx, docID, question)
		}(i, question)
	}
	wg.Wait()

	if p.metrics != nil {
		p.metrics.PipelineDuration.Record(ctx, time.Since(start).Seconds())
	}
	return results, nil
}

// answerQuestion runs the per-question stages: retrieve, generate, score,
// record. Each failure mode produces an explicit degraded item; nothing here
// panics or aborts sibling questions.
func (p *Pipeline) answerQuestion(ctx context.Context, docID, question string) models.AnswerItem {
	tracer := otel.Tracer("qa-pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.answer_question")
	defer span.End()

	item := models.AnswerItem{Question: question}

	queryVectors, err := p.embedder.EmbedTexts(ctx, []string{question})
	if err != nil || len(queryVectors) != 1 {
		if err == nil {
			err = fmt.Errorf("expected 1 query vector, got %d", len(queryVectors))
		}
		logger.Error("Question embedding failed", "question", question, "error", err)
		span.SetAttributes(attribute.Bool("question.degraded", true))
		item.Answer = fmt.Sprintf("Unable to answer: question embedding failed: %v", err)
		item.Score = p.scorer.Score(false)
		p.recordResult(ctx, docID, item)
		return item
	}

	var contexts []string
	hits, err := p.index.Query(queryVectors[0], p.topK)
	if err != nil {
		// Empty context still lets the model try; worse answer beats none.
		logger.Warn("Vector index query failed", "question", question, "error", err)
	} else {
		for _, hit := range hits {
			contexts = append(contexts, hit.Metadata.Text)
		}
	}
	span.SetAttributes(attribute.Int("question.context_chunks", len(contexts)))

	prompt := buildPrompt(question, contexts)

	reply, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		logger.Error("Answer generation failed", "question", question, "error", err)
		span.SetAttributes(attribute.Bool("question.degraded", true))
		if p.metrics != nil {
			p.metrics.QuestionsDegraded.Add(ctx, 1)
		}
		item.Answer = fmt.Sprintf("Unable to generate an answer: %v", err)
		item.Score = p.scorer.Score(false)
		p.recordResult(ctx, docID, item)
		return item
	}

	item.Answer, item.Rationale, item.ClauseReference = parseReply(reply)
	item.Score = p.scorer.Score(true)

	if p.metrics != nil {
		p.metrics.QuestionsAnswered.Add(ctx, 1)
	}
	p.recordResult(ctx, docID, item)
	return item
}

func (p *Pipeline) recordResult(ctx context.Context, docID string, item models.AnswerItem) {
	if err := p.store.SaveResult(ctx, docID, item); err != nil {
		logger.Warn("Failed to persist answer", "question", item.Question, "error", err)
	}
}

// buildPrompt injects the retrieved chunks, in similarity order, ahead of
// the question and asks for a labeled reply the parser can split.
func buildPrompt(question string, contexts []string) string {
	var prompt strings.Builder

	if len(contexts) > 0 {
		prompt.WriteString("Context from the uploaded document:\n\n")
		prompt.WriteString(strings.Join(contexts, "\n"))
		prompt.WriteString("\n\nBased on the above context, answer the following question:\n\n")
	} else {
		prompt.WriteString("No document context could be retrieved. Answer the following question if possible, and say so if you cannot:\n\n")
	}

	prompt.WriteString(question)
	prompt.WriteString("\n\nRespond in exactly this format:\n")
	prompt.WriteString("Rationale: <your reasoning based on the context>\n")
	prompt.WriteString("Clause: <the clause or section you relied on, or 'none'>\n")
	prompt.WriteString("Answer: <the final answer>")

	return prompt.String()
}

// parseReply splits a labeled reply into its parts. Without an "Answer:"
// marker the entire reply is the answer with empty rationale.
func parseReply(reply string) (answer, rationale string, clauseRef *string) {
	idx := strings.LastIndex(reply, "Answer:")
	if idx < 0 {
		return strings.TrimSpace(reply), "", nil
	}

	answer = strings.TrimSpace(reply[idx+len("Answer:"):])
	head := reply[:idx]

	if cIdx := strings.Index(head, "Clause:"); cIdx >= 0 {
		clause := strings.TrimSpace(head[cIdx+len("Clause:"):])
		head = head[:cIdx]
		if clause != "" && !strings.EqualFold(clause, "none") {
			clauseRef = &clause
		}
	}

	if rIdx := strings.Index(head, "Rationale:"); rIdx >= 0 {
		rationale = strings.TrimSpace(head[rIdx+len("Rationale:"):])
	} else {
		rationale = strings.TrimSpace(head)
	}

	return answer, rationale, clauseRef
}
