package ai

import (
	"context"
	"fmt"

	"document-qa-platform/internal/config"
	"document-qa-platform/internal/logger"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
)

// EmbeddingClient converts texts into fixed-dimension vectors. The genai SDK
// is the primary transport; on any SDK failure the same batch is retried once
// over the raw REST transport before giving up with an EmbeddingError.
// Identical texts are embedded independently each time (no cache).
type EmbeddingClient struct {
	model  string
	client *genai.Client
	rest   *restClient
}

func NewEmbeddingClient(ctx context.Context, cfg *config.Config) (*EmbeddingClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	return &EmbeddingClient{
		model:  cfg.EmbeddingsModel,
		client: client,
		rest:   newRESTClient(cfg.GeminiAPIKey, cfg.GeminiAPIURL),
	}, nil
}

// EmbedTexts returns one vector per input string, order-preserving.
func (e *EmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	tracer := otel.Tracer("embedding-client")
	ctx, span := tracer.Start(ctx, "embeddings.embed_texts")
	defer span.End()
	span.SetAttributes(
		attribute.Int("embeddings.batch_size", len(texts)),
		attribute.String("embeddings.model", e.model),
	)

	if len(texts) == 0 {
		return nil, nil
	}

	vectors, sdkErr := e.embedWithSDK(ctx, texts)
	if sdkErr == nil {
		return vectors, nil
	}

	logger.Warn("SDK embedding failed, trying direct HTTP", "error", sdkErr)
	span.SetAttributes(attribute.Bool("embeddings.fallback", true))

	vectors, restErr := e.embedWithREST(ctx, texts)
	if restErr == nil {
		return vectors, nil
	}

	span.SetAttributes(attribute.Bool("embeddings.error", true))
	return nil, &EmbeddingError{
		Message: fmt.Sprintf("sdk: %v; http: %v", sdkErr, restErr),
		Err:     restErr,
	}
}

func (e *EmbeddingClient) embedWithSDK(ctx context.Context, texts []string) ([][]float32, error) {
	em := e.client.EmbeddingModel(e.model)

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		resp, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, err
		}
		if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			return nil, fmt.Errorf("no embedding returned")
		}
		vectors = append(vectors, resp.Embedding.Values)
	}

	return vectors, nil
}

func (e *EmbeddingClient) embedWithREST(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		values, err := e.rest.embedContent(ctx, e.model, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, values)
	}

	return vectors, nil
}

// Close releases the underlying SDK client.
func (e *EmbeddingClient) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
