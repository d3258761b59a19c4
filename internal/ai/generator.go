package ai

import (
	"context"
	"fmt"
	"time"

	"document-qa-platform/internal/config"
	"document-qa-platform/internal/logger"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

const (
	generationTemperature = 0.2
	generationMaxTokens   = 512
	generationTimeout     = 30 * time.Second
)

// AnswerGenerator produces a single-turn completion for a prompt at low
// sampling temperature. The SDK call runs behind a circuit breaker and a
// provider rate limiter; on failure the raw REST transport is tried once.
type AnswerGenerator struct {
	model       string
	client      *genai.Client
	rest        *restClient
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

func NewAnswerGenerator(ctx context.Context, cfg *config.Config) (*AnswerGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	limits := getRateLimits(cfg.GeminiTier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), limits.RPM/10)

	return &AnswerGenerator{
		model:       cfg.GenerationModel,
		client:      client,
		rest:        newRESTClient(cfg.GeminiAPIKey, cfg.GeminiAPIURL),
		breaker:     breaker,
		rateLimiter: rateLimiter,
	}, nil
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

// Generate sends one prompt and returns the model's reply text.
func (g *AnswerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	tracer := otel.Tracer("answer-generator")
	ctx, span := tracer.Start(ctx, "generator.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("generator.model", g.model),
		attribute.Int("generator.prompt_chars", len(prompt)),
	)

	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	if err := g.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("generator.rate_limited", true))
		return "", &GenerationError{Message: fmt.Sprintf("rate limiter: %v", err), Err: err}
	}

	result, sdkErr := g.breaker.Execute(func() (interface{}, error) {
		model := g.client.GenerativeModel(g.model)
		model.SetTemperature(generationTemperature)
		model.SetMaxOutputTokens(generationMaxTokens)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}

		text := extractResponseText(resp)
		if text == "" {
			return nil, fmt.Errorf("empty response from model")
		}
		return text, nil
	})
	if sdkErr == nil {
		return result.(string), nil
	}

	logger.Warn("SDK generation failed, trying direct HTTP", "error", sdkErr)
	span.SetAttributes(attribute.Bool("generator.fallback", true))

	text, restErr := g.rest.generateContent(ctx, g.model, prompt, generationTemperature, generationMaxTokens)
	if restErr == nil {
		return text, nil
	}

	span.SetAttributes(attribute.Bool("generator.error", true))
	return "", &GenerationError{
		Message: fmt.Sprintf("sdk: %v; http: %v", sdkErr, restErr),
		Err:     restErr,
	}
}

func extractResponseText(resp *genai.GenerateContentResponse) string {
	text := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
	}
	return text
}

// Close releases the underlying SDK client.
func (g *AnswerGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
