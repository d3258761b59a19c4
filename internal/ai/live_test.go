package ai

import (
	"context"
	"os"
	"strings"
	"testing"

	"document-qa-platform/internal/config"
)

func liveConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		t.Skipf("config load failed: %v", err)
	}
	return cfg
}

func TestLiveEmbedTexts(t *testing.T) {
	cfg := liveConfig(t)
	client, err := NewEmbeddingClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("client init: %v", err)
	}
	defer client.Close()

	vectors, err := client.EmbedTexts(context.Background(), []string{"hello world", "goodbye world"})
	if err != nil {
		t.Fatalf("embedding error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if len(vectors[0]) == 0 {
		t.Fatal("empty embedding")
	}
}

func TestLiveGenerate(t *testing.T) {
	cfg := liveConfig(t)
	gen, err := NewAnswerGenerator(context.Background(), cfg)
	if err != nil {
		t.Fatalf("generator init: %v", err)
	}
	defer gen.Close()

	reply, err := gen.Generate(context.Background(), "Reply with the single word pong.")
	if err != nil {
		t.Fatalf("generation error: %v", err)
	}
	if strings.TrimSpace(reply) == "" {
		t.Fatal("empty reply")
	}
}

func TestGetRateLimits(t *testing.T) {
	if l := getRateLimits("free"); l.RPM != 10 {
		t.Fatalf("free tier RPM = %d", l.RPM)
	}
	if l := getRateLimits("tier1"); l.RPM != 1000 {
		t.Fatalf("tier1 RPM = %d", l.RPM)
	}
	if l := getRateLimits("unknown"); l.RPM != 10 {
		t.Fatalf("unknown tier should fall back to free, RPM = %d", l.RPM)
	}
}
