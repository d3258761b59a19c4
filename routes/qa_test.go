package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"document-qa-platform/internal/config"
	"document-qa-platform/internal/vectorindex"
	"document-qa-platform/models"
	"document-qa-platform/services"

	"github.com/gin-gonic/gin"
)

type stubIngester struct {
	text string
	err  error
}

func (s *stubIngester) Ingest(ctx context.Context, source string) (string, error) {
	return s.text, s.err
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)) + 1, 1, 1}
	}
	return out, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "Rationale: from context\nClause: none\nAnswer: forty-two", nil
}

func qaTestServer(t *testing.T, ingester services.DocumentIngester) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{APIToken: "test-token"}
	chunker, err := services.NewTextChunker(200, 40)
	if err != nil {
		t.Fatal(err)
	}
	index := vectorindex.Open(filepath.Join(t.TempDir(), "vector_index"), 3)
	pipeline := services.NewPipeline(chunker, ingester, stubEmbedder{}, stubGenerator{}, index, services.NoopStore{}, services.NewWeightedScorer(), 3)

	router := gin.New()
	SetupQARoutes(router, cfg, pipeline, index, nil)
	return router
}

func postJSON(router *gin.Engine, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRunEndpoint(t *testing.T) {
	router := qaTestServer(t, &stubIngester{text: "One fact. Another fact. A third fact."})

	body := `{"documents": "https://example.com/policy.pdf", "questions": ["What is covered?", "What is excluded?"]}`
	w := postJSON(router, "/api/v1/qa/run", "test-token", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.RunResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Answers) != 2 {
		t.Fatalf("got %d answers, want 2", len(resp.Answers))
	}
	for i, a := range resp.Answers {
		if a.Answer != "forty-two" {
			t.Fatalf("answer %d = %q", i, a.Answer)
		}
		if a.Score != 1.0 {
			t.Fatalf("answer %d score = %f", i, a.Score)
		}
	}
	if resp.Answers[0].Question != "What is covered?" {
		t.Fatalf("answers out of order: %q", resp.Answers[0].Question)
	}
}

func TestRunEndpointRequiresAuth(t *testing.T) {
	router := qaTestServer(t, &stubIngester{text: "text"})
	body := `{"documents": "doc", "questions": ["q"]}`

	if w := postJSON(router, "/api/v1/qa/run", "", body); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d", w.Code)
	}
	if w := postJSON(router, "/api/v1/qa/run", "wrong-token", body); w.Code != http.StatusForbidden {
		t.Fatalf("wrong token: status = %d", w.Code)
	}
}

func TestRunEndpointValidation(t *testing.T) {
	router := qaTestServer(t, &stubIngester{text: "text"})

	cases := []string{
		`{"questions": ["q"]}`,
		`{"documents": "doc"}`,
		`{"documents": "doc", "questions": []}`,
		`not json`,
	}
	for _, body := range cases {
		if w := postJSON(router, "/api/v1/qa/run", "test-token", body); w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestRunEndpointIngestionFailure(t *testing.T) {
	router := qaTestServer(t, &stubIngester{err: errors.New("download failed")})

	body := `{"documents": "https://example.com/gone.pdf", "questions": ["q"]}`
	w := postJSON(router, "/api/v1/qa/run", "test-token", body)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}

	// Even a failed request keeps the response shape.
	var resp models.RunResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Answers) != 1 || !strings.HasPrefix(resp.Answers[0].Answer, "Request failed:") {
		t.Fatalf("unexpected failure body: %s", w.Body.String())
	}
}

func TestDocumentsEndpointWithoutQueue(t *testing.T) {
	router := qaTestServer(t, &stubIngester{text: "text"})

	body := `{"documents": "https://example.com/policy.pdf"}`
	w := postJSON(router, "/api/v1/qa/documents", "test-token", body)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when queue is not configured", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router := qaTestServer(t, &stubIngester{text: "One fact. Another fact."})

	body := `{"documents": "doc", "questions": ["q"]}`
	if w := postJSON(router, "/api/v1/qa/run", "test-token", body); w.Code != http.StatusOK {
		t.Fatalf("seed run failed: %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/qa/stats", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}

	var stats vectorindex.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalVectors == 0 {
		t.Fatal("stats should reflect indexed vectors")
	}
}
