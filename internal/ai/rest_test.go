package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRESTGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.MaxOutputTokens != 512 {
			t.Errorf("generation config not forwarded: %+v", req.GenerationConfig)
		}

		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []restCandidate{
				{Content: restContent{Parts: []restPart{{Text: "generated reply"}}}},
			},
		})
	}))
	defer srv.Close()

	client := newRESTClient("test-key", srv.URL)
	got, err := client.generateContent(context.Background(), "gemini-2.0-flash", "hello", 0.2, 512)
	if err != nil {
		t.Fatal(err)
	}
	if got != "generated reply" {
		t.Fatalf("got %q", got)
	}
}

func TestRESTGenerateContentAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(generateResponse{
			Error: &restAPIError{Code: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"},
		})
	}))
	defer srv.Close()

	client := newRESTClient("test-key", srv.URL)
	_, err := client.generateContent(context.Background(), "gemini-2.0-flash", "hello", 0.2, 512)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestRESTGenerateContentNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	}))
	defer srv.Close()

	client := newRESTClient("test-key", srv.URL)
	_, err := client.generateContent(context.Background(), "gemini-2.0-flash", "hello", 0.2, 512)
	if err == nil || !strings.Contains(err.Error(), "no candidates") {
		t.Fatalf("got %v", err)
	}
}

func TestRESTEmbedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":embedContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(embedResponse{
			Embedding: &restEmbedding{Values: []float32{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	client := newRESTClient("test-key", srv.URL)
	values, err := client.embedContent(context.Background(), "text-embedding-004", "some text")
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 3 || values[1] != 0.2 {
		t.Fatalf("got %v", values)
	}
}

func TestRESTEmbedContentEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{})
	}))
	defer srv.Close()

	client := newRESTClient("test-key", srv.URL)
	_, err := client.embedContent(context.Background(), "text-embedding-004", "some text")
	if err == nil || !strings.Contains(err.Error(), "no embedding") {
		t.Fatalf("got %v", err)
	}
}

func TestRESTServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed on purpose

	client := newRESTClient("test-key", srv.URL)
	if _, err := client.generateContent(context.Background(), "m", "p", 0.2, 10); err == nil {
		t.Fatal("expected transport error")
	}
}
