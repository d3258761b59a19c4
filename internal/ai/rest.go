package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"context"
)

// restClient is the raw transport-level fallback for the genai SDK. It talks
// to the same logical endpoints (generateContent, embedContent) over plain
// HTTPS JSON so a broken SDK path never takes the pipeline down with it.
type restClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func newRESTClient(apiKey, baseURL string) *restClient {
	return &restClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type restContent struct {
	Parts []restPart `json:"parts"`
}

type restPart struct {
	Text string `json:"text"`
}

type restAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type generateRequest struct {
	Contents         []restContent     `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []restCandidate `json:"candidates"`
	Error      *restAPIError   `json:"error,omitempty"`
}

type restCandidate struct {
	Content restContent `json:"content"`
}

type embedRequest struct {
	Content restContent `json:"content"`
}

type embedResponse struct {
	Embedding *restEmbedding `json:"embedding"`
	Error     *restAPIError  `json:"error,omitempty"`
}

type restEmbedding struct {
	Values []float32 `json:"values"`
}

func (r *restClient) generateContent(ctx context.Context, model, prompt string, temperature float32, maxTokens int) (string, error) {
	request := generateRequest{
		Contents: []restContent{
			{Parts: []restPart{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", r.baseURL, model, r.apiKey)

	var response generateResponse
	if err := r.post(ctx, url, request, &response); err != nil {
		return "", err
	}

	if response.Error != nil {
		return "", fmt.Errorf("API error: %s (code: %d)", response.Error.Message, response.Error.Code)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}

func (r *restClient) embedContent(ctx context.Context, model, text string) ([]float32, error) {
	request := embedRequest{
		Content: restContent{Parts: []restPart{{Text: text}}},
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", r.baseURL, model, r.apiKey)

	var response embedResponse
	if err := r.post(ctx, url, request, &response); err != nil {
		return nil, err
	}

	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s (code: %d)", response.Error.Message, response.Error.Code)
	}

	if response.Embedding == nil || len(response.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return response.Embedding.Values, nil
}

func (r *restClient) post(ctx context.Context, url string, request, response interface{}) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %v", err)
	}

	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to unmarshal response (HTTP %d): %v", resp.StatusCode, err)
	}

	return nil
}
