package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"document-qa-platform/internal/config"
	"document-qa-platform/internal/logger"

	"github.com/google/uuid"
)

// DocumentIngester turns a document reference (URL or local path) into raw
// extracted text.
type DocumentIngester interface {
	Ingest(ctx context.Context, source string) (string, error)
}

// IngestionService downloads a document when the source is a URL and
// dispatches extraction on file extension.
type IngestionService struct {
	downloadDir string
	maxFileSize int64
	httpClient  *http.Client
}

func NewIngestionService(cfg *config.Config) *IngestionService {
	return &IngestionService{
		downloadDir: cfg.DownloadDir,
		maxFileSize: cfg.MaxFileSize,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.DownloadTimout) * time.Second,
		},
	}
}

// Ingest fetches and extracts the document. Downloaded files stay in the
// download directory until the cleanup job removes them.
func (s *IngestionService) Ingest(ctx context.Context, source string) (string, error) {
	filePath := source
	if isURL(source) {
		downloaded, err := s.download(ctx, source)
		if err != nil {
			return "", &IngestionError{Source: source, Message: "download failed", Err: err}
		}
		filePath = downloaded
	} else {
		if _, err := os.Stat(filePath); err != nil {
			return "", &IngestionError{Source: source, Message: "file not found", Err: err}
		}
	}

	text, err := extractBySuffix(filePath)
	if err != nil {
		return "", &IngestionError{Source: source, Message: "text extraction failed", Err: err}
	}

	if strings.TrimSpace(text) == "" {
		return "", &IngestionError{Source: source, Message: "document contains no extractable text"}
	}

	return text, nil
}

func isURL(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

func (s *IngestionService) download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(s.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	suffix := fileSuffix(rawURL)
	filePath := filepath.Join(s.downloadDir, uuid.NewString()+suffix)

	out, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(resp.Body, s.maxFileSize+1))
	if err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save download: %w", err)
	}
	if written > s.maxFileSize {
		os.Remove(filePath)
		return "", fmt.Errorf("document exceeds maximum file size (%d bytes)", s.maxFileSize)
	}

	logger.Debug("Downloaded document", "url", rawURL, "path", filePath, "bytes", written)
	return filePath, nil
}

// fileSuffix returns the extension of the URL path, ignoring query strings.
func fileSuffix(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return filepath.Ext(rawURL)
	}
	return filepath.Ext(u.Path)
}

func extractBySuffix(filePath string) (string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return ExtractPDFText(filePath)
	case ".docx":
		return ExtractDOCXText(filePath)
	case ".eml", ".email":
		return ExtractEmailText(filePath)
	case ".html", ".htm":
		return ExtractHTMLText(filePath)
	case ".xlsx":
		return ExtractXLSXText(filePath)
	case ".txt", "":
		return ExtractPlainText(filePath)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filePath))
	}
}
