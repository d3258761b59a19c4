package services

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractPlainText(t *testing.T) {
	path := writeTempFile(t, "doc.txt", "just some text")
	got, err := ExtractPlainText(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "just some text" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractDOCXText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	part, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(`<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got, err := ExtractDOCXText(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "First paragraph.\nSecond paragraph."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractDOCXTextMissingPart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	if _, err := zw.Create("something/else.xml"); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	f.Close()

	if _, err := ExtractDOCXText(path); err == nil {
		t.Fatal("expected error for archive without word/document.xml")
	}
}

func TestExtractEmailTextPlain(t *testing.T) {
	email := "Subject: Policy update\r\nFrom: a@example.com\r\nContent-Type: text/plain\r\n\r\nThe policy has changed.\r\n"
	path := writeTempFile(t, "mail.eml", email)
	got, err := ExtractEmailText(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Policy update") || !strings.Contains(got, "The policy has changed.") {
		t.Fatalf("got %q", got)
	}
}

func TestExtractEmailTextMultipart(t *testing.T) {
	email := strings.Join([]string{
		"Subject: Quarterly report",
		`Content-Type: multipart/alternative; boundary="sep"`,
		"",
		"--sep",
		"Content-Type: text/plain",
		"",
		"Plain body here.",
		"--sep",
		"Content-Type: text/html",
		"",
		"<p>HTML body here.</p>",
		"--sep--",
		"",
	}, "\r\n")
	path := writeTempFile(t, "mail.eml", email)
	got, err := ExtractEmailText(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Plain body here.") {
		t.Fatalf("plain part missing from %q", got)
	}
	if strings.Contains(got, "HTML body here") {
		t.Fatalf("html part should be skipped, got %q", got)
	}
}

func TestExtractHTMLText(t *testing.T) {
	html := `<html><head><style>body { color: red }</style></head>
<body>
  <script>alert("nope")</script>
  <h1>Title</h1>
  <p>Visible paragraph.</p>
</body></html>`
	path := writeTempFile(t, "page.html", html)
	got, err := ExtractHTMLText(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Title") || !strings.Contains(got, "Visible paragraph.") {
		t.Fatalf("got %q", got)
	}
	if strings.Contains(got, "alert") || strings.Contains(got, "color: red") {
		t.Fatalf("script/style content leaked: %q", got)
	}
}

func TestExtractBySuffixUnsupported(t *testing.T) {
	path := writeTempFile(t, "doc.exe", "binary")
	if _, err := extractBySuffix(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
