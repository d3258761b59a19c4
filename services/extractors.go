package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"document-qa-platform/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// Extractors turn a downloaded file into raw text. Each is a black box to
// the pipeline: it either returns text or fails, and failures are reported,
// not retried.

// ExtractPDFText pulls plain text from every page of a PDF file.
func ExtractPDFText(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF file: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Failed to extract text from PDF page", "page", i, "error", err)
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	extracted := textBuilder.String()
	if strings.TrimSpace(extracted) == "" {
		return "", fmt.Errorf("no text extracted from PDF")
	}

	return extracted, nil
}

// docx paragraph markup, the subset needed to recover text runs.
type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Texts []string `xml:"t"`
}

// ExtractDOCXText reads the main document part of a .docx archive and joins
// its paragraphs with newlines.
func ExtractDOCXText(filePath string) (string, error) {
	archive, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", err)
	}
	defer archive.Close()

	var docPart *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docPart = f
			break
		}
	}
	if docPart == nil {
		return "", fmt.Errorf("docx archive has no word/document.xml")
	}

	rc, err := docPart.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document part: %w", err)
	}
	defer rc.Close()

	var doc docxDocument
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to parse document part: %w", err)
	}

	var paragraphs []string
	for _, p := range doc.Body.Paragraphs {
		var sb strings.Builder
		for _, r := range p.Runs {
			for _, t := range r.Texts {
				sb.WriteString(t)
			}
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	if len(paragraphs) == 0 {
		return "", fmt.Errorf("no text extracted from docx")
	}

	return strings.Join(paragraphs, "\n"), nil
}

// ExtractEmailText returns the plain-text body of an RFC 822 message,
// walking multipart bodies for text/plain parts.
func ExtractEmailText(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open email file: %w", err)
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse email: %w", err)
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read email body: %w", err)
	}

	subject := msg.Header.Get("Subject")
	text := string(body)

	contentType := msg.Header.Get("Content-Type")
	if strings.Contains(contentType, "multipart/") {
		text = extractPlainParts(text, contentType)
	}

	combined := strings.TrimSpace(subject + "\n" + text)
	if combined == "" {
		return "", fmt.Errorf("no text extracted from email")
	}

	return combined, nil
}

// extractPlainParts picks text/plain sections out of a multipart body using
// the boundary from the content type. Parts that do not declare text/plain
// are skipped.
func extractPlainParts(body, contentType string) string {
	boundary := ""
	for _, param := range strings.Split(contentType, ";") {
		param = strings.TrimSpace(param)
		if strings.HasPrefix(param, "boundary=") {
			boundary = strings.Trim(strings.TrimPrefix(param, "boundary="), `"`)
		}
	}
	if boundary == "" {
		return body
	}

	var parts []string
	for _, section := range strings.Split(body, "--"+boundary) {
		headerEnd := strings.Index(section, "\r\n\r\n")
		if headerEnd < 0 {
			headerEnd = strings.Index(section, "\n\n")
			if headerEnd < 0 {
				continue
			}
		}
		headers := section[:headerEnd]
		if !strings.Contains(strings.ToLower(headers), "text/plain") {
			continue
		}
		parts = append(parts, strings.TrimSpace(section[headerEnd:]))
	}

	if len(parts) == 0 {
		return body
	}
	return strings.Join(parts, "\n")
}

// ExtractHTMLText strips markup from an HTML file, dropping script and style
// content.
func ExtractHTMLText(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open html file: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	text := strings.TrimSpace(doc.Find("body").Text())
	if text == "" {
		text = strings.TrimSpace(doc.Text())
	}
	if text == "" {
		return "", fmt.Errorf("no text extracted from html")
	}

	// Collapse runs of blank lines left behind by removed elements.
	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}

	return strings.Join(kept, "\n"), nil
}

// ExtractXLSXText reads every sheet of a workbook, one tab-joined line per
// row.
func ExtractXLSXText(filePath string) (string, error) {
	wb, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	var sb strings.Builder
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			logger.Warn("Failed to read sheet", "sheet", sheet, "error", err)
			continue
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line != "" {
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text extracted from workbook")
	}

	return text, nil
}

// ExtractPlainText reads a plain-text file as-is.
func ExtractPlainText(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	return string(content), nil
}
