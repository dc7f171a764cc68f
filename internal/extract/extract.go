// ABOUTME: Upload validation and plain-text extraction for supported formats
// ABOUTME: UTF-8 text, markdown, and PDF; all violations fail before any network call
package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/harper/docchat/internal/errs"
)

// MaxUploadBytes is the default upload size cap (10 MiB).
const MaxUploadBytes = 10 << 20

// Extensions on the allow-list. Anything else is rejected before extraction.
var textExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
}

// Text validates an upload and extracts its plain text. Plain text and
// markdown must decode as UTF-8; PDFs are extracted page by page with pages
// joined by blank lines. maxBytes <= 0 uses MaxUploadBytes.
func Text(fileName string, data []byte, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}
	if len(data) == 0 {
		return "", errs.Validation("uploaded file is empty")
	}
	if int64(len(data)) > maxBytes {
		return "", errs.Validation("file exceeds maximum size of %d bytes", maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case ext == ".pdf":
		return fromPDF(data)
	case textExtensions[ext]:
		return fromText(data)
	default:
		return "", errs.Validation("unsupported file type %q: expected .txt, .md or .pdf", ext)
	}
}

func fromText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errs.Validation("file must be UTF-8 encoded text")
	}
	return string(data), nil
}

// fromPDF extracts text with ledongthuc/pdf, which reads from a file path,
// so the upload is spooled to a temp file first.
func fromPDF(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "docchat-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("failed to spool pdf: %w", err)
	}

	f, reader, err := pdf.Open(tmp.Name())
	if err != nil {
		return "", errs.Validation("failed to process PDF file: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not lose the rest of the
			// document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(text)
	}

	extracted := buf.String()
	if strings.TrimSpace(extracted) == "" {
		return "", errs.Validation("PDF contains no extractable text (it may be a scanned document that requires OCR)")
	}
	if !utf8.ValidString(extracted) {
		return "", errs.Validation("PDF text is not valid UTF-8")
	}
	return extracted, nil
}
