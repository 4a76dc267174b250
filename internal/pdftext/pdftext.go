// Package pdftext reads the text layer of uploaded résumé documents.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
)

// Media types accepted by Reader.
const (
	MediaPDF  = "application/pdf"
	MediaText = "text/plain"
)

var pdfMagic = []byte("%PDF-")

// Sniff returns MediaPDF when data starts with the PDF magic prefix and
// MediaText when it is valid UTF-8. Anything else yields "".
func Sniff(data []byte) string {
	trimmed := bytes.TrimLeft(data, "\xef\xbb\xbf \t\r\n")
	if bytes.HasPrefix(trimmed, pdfMagic) {
		return MediaPDF
	}
	if utf8.Valid(data) {
		return MediaText
	}
	return ""
}

// Reader extracts plain text from PDF or text documents.
type Reader struct {
	// MaxPages bounds how many pages are read. Zero reads all pages.
	MaxPages int
}

// NewReader creates a reader limited to maxPages pages.
func NewReader(maxPages int) *Reader {
	return &Reader{MaxPages: maxPages}
}

// Text returns the document text. PDF pages are read in order and joined
// with a blank line; plain text passes through unchanged.
func (r *Reader) Text(data []byte) (string, error) {
	switch Sniff(data) {
	case MediaPDF:
		return r.pdfText(data)
	case MediaText:
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported document: neither PDF nor UTF-8 text")
	}
}

func (r *Reader) pdfText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = doc.Close() }()

	pageCount := doc.NumPage()
	if r.MaxPages > 0 && pageCount > r.MaxPages {
		pageCount = r.MaxPages
	}

	pages := make([]string, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("failed to read text of page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimRight(text, " \t\r\n"))
	}

	return strings.Join(pages, "\n\n"), nil
}
