package ingestion

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// minPDFTextLength guards against scanned-image PDFs that yield a handful of
// stray characters instead of real text.
const minPDFTextLength = 100

// IngestFromPDF extracts text from a PDF resume and returns cleaned text.
// Fails when the document carries no usable text layer.
func IngestFromPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", n+1, err)
		}
		pageText = strings.TrimSpace(pageText)
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n\n")
		}
	}

	result := CleanText(sb.String())
	if result == "" {
		return "", fmt.Errorf("no text extracted from PDF (document may be scanned images)")
	}
	if len(result) < minPDFTextLength {
		return "", fmt.Errorf("extracted text too short for meaningful evaluation")
	}
	return result, nil
}
