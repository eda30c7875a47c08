package ingestion

import (
	"context"
	"fmt"

	"github.com/jonathan/gap-analyzer/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the HTTP request fails
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = fmt.Errorf("content extraction failed")
)

// IngestFromURL fetches a job posting URL, extracts the main text and cleans
// it. If useBrowser is true and the HTTP fetch yields too little text, the
// page is re-rendered in a headless browser before extraction; browser
// failures fall back to the HTTP content rather than failing the ingest.
func IngestFromURL(ctx context.Context, urlStr string, useBrowser bool) (string, error) {
	result, err := fetch.URL(ctx, urlStr)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	textContent, err := fetch.ExtractMainText(result.HTML, fetch.JobPostingSelectors())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if useBrowser && fetch.ShouldUseBrowser(textContent) {
		browserHTML, browserErr := fetch.BrowserSimple(ctx, urlStr)
		if browserErr == nil {
			if browserText, extractErr := fetch.ExtractMainText(browserHTML, fetch.JobPostingSelectors()); extractErr == nil {
				textContent = browserText
			}
		}
	}

	return CleanText(textContent), nil
}
