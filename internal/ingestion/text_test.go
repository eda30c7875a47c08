package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty", "", ""},
		{"CRLF normalized", "line one\r\nline two", "line one\nline two"},
		{"Spaces collapsed", "too    many   spaces", "too many spaces"},
		{"Trailing whitespace stripped", "line  \t\nnext", "line\nnext"},
		{"Blank line runs collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"Heading preserved", "  ## Requirements", "## Requirements"},
		{"Bullet indentation preserved", "  - Python\n  - Go", "  - Python\n  - Go"},
		{"Surrounding whitespace trimmed", "\n\n content \n\n", "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestCleanTextDeterministic(t *testing.T) {
	input := "Senior   Engineer\r\n\r\n\r\n- Python\n-   Kubernetes  "
	first := CleanText(input)
	assert.Equal(t, first, CleanText(input))
	assert.Equal(t, first, CleanText(first), "cleaning is idempotent")
}

func TestIngestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jd.txt")
	require.NoError(t, os.WriteFile(path, []byte("Senior  Engineer\r\nMust have   Python"), 0o644))

	text, err := IngestFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer\nMust have Python", text)
}

func TestIngestFromFileMissing(t *testing.T) {
	_, err := IngestFromFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestIngestFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<nav>Menu</nav>
			<main>Senior Backend Engineer.
			Must have Python and Kubernetes.</main>
		</body></html>`))
	}))
	defer server.Close()

	text, err := IngestFromURL(context.Background(), server.URL, false)
	require.NoError(t, err)
	assert.Contains(t, text, "Senior Backend Engineer")
	assert.Contains(t, text, "Python and Kubernetes")
	assert.NotContains(t, text, "Menu")
}

func TestIngestFromURLRequestFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := IngestFromURL(context.Background(), server.URL, false)
	require.ErrorIs(t, err, ErrHTTPRequestFailed)
}

func TestIngestFromPDFMissingFile(t *testing.T) {
	_, err := IngestFromPDF(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
}
