package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Empty string",
			input:    "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "Known digest",
			input:    "hello",
			expected: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Text(tt.input))
		})
	}
}

func TestTextDeterministic(t *testing.T) {
	jd := "Senior Engineer\n- Python\n- Kubernetes"
	first := Text(jd)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Text(jd))
	}
	assert.Len(t, first, 64)

	// No normalization: whitespace differences change the digest.
	assert.NotEqual(t, first, Text(jd+" "))
}

func TestShortText(t *testing.T) {
	assert.Len(t, ShortText("resume", 12), 12)
	assert.Equal(t, Text("resume")[:16], ShortText("resume", 16))
	assert.Equal(t, Text("resume"), ShortText("resume", 100))
}
