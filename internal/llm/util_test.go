package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain JSON untouched", `{"a": 1}`, `{"a": 1}`},
		{"JSON code fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Generic code fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Language identifier skipped", "```javascript\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Surrounding whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
		{"Fence with trailing prose kept out", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestAttemptSucceedsFirstTry(t *testing.T) {
	calls := 0
	out, err := Attempt(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, calls)
}

func TestAttemptRetriesOnce(t *testing.T) {
	calls := 0
	out, err := Attempt(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, calls)
}

func TestAttemptExhaustsAndReturnsLastError(t *testing.T) {
	calls := 0
	_, err := Attempt(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("persistent")
	})
	require.Error(t, err)
	assert.EqualError(t, err, "persistent")
	assert.Equal(t, MaxAttempts, calls)
}

func TestAttemptStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Attempt(ctx, func(ctx context.Context) (int, error) {
		calls++
		return 0, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}
