package llm

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterClient implements Client against the OpenRouter chat completions
// API. Useful for running the pipeline against non-Gemini models without
// touching the callers.
type OpenRouterClient struct {
	apiKey string
	http   *resty.Client
}

// NewOpenRouterClient creates a new OpenRouter client
func NewOpenRouterClient(apiKey string) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey: apiKey,
		http:   resty.New(),
	}
}

// GenerateJSON generates a JSON response for the prompt using the named model
func (c *OpenRouterClient) GenerateJSON(ctx context.Context, prompt string, model string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("API key is required")
	}
	if model == "" {
		return "", fmt.Errorf("no model configured")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"model":           model,
			"temperature":     Temperature,
			"top_p":           TopP,
			"response_format": map[string]string{"type": "json_object"},
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}).
		Post(openRouterEndpoint)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode(), resp.String())
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("no content in response")
	}

	return CleanJSONBlock(text), nil
}

// Close releases resources held by the client
func (c *OpenRouterClient) Close() error {
	return nil
}
