// Package extraction implements the requirements-extraction stage: one
// generation call against the job description, normalized into a frozen
// requirements document. The document is the pipeline's contract; everything
// downstream consumes it by stable ID and never re-derives it.
package extraction

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonathan/gap-analyzer/internal/hashing"
	"github.com/jonathan/gap-analyzer/internal/llm"
	"github.com/jonathan/gap-analyzer/internal/normalize"
	"github.com/jonathan/gap-analyzer/internal/prompts"
	"github.com/jonathan/gap-analyzer/internal/types"
)

// RequirementsVersion identifies the requirements document format.
const RequirementsVersion = "2.0.0"

// Extractor runs the extraction stage against an injected model client.
type Extractor struct {
	client           llm.Client
	model            string
	jaccardThreshold float64
}

// NewExtractor creates an Extractor for the given client and model
func NewExtractor(client llm.Client, model string) *Extractor {
	return &Extractor{
		client:           client,
		model:            model,
		jaccardThreshold: normalize.DefaultJaccardThreshold,
	}
}

// WithJaccardThreshold overrides the near-duplicate merge threshold
func (e *Extractor) WithJaccardThreshold(threshold float64) *Extractor {
	e.jaccardThreshold = threshold
	return e
}

// extractResponse is the shape the extraction prompt asks the model for.
type extractResponse struct {
	RoleTitle    string                 `json:"role_title"`
	Requirements []types.RawRequirement `json:"requirements"`
}

// Extract runs the extraction call and returns the normalized requirements
// document plus its audit record. roleID may be empty, in which case a
// deterministic default is derived from the JD hash. The call is attempted
// twice: transport failures and malformed JSON both get exactly one retry
// before surfacing as typed errors.
func (e *Extractor) Extract(ctx context.Context, jdText, roleID string) (*types.RequirementsDoc, *types.CallAudit, error) {
	template := prompts.MustGet("pipeline.json", "extract_requirements")
	prompt := prompts.Format(template, map[string]string{"JDText": jdText})
	promptHash := hashing.Text(prompt)

	resp, err := llm.Attempt(ctx, func(ctx context.Context) (*extractResponse, error) {
		raw, err := e.client.GenerateJSON(ctx, prompt, e.model)
		if err != nil {
			return nil, &APICallError{Message: "requirements extraction", Cause: err}
		}
		var parsed extractResponse
		if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &parsed); err != nil {
			return nil, &ParseError{Message: "invalid JSON from model", Cause: err}
		}
		return &parsed, nil
	})
	if err != nil {
		return nil, nil, err
	}

	jdHash := hashing.Text(jdText)
	if roleID == "" {
		roleID = "role_" + hashing.ShortText(jdText, 12)
	}

	doc := &types.RequirementsDoc{
		RoleID:              roleID,
		JDHash:              jdHash,
		RequirementsVersion: RequirementsVersion,
		CreatedAt:           time.Now().UTC().Format(time.RFC3339),
		RoleTitle:           resp.RoleTitle,
		Requirements:        normalize.RequirementsWithThreshold(resp.Requirements, e.jaccardThreshold),
	}

	audit := &types.CallAudit{
		PromptVersion: prompts.ExtractVersion,
		PromptHash:    promptHash,
		ModelID:       e.model,
		ModelParams:   types.ModelParams{Temperature: llm.Temperature, TopP: llm.TopP},
	}

	return doc, audit, nil
}
