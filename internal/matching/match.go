// Package matching implements the evidence-matching stage: one generation
// call that maps a resume against a frozen requirements document, followed by
// hard quote validation. The stage produces claims with verbatim proof; it
// never computes scores.
package matching

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jonathan/gap-analyzer/internal/hashing"
	"github.com/jonathan/gap-analyzer/internal/llm"
	"github.com/jonathan/gap-analyzer/internal/prompts"
	"github.com/jonathan/gap-analyzer/internal/types"
)

// Matcher runs the matching stage against an injected model client.
type Matcher struct {
	client      llm.Client
	model       string
	minQuoteLen int
}

// NewMatcher creates a Matcher for the given client and model
func NewMatcher(client llm.Client, model string) *Matcher {
	return &Matcher{
		client:      client,
		model:       model,
		minQuoteLen: DefaultMinQuoteLength,
	}
}

// WithMinQuoteLength overrides the minimum accepted quote length
func (m *Matcher) WithMinQuoteLength(n int) *Matcher {
	m.minQuoteLen = n
	return m
}

// promptRequirement is the projection of a requirement sent to the model.
// Descriptions are deliberately excluded: they are JD-derived text, and
// including them invites the model to echo the JD back as "evidence".
type promptRequirement struct {
	ID             string   `json:"id"`
	RequirementKey string   `json:"requirement_key"`
	Name           string   `json:"name"`
	Aliases        []string `json:"aliases"`
}

// rawMatch is the per-requirement shape the matching prompt asks for.
// Confidence is accepted but dropped: matched is authoritative, and a
// floating confidence would leak nondeterminism into artifacts.
type rawMatch struct {
	RequirementID  string               `json:"requirement_id"`
	RequirementKey string               `json:"requirement_key"`
	Matched        bool                 `json:"matched"`
	Evidence       []types.EvidenceItem `json:"evidence"`
	Notes          string               `json:"notes"`
}

type matchResponse struct {
	CandidateName string     `json:"candidate_name"`
	Matches       []rawMatch `json:"matches"`
}

// Match runs the evidence-matching call and returns a validated evidence map
// plus its audit record. The map's Meta carries the quote-validation stats;
// callers strip it before persistence. Transport failures and malformed JSON
// both get exactly one retry.
func (m *Matcher) Match(ctx context.Context, resumeText string, doc *types.RequirementsDoc) (*types.EvidenceMap, *types.CallAudit, error) {
	reqsForPrompt := make([]promptRequirement, 0, len(doc.Requirements))
	for _, r := range doc.Requirements {
		aliases := r.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		reqsForPrompt = append(reqsForPrompt, promptRequirement{
			ID:             r.ID,
			RequirementKey: r.RequirementKey,
			Name:           r.Name,
			Aliases:        aliases,
		})
	}
	reqsJSON, err := json.Marshal(reqsForPrompt)
	if err != nil {
		return nil, nil, &ParseError{Message: "marshaling requirements for prompt", Cause: err}
	}

	template := prompts.MustGet("pipeline.json", "match_evidence")
	prompt := prompts.Format(template, map[string]string{
		"RequirementsJSON": string(reqsJSON),
		"ResumeText":       resumeText,
	})
	promptHash := hashing.Text(prompt)

	resp, err := llm.Attempt(ctx, func(ctx context.Context) (*matchResponse, error) {
		raw, err := m.client.GenerateJSON(ctx, prompt, m.model)
		if err != nil {
			return nil, &APICallError{Message: "evidence matching", Cause: err}
		}
		var parsed matchResponse
		if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &parsed); err != nil {
			return nil, &ParseError{Message: "invalid JSON from model", Cause: err}
		}
		return &parsed, nil
	})
	if err != nil {
		return nil, nil, err
	}

	matches := reconcile(resp.Matches, doc)
	validated, stats := ValidateQuotes(resumeText, matches, m.minQuoteLen)

	em := &types.EvidenceMap{
		RoleID:              doc.RoleID,
		JDHash:              doc.JDHash,
		ResumeHash:          hashing.Text(resumeText),
		RequirementsVersion: doc.RequirementsVersion,
		PromptVersion:       prompts.MatchVersion,
		ModelID:             m.model,
		RunID:               uuid.New().String()[:8],
		CandidateName:       resp.CandidateName,
		Matches:             validated,
		Meta:                &stats,
	}

	audit := &types.CallAudit{
		PromptVersion: prompts.MatchVersion,
		PromptHash:    promptHash,
		ModelID:       m.model,
		ModelParams:   types.ModelParams{Temperature: llm.Temperature, TopP: llm.TopP},
	}

	return em, audit, nil
}

// reconcile maps model output back onto the frozen requirement set: by ID
// first, by requirement_key as fallback. Entries referencing neither pass
// through unmodified so audit artifacts keep a record of what the model
// actually said; scoring ignores unknown IDs.
func reconcile(raw []rawMatch, doc *types.RequirementsDoc) []types.Match {
	byID := doc.ByID()
	byKey := doc.ByKey()

	out := make([]types.Match, 0, len(raw))
	for _, rm := range raw {
		evidence := rm.Evidence
		if evidence == nil {
			evidence = []types.EvidenceItem{}
		}

		req, ok := byID[rm.RequirementID]
		if !ok {
			req, ok = byKey[rm.RequirementKey]
		}
		if ok {
			out = append(out, types.Match{
				RequirementID:  req.ID,
				RequirementKey: req.RequirementKey,
				Matched:        rm.Matched,
				Evidence:       evidence,
				Notes:          rm.Notes,
			})
			continue
		}
		out = append(out, types.Match{
			RequirementID:  rm.RequirementID,
			RequirementKey: rm.RequirementKey,
			Matched:        rm.Matched,
			Evidence:       evidence,
			Notes:          rm.Notes,
		})
	}
	return out
}
