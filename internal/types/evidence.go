package types

// EvidenceItem is one proof-passage for a requirement. Quote must be a
// verbatim (whitespace-normalized) substring of the resume; the quote
// validator enforces this after matching.
type EvidenceItem struct {
	Quote           string   `json:"quote"`
	ResumeSection   string   `json:"resume_section,omitempty"`
	YearsExperience *float64 `json:"years_experience,omitempty"`
}

// Match is the per-requirement verdict from the evidence matcher.
// Matched=true requires at least one evidence item with a non-empty quote;
// the quote validator demotes violations and the scoring engine treats any
// that slip through as a hard error.
type Match struct {
	RequirementID  string         `json:"requirement_id"`
	RequirementKey string         `json:"requirement_key,omitempty"`
	Matched        bool           `json:"matched"`
	Evidence       []EvidenceItem `json:"evidence"`
	Notes          string         `json:"notes"`
	InvalidQuote   bool           `json:"invalid_quote"`
}

// HasQuote reports whether the match carries at least one non-empty quote.
func (m Match) HasQuote() bool {
	for _, e := range m.Evidence {
		if e.Quote != "" {
			return true
		}
	}
	return false
}

// ValidationStats records aggregate quote-validation results for one
// evidence map, for audit and scoring metadata.
type ValidationStats struct {
	MatchedCountRaw       int `json:"matched_count_raw"`
	MatchedCountValidated int `json:"matched_count_validated"`
	InvalidQuoteCount     int `json:"invalid_quote_count"`
}

// EvidenceMap is the output of one evaluation run. It is created fresh per
// run, validated immediately after matching, persisted as an audit artifact
// (without Meta), and never reloaded for re-scoring.
type EvidenceMap struct {
	RoleID              string           `json:"role_id"`
	JDHash              string           `json:"jd_hash"`
	ResumeHash          string           `json:"resume_hash"`
	RequirementsVersion string           `json:"requirements_version"`
	PromptVersion       string           `json:"prompt_version"`
	ModelID             string           `json:"model_id"`
	RunID               string           `json:"run_id"`
	CandidateName       string           `json:"candidate_name,omitempty"`
	Matches             []Match          `json:"matches"`
	Meta                *ValidationStats `json:"meta,omitempty"`
}

// MatchesByID returns an index of matches keyed by requirement ID.
func (em *EvidenceMap) MatchesByID() map[string]Match {
	idx := make(map[string]Match, len(em.Matches))
	for _, m := range em.Matches {
		idx[m.RequirementID] = m
	}
	return idx
}

// WithoutMeta returns a copy suitable for persistence: the validation stats
// travel with the in-memory map only, the saved artifact is the canonical
// match list.
func (em *EvidenceMap) WithoutMeta() EvidenceMap {
	clean := *em
	clean.Meta = nil
	return clean
}

// ModelParams are the generation parameters stamped into audit metadata.
type ModelParams struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// CallAudit is the out-of-band audit record for one generation call. It is
// deliberately kept outside the canonical artifacts: provenance for humans,
// never an input to scoring.
type CallAudit struct {
	PromptVersion string      `json:"prompt_version"`
	PromptHash    string      `json:"prompt_hash"`
	ModelID       string      `json:"model_id"`
	ModelParams   ModelParams `json:"model_params"`
}
