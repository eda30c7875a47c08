package types

// CategoryScore is the per-category coverage breakdown. Categories appear in
// first-appearance order of the frozen requirement list, so serialization is
// stable across runs.
type CategoryScore struct {
	Category string  `json:"category"`
	Matched  int     `json:"matched"`
	Total    int     `json:"total"`
	Pct      float64 `json:"pct"`
}

// ScoreResult is the pure output of the scoring engine for one frozen
// requirements document and one validated evidence map. It has no persisted
// identity; identical inputs always produce an identical value.
type ScoreResult struct {
	MustHaveCoverage   float64         `json:"must_have_coverage"`
	NiceToHaveCoverage float64         `json:"nice_to_have_coverage"`
	MustHaveMatched    int             `json:"must_have_matched"`
	MustHaveTotal      int             `json:"must_have_total"`
	NiceToHaveMatched  int             `json:"nice_to_have_matched"`
	NiceToHaveTotal    int             `json:"nice_to_have_total"`
	PerCategory        []CategoryScore `json:"per_category_scores"`
	OverallScore       float64         `json:"overall_score"`
	TotalMatched       int             `json:"total_matched"`
	TotalRequirements  int             `json:"total_requirements"`
}
