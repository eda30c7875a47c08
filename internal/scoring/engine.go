// Package scoring implements the deterministic scoring stage. Pure code, no
// generation calls: identical frozen requirements and evidence maps always
// produce identical results, byte for byte.
package scoring

import (
	"math"

	"github.com/jonathan/gap-analyzer/internal/matching"
	"github.com/jonathan/gap-analyzer/internal/types"
)

// ValidateEvidenceMap enforces the evidence invariant before any arithmetic:
// every matched requirement must carry at least one non-empty quote. When
// resumeText is non-empty the quotes are re-validated against it first, as a
// safety net for evidence maps that arrive without having gone through the
// matcher. Returns the (possibly demoted) matches to score.
func ValidateEvidenceMap(em *types.EvidenceMap, resumeText string) ([]types.Match, error) {
	matches := em.Matches
	if resumeText != "" {
		matches, _ = matching.ValidateQuotes(resumeText, matches, matching.DefaultMinQuoteLength)
	}

	for _, m := range matches {
		if m.Matched && !m.HasQuote() {
			return nil, &EvidenceRequiredError{RequirementID: m.RequirementID}
		}
	}
	return matches, nil
}

// Score computes coverage from a frozen requirements document and an
// evidence map. Empty partitions score 100 vacuously (no must-haves means no
// must-have gaps); an empty requirement set scores 0 overall because there is
// nothing to claim coverage of. Categories appear in first-appearance order
// of the requirement list, which is itself deterministic, so serialized
// results are stable.
func Score(doc *types.RequirementsDoc, em *types.EvidenceMap, resumeText string) (*types.ScoreResult, error) {
	matches, err := ValidateEvidenceMap(em, resumeText)
	if err != nil {
		return nil, err
	}

	matchedByID := make(map[string]bool, len(matches))
	for _, m := range matches {
		if m.Matched {
			matchedByID[m.RequirementID] = true
		}
	}

	res := &types.ScoreResult{
		TotalRequirements: len(doc.Requirements),
	}

	type bucket struct {
		matched int
		total   int
	}
	categories := make(map[string]*bucket)
	var order []string

	for _, r := range doc.Requirements {
		matched := matchedByID[r.ID]
		if matched {
			res.TotalMatched++
		}
		if r.MustHave {
			res.MustHaveTotal++
			if matched {
				res.MustHaveMatched++
			}
		} else {
			res.NiceToHaveTotal++
			if matched {
				res.NiceToHaveMatched++
			}
		}

		b, ok := categories[r.Category]
		if !ok {
			b = &bucket{}
			categories[r.Category] = b
			order = append(order, r.Category)
		}
		b.total++
		if matched {
			b.matched++
		}
	}

	res.MustHaveCoverage = coverage(res.MustHaveMatched, res.MustHaveTotal)
	res.NiceToHaveCoverage = coverage(res.NiceToHaveMatched, res.NiceToHaveTotal)

	res.PerCategory = make([]types.CategoryScore, 0, len(order))
	for _, cat := range order {
		b := categories[cat]
		res.PerCategory = append(res.PerCategory, types.CategoryScore{
			Category: cat,
			Matched:  b.matched,
			Total:    b.total,
			Pct:      round1(float64(b.matched) / float64(b.total) * 100),
		})
	}

	if res.TotalRequirements > 0 {
		res.OverallScore = round1(float64(res.TotalMatched) / float64(res.TotalRequirements) * 100)
	}

	return res, nil
}

// coverage returns matched/total as a percentage rounded to one decimal.
// An empty partition is vacuously fully covered.
func coverage(matched, total int) float64 {
	if total == 0 {
		return 100.0
	}
	return round1(float64(matched) / float64(total) * 100)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
