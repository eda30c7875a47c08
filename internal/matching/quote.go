package matching

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/gap-analyzer/internal/types"
)

// DefaultMinQuoteLength is the shortest (whitespace-normalized) quote
// accepted as evidence, counted in runes. Shorter fragments match almost any
// resume and prove nothing.
const DefaultMinQuoteLength = 12

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses all whitespace runs to single spaces and
// strips the ends. Quote comparison happens in this normalized space so line
// wrapping and indentation differences never invalidate a verbatim quote.
func NormalizeWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ValidateQuotes enforces the verbatim-evidence rule: every quote on a
// matched requirement must be a substring of the resume after whitespace
// normalization, and at least minLen long. A match carrying any invalid quote
// is demoted: matched=false, evidence cleared, invalid_quote=true. Matches
// that were already false, and matched entries with no quotes at all, pass
// through untouched with invalid_quote=false.
//
// The input slice is not mutated; the validated copy and aggregate stats are
// returned.
func ValidateQuotes(resumeText string, matches []types.Match, minLen int) ([]types.Match, types.ValidationStats) {
	if minLen <= 0 {
		minLen = DefaultMinQuoteLength
	}
	resumeNorm := NormalizeWhitespace(resumeText)

	stats := types.ValidationStats{}
	out := make([]types.Match, len(matches))

	for i, m := range matches {
		if m.Matched {
			stats.MatchedCountRaw++
		}

		validated := m
		validated.Evidence = append([]types.EvidenceItem(nil), m.Evidence...)
		validated.InvalidQuote = false

		if m.Matched && m.HasQuote() {
			for _, e := range m.Evidence {
				if e.Quote == "" {
					continue
				}
				qn := NormalizeWhitespace(e.Quote)
				// Length is measured in runes, not bytes, so multi-byte
				// scripts do not inflate short fragments past the threshold.
				if utf8.RuneCountInString(qn) < minLen || !strings.Contains(resumeNorm, qn) {
					validated.Matched = false
					validated.Evidence = []types.EvidenceItem{}
					validated.InvalidQuote = true
					stats.InvalidQuoteCount++
					break
				}
			}
		}

		if validated.Matched {
			stats.MatchedCountValidated++
		}
		out[i] = validated
	}

	return out, stats
}
