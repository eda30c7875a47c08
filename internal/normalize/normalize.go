// Package normalize canonicalizes raw extracted requirements: category
// resolution, key slugging, near-duplicate merging, stable IDs and
// deterministic ordering. This stage never fails; malformed input degrades
// to defaults because everything upstream originates from an unreliable
// generation model.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/gap-analyzer/internal/types"
)

// DefaultJaccardThreshold is the token-set similarity above which two
// requirements are considered the same skill and merged.
const DefaultJaccardThreshold = 0.8

// DefaultWeight is assigned when the model omits weight or returns one
// outside the 1-5 range.
const DefaultWeight = 3

// CategoryPrecedence is the fixed category order. It is both the tie-break
// for keyword-based category resolution (earlier wins) and the secondary
// sort key of the normalized output.
var CategoryPrecedence = []string{
	"AI",
	"Systems",
	"Infrastructure",
	"Technical",
	"Domain",
	"Collaboration",
	"Behavioral",
}

// categoryKeywords maps each category to the substrings that claim a
// free-text requirement for it. Hand-maintained; a requirement whose text
// matches no table silently defaults to Technical. That default is a policy
// choice, not an error path.
var categoryKeywords = map[string][]string{
	"AI":             {"llm", "genai", "machine learning", "ml", "model", "inference", "prompt", "evaluation", "retrieval", "nlp"},
	"Systems":        {"distributed", "scalability", "reliability", "services", "architecture", "microservices"},
	"Infrastructure": {"k8s", "kubernetes", "terraform", "ci/cd", "observability", "monitoring", "docker", "aws", "gcp"},
	"Technical":      {"typescript", "python", "node", "react", "sql", "api", "fastapi", "django", "postgresql"},
	"Domain":         {"healthcare", "fintech", "gov", "compliance", "mental health", "patient"},
	"Collaboration":  {"cross-functional", "stakeholders", "clinicians", "product", "designers"},
	"Behavioral":     {"ownership", "leadership", "mentoring", "communication", "mentorship"},
}

var (
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
	alnumToken  = regexp.MustCompile(`[a-z0-9]+`)
)

// Slugify lowercases, trims, collapses non-alphanumeric runs to single
// underscores and strips leading/trailing underscores. An empty result
// becomes the literal token "unknown".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonAlnumRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unknown"
	}
	return s
}

// MapCategory resolves a raw category to one of the fixed categories. A raw
// value that is already canonical passes through; otherwise the combined
// name+description text is scored against the keyword tables in precedence
// order and the first category with any hit wins. Default: Technical.
func MapCategory(category, name, description string) string {
	cat := strings.TrimSpace(category)
	for _, c := range CategoryPrecedence {
		if cat == c {
			return cat
		}
	}
	combined := strings.ToLower(name + " " + description)
	for _, c := range CategoryPrecedence {
		for _, kw := range categoryKeywords[c] {
			if strings.Contains(combined, kw) {
				return c
			}
		}
	}
	return "Technical"
}

// StableID derives the content-addressed requirement ID. It is a pure
// function of (requirement_key, category, must_have): semantically identical
// requirements get identical IDs across runs and processes, so evidence maps
// from different runs can reference the same requirement safely.
func StableID(requirementKey, category string, mustHave bool) string {
	payload := requirementKey + "|" + category + "|" + strconv.FormatBool(mustHave)
	sum := sha256.Sum256([]byte(payload))
	return "REQ-" + hex.EncodeToString(sum[:])[:10]
}

// TokenSet returns the set of lowercase alphanumeric runs in text.
func TokenSet(text string) map[string]struct{} {
	tokens := alnumToken.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Jaccard computes the Jaccard similarity of two token sets. Empty sets
// yield 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Requirements normalizes raw extracted requirements with the default merge
// threshold.
func Requirements(raw []types.RawRequirement) []types.Requirement {
	return RequirementsWithThreshold(raw, DefaultJaccardThreshold)
}

// RequirementsWithThreshold normalizes raw extracted requirements:
//
//  1. drop entries with empty names
//  2. compute requirement_key (explicit key, else slugged name)
//  3. resolve category, must_have, weight, aliases
//  4. merge near-duplicates (same key, or Jaccard >= threshold)
//  5. assign stable IDs
//  6. sort must_have desc, category precedence asc, requirement_key asc
//
// The output order is part of the contract: the same input multiset yields
// the same sequence regardless of input order.
// The result is never nil, even for empty input, so the document serializes
// with "requirements": [] and passes the artifact schema. A zero-requirement
// document is in-contract: scoring defines it (overall score 0).
func RequirementsWithThreshold(raw []types.RawRequirement, threshold float64) []types.Requirement {
	enriched := make([]types.Requirement, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		key := r.RequirementKey
		if strings.TrimSpace(key) != "" {
			key = Slugify(key)
		} else {
			key = Slugify(name)
		}
		enriched = append(enriched, types.Requirement{
			Name:           name,
			RequirementKey: key,
			Category:       MapCategory(r.Category, name, r.Description),
			Description:    strings.TrimSpace(r.Description),
			MustHave:       resolveMustHave(r),
			Weight:         resolveWeight(r.Weight),
			Aliases:        dedupStrings(r.Aliases),
		})
	}

	merged := mergeNearDuplicates(enriched, threshold)

	for i := range merged {
		merged[i].ID = StableID(merged[i].RequirementKey, merged[i].Category, merged[i].MustHave)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.MustHave != b.MustHave {
			return a.MustHave
		}
		pa, pb := precedenceIndex(a.Category), precedenceIndex(b.Category)
		if pa != pb {
			return pa < pb
		}
		return a.RequirementKey < b.RequirementKey
	})

	return merged
}

// mergeNearDuplicates folds entries into accumulated groups in input order.
// An entry joins a group when its key matches exactly or the token-set
// Jaccard similarity of name+description reaches the threshold. On merge the
// longer name wins (first encountered on ties), aliases are unioned and
// must_have flags are ORed.
func mergeNearDuplicates(entries []types.Requirement, threshold float64) []types.Requirement {
	merged := make([]types.Requirement, 0, len(entries))

	for _, curr := range entries {
		currTokens := unionTokens(curr.Name, curr.Description)

		found := false
		for i := range merged {
			m := &merged[i]
			if curr.RequirementKey == m.RequirementKey ||
				Jaccard(currTokens, unionTokens(m.Name, m.Description)) >= threshold {
				if len(curr.Name) > len(m.Name) {
					m.Name = curr.Name
				}
				m.Aliases = dedupStrings(append(m.Aliases, curr.Aliases...))
				m.MustHave = m.MustHave || curr.MustHave
				found = true
				break
			}
		}
		if !found {
			cp := curr
			cp.Aliases = append([]string(nil), curr.Aliases...)
			merged = append(merged, cp)
		}
	}

	return merged
}

func unionTokens(name, description string) map[string]struct{} {
	set := TokenSet(name)
	for t := range TokenSet(description) {
		set[t] = struct{}{}
	}
	return set
}

func precedenceIndex(category string) int {
	for i, c := range CategoryPrecedence {
		if c == category {
			return i
		}
	}
	return len(CategoryPrecedence)
}

// resolveMustHave interprets the flexible importance/must_have fields.
// Strings are truthy when they mention "must" or "required"; booleans pass
// through; numbers are truthy when non-zero. importance wins over must_have;
// with neither present the requirement defaults to must-have.
func resolveMustHave(r types.RawRequirement) bool {
	if len(r.Importance) > 0 {
		return truthy(r.Importance)
	}
	if len(r.MustHave) > 0 {
		return truthy(r.MustHave)
	}
	return true
}

func truthy(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		lower := strings.ToLower(s)
		return strings.Contains(lower, "must") || strings.Contains(lower, "required")
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f != 0
	}
	return false
}

// resolveWeight clamps weight to the inclusive 1-5 range. Missing,
// non-integer or out-of-range values all fall back to the default.
func resolveWeight(raw json.RawMessage) int {
	if len(raw) == 0 {
		return DefaultWeight
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return DefaultWeight
	}
	if f != math.Trunc(f) || f < 1 || f > 5 {
		return DefaultWeight
	}
	return int(f)
}

// dedupStrings removes duplicates preserving first-seen order. The result is
// never nil so aliases serialize as an array, as the artifact schema expects.
func dedupStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
