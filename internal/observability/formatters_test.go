package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/gap-analyzer/internal/types"
)

func TestPrintRequirementsDoc(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	doc := &types.RequirementsDoc{
		RoleID:    "role_abc123def456",
		JDHash:    "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		RoleTitle: "Senior Backend Engineer",
		Requirements: []types.Requirement{
			{ID: "REQ-0000000001", Name: "Python", Category: "Technical", MustHave: true, Weight: 5},
			{ID: "REQ-0000000002", Name: "Kubernetes", Category: "Infrastructure", MustHave: false, Weight: 3},
		},
	}

	p.PrintRequirementsDoc(doc)
	output := buf.String()

	assert.Contains(t, output, "FROZEN REQUIREMENTS")
	assert.Contains(t, output, "Senior Backend Engineer")
	assert.Contains(t, output, "role_abc123def456")
	assert.Contains(t, output, "Python")
	assert.Contains(t, output, "Kubernetes")
	assert.Contains(t, output, "Must-haves:")
	assert.Contains(t, output, "Nice-to-haves:")
}

func TestPrintRequirementsDoc_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRequirementsDoc(nil)

	assert.Empty(t, buf.String())
}

func TestPrintScore(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	score := &types.ScoreResult{
		OverallScore:       66.7,
		TotalRequirements:  3,
		TotalMatched:       2,
		MustHaveCoverage:   100.0,
		MustHaveMatched:    1,
		MustHaveTotal:      1,
		NiceToHaveCoverage: 50.0,
		NiceToHaveMatched:  1,
		NiceToHaveTotal:    2,
		PerCategory: []types.CategoryScore{
			{Category: "Technical", Matched: 2, Total: 2, Pct: 100.0},
			{Category: "Infrastructure", Matched: 0, Total: 1, Pct: 0.0},
		},
	}

	p.PrintScore(score)
	output := buf.String()

	assert.Contains(t, output, "MATCH SCORE")
	assert.Contains(t, output, "66.7%")
	assert.Contains(t, output, "2/3 matched")
	assert.Contains(t, output, "Technical")
	assert.Contains(t, output, "Infrastructure")
}

func TestPrintGapReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := []types.GapEntry{
		{Name: "Python", Status: types.StatusMatch, Evidence: "Built Python services for five years."},
		{Name: "Terraform", Status: types.StatusMissing, Evidence: "No evidence found."},
		{Name: "Kubernetes", Status: types.StatusGap, Evidence: "No evidence found."},
	}

	p.PrintGapReport(report)
	output := buf.String()

	assert.Contains(t, output, "GAP REPORT")
	assert.Contains(t, output, "1 matched, 1 missing must-haves, 1 gaps")
	assert.Contains(t, output, "✗ Terraform")
	assert.Contains(t, output, "✓ Python")
	assert.NotContains(t, output, "✗ Kubernetes", "gaps are summarized, not listed as blockers")
}

func TestPrintGapReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintGapReport(nil)

	assert.Empty(t, buf.String())
}

func TestPrintValidationStats_Clean(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidationStats(&types.ValidationStats{
		MatchedCountRaw:       3,
		MatchedCountValidated: 3,
	})

	assert.Contains(t, buf.String(), "ALL QUOTES VERIFIED VERBATIM")
}

func TestPrintValidationStats_Demotions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidationStats(&types.ValidationStats{
		MatchedCountRaw:       3,
		MatchedCountValidated: 1,
		InvalidQuoteCount:     2,
	})
	output := buf.String()

	assert.Contains(t, output, "QUOTE VALIDATION")
	assert.Contains(t, output, "2 (demoted to unmatched)")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	doc := &types.RequirementsDoc{
		RoleID:    "role_with_an_extremely_long_identifier_for_truncation",
		JDHash:    strings.Repeat("a", 64),
		RoleTitle: "Senior Staff Principal Distinguished Engineer Level 99",
	}

	p.PrintRequirementsDoc(doc)
	output := buf.String()

	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "│"))
}
