// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/gap-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRequirementsDoc outputs a human-readable summary of a frozen
// requirements document.
func (p *Printer) PrintRequirementsDoc(doc *types.RequirementsDoc) {
	if doc == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Role:     %s\n", doc.RoleTitle))
	sb.WriteString(fmt.Sprintf("Role ID:  %s\n", doc.RoleID))
	sb.WriteString(fmt.Sprintf("JD hash:  %s...\n", doc.JDHash[:min(len(doc.JDHash), 16)]))
	sb.WriteString("\n")

	mustHaves := make([]types.Requirement, 0, len(doc.Requirements))
	niceToHaves := make([]types.Requirement, 0, len(doc.Requirements))
	for _, r := range doc.Requirements {
		if r.MustHave {
			mustHaves = append(mustHaves, r)
		} else {
			niceToHaves = append(niceToHaves, r)
		}
	}

	if len(mustHaves) > 0 {
		sb.WriteString("Must-haves:\n")
		count := min(len(mustHaves), maxItemsToShow)
		for i := 0; i < count; i++ {
			r := mustHaves[i]
			sb.WriteString(fmt.Sprintf("  • %s [%s, w%d]\n", r.Name, r.Category, r.Weight))
		}
		if len(mustHaves) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(mustHaves)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(niceToHaves) > 0 {
		sb.WriteString("Nice-to-haves:\n")
		count := min(len(niceToHaves), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", niceToHaves[i].Name))
		}
		if len(niceToHaves) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(niceToHaves)-3))
		}
	}

	p.printBox("FROZEN REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScore outputs the score breakdown with per-category coverage.
func (p *Printer) PrintScore(score *types.ScoreResult) {
	if score == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall:        %.1f%%  (%d/%d matched)\n",
		score.OverallScore, score.TotalMatched, score.TotalRequirements))
	sb.WriteString(fmt.Sprintf("Must-haves:     %.1f%%  (%d/%d)\n",
		score.MustHaveCoverage, score.MustHaveMatched, score.MustHaveTotal))
	sb.WriteString(fmt.Sprintf("Nice-to-haves:  %.1f%%  (%d/%d)\n",
		score.NiceToHaveCoverage, score.NiceToHaveMatched, score.NiceToHaveTotal))

	if len(score.PerCategory) > 0 {
		sb.WriteString("\nBy category:\n")
		for _, c := range score.PerCategory {
			sb.WriteString(fmt.Sprintf("  %-14s %5.1f%%  (%d/%d)\n", c.Category, c.Pct, c.Matched, c.Total))
		}
	}

	p.printBox("MATCH SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGapReport outputs the per-requirement verdicts, missing must-haves
// first so the reader sees the blockers before the wins.
func (p *Printer) PrintGapReport(report []types.GapEntry) {
	if len(report) == 0 {
		return
	}

	missing := filterByStatus(report, types.StatusMissing)
	gaps := filterByStatus(report, types.StatusGap)
	matched := filterByStatus(report, types.StatusMatch)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d matched, %d missing must-haves, %d gaps\n",
		len(matched), len(missing), len(gaps)))

	if len(missing) > 0 {
		sb.WriteString("\nMissing must-haves:\n")
		count := min(len(missing), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", missing[i].Name))
		}
		if len(missing) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(missing)-maxItemsToShow))
		}
	}

	if len(matched) > 0 {
		sb.WriteString("\nMatched:\n")
		count := min(len(matched), maxItemsToShow)
		for i := 0; i < count; i++ {
			evidence := matched[i].Evidence
			if len(evidence) > 40 {
				evidence = evidence[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("  ✓ %s\n", matched[i].Name))
			sb.WriteString(fmt.Sprintf("    \"%s\"\n", evidence))
		}
		if len(matched) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(matched)-maxItemsToShow))
		}
	}

	p.printBox("GAP REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidationStats outputs the quote-validation outcome for a run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidationStats(stats *types.ValidationStats) {
	if stats == nil {
		return
	}
	if stats.InvalidQuoteCount == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL QUOTES VERIFIED VERBATIM")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Raw matches:        %d\n", stats.MatchedCountRaw))
	sb.WriteString(fmt.Sprintf("Survived check:     %d\n", stats.MatchedCountValidated))
	sb.WriteString(fmt.Sprintf("⚠ Invalid quotes:   %d (demoted to unmatched)", stats.InvalidQuoteCount))

	p.printBox("QUOTE VALIDATION", sb.String())
}

func filterByStatus(report []types.GapEntry, status string) []types.GapEntry {
	var out []types.GapEntry
	for _, e := range report {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}
