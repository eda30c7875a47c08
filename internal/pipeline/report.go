package pipeline

import (
	"encoding/json"

	"github.com/jonathan/gap-analyzer/internal/hashing"
	"github.com/jonathan/gap-analyzer/internal/types"
)

// noEvidenceText is what UI rows show when a requirement has no quote.
const noEvidenceText = "No evidence found."

// GapReport projects the evidence map onto the frozen requirement list, one
// row per requirement in document order: MATCH when evidence was found,
// MISSING for an unmet must-have, GAP for an unmet nice-to-have.
func GapReport(doc *types.RequirementsDoc, em *types.EvidenceMap) []types.GapEntry {
	matchByID := em.MatchesByID()

	report := make([]types.GapEntry, 0, len(doc.Requirements))
	for _, r := range doc.Requirements {
		m := matchByID[r.ID]

		evidence := noEvidenceText
		if len(m.Evidence) > 0 && m.Evidence[0].Quote != "" {
			evidence = m.Evidence[0].Quote
		}

		status := types.StatusGap
		if m.Matched {
			status = types.StatusMatch
		} else if r.MustHave {
			status = types.StatusMissing
		}

		report = append(report, types.GapEntry{
			ID:          r.ID,
			Category:    r.Category,
			Name:        r.Name,
			Description: r.Description,
			Importance:  importanceLabel(r.MustHave),
			Status:      status,
			Evidence:    evidence,
		})
	}
	return report
}

// JDAnalysis summarizes the frozen requirements for presentation.
func JDAnalysis(doc *types.RequirementsDoc) types.JDAnalysis {
	reqs := make([]types.JDRequirementSummary, 0, len(doc.Requirements))
	for _, r := range doc.Requirements {
		reqs = append(reqs, types.JDRequirementSummary{
			Category:    r.Category,
			Name:        r.Name,
			Importance:  importanceLabel(r.MustHave),
			Description: r.Description,
		})
	}
	return types.JDAnalysis{
		RoleTitle:    doc.RoleTitle,
		Requirements: reqs,
	}
}

// ResumeAnalysis derives resume signals from matched requirements: each
// matched requirement projected back onto the resume with its first quote.
func ResumeAnalysis(doc *types.RequirementsDoc, em *types.EvidenceMap) types.ResumeAnalysis {
	reqByID := doc.ByID()

	var signals []types.ResumeSignal
	for _, m := range em.Matches {
		if !m.Matched || len(m.Evidence) == 0 {
			continue
		}
		req, ok := reqByID[m.RequirementID]
		if !ok {
			continue
		}
		ev := m.Evidence[0]
		signals = append(signals, types.ResumeSignal{
			Category:        req.Category,
			Name:            req.Name,
			Evidence:        ev.Quote,
			YearsExperience: ev.YearsExperience,
		})
	}
	return types.ResumeAnalysis{
		CandidateName: em.CandidateName,
		Signals:       signals,
	}
}

// RequirementsHash fingerprints the frozen document so every result can
// state exactly which requirements it was scored against. Field order in the
// serialized form is fixed by the struct definition, so the hash is stable
// for a given document.
func RequirementsHash(doc *types.RequirementsDoc) string {
	b, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return hashing.Text(string(b))
}

func importanceLabel(mustHave bool) string {
	if mustHave {
		return types.ImportanceMustHave
	}
	return types.ImportanceNiceToHave
}
