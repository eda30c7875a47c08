package types

// Gap report statuses. MATCH means evidence was found; MISSING marks an
// unmet must-have, GAP an unmet nice-to-have.
const (
	StatusMatch   = "MATCH"
	StatusMissing = "MISSING"
	StatusGap     = "GAP"
)

// Importance labels used in UI-facing report rows.
const (
	ImportanceMustHave   = "Must-have"
	ImportanceNiceToHave = "Nice-to-have"
)

// GapEntry is one row of the per-requirement gap report.
type GapEntry struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Importance  string `json:"importance"`
	Status      string `json:"status"`
	Evidence    string `json:"evidence"`
}

// ResumeSignal is one matched requirement projected back onto the resume:
// the requirement plus the verbatim quote that satisfied it.
type ResumeSignal struct {
	Category        string   `json:"category"`
	Name            string   `json:"name"`
	Evidence        string   `json:"evidence"`
	YearsExperience *float64 `json:"years_experience,omitempty"`
}

// JDRequirementSummary is the UI-facing view of one requirement.
type JDRequirementSummary struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Importance  string `json:"importance"`
	Description string `json:"description"`
}

// JDAnalysis summarizes the frozen requirements for presentation.
type JDAnalysis struct {
	RoleTitle    string                 `json:"role_title"`
	Requirements []JDRequirementSummary `json:"requirements"`
}

// ResumeAnalysis summarizes what the evaluation found in the resume.
type ResumeAnalysis struct {
	CandidateName string         `json:"candidate_name"`
	Signals       []ResumeSignal `json:"signals"`
}
