package scoring

import "fmt"

// EvidenceRequiredError reports a matched requirement with no evidence quote.
// It is always a bug upstream (the quote validator should have demoted it),
// so scoring refuses to produce a number rather than silently counting an
// unproven claim.
type EvidenceRequiredError struct {
	RequirementID string
}

func (e *EvidenceRequiredError) Error() string {
	return fmt.Sprintf("requirement %s has matched=true but no evidence quote", e.RequirementID)
}
