// Package types defines the shared data structures for the requirements pipeline.
package types

import "encoding/json"

// RawRequirement is one requirement entry as returned by the generation model,
// before normalization. Fields the model is known to return with inconsistent
// JSON types (importance as string or bool, weight as any number) are kept as
// raw messages and interpreted by the normalizer; nothing downstream of
// normalization ever sees this type.
type RawRequirement struct {
	Name           string          `json:"name"`
	RequirementKey string          `json:"requirement_key,omitempty"`
	Category       string          `json:"category,omitempty"`
	Description    string          `json:"description,omitempty"`
	Importance     json.RawMessage `json:"importance,omitempty"`
	MustHave       json.RawMessage `json:"must_have,omitempty"`
	Weight         json.RawMessage `json:"weight,omitempty"`
	Aliases        []string        `json:"aliases,omitempty"`
}

// Requirement is one canonical skill/qualification extracted from a JD.
// Immutable once the containing RequirementsDoc has been persisted.
type Requirement struct {
	ID             string   `json:"id"`
	RequirementKey string   `json:"requirement_key"`
	Category       string   `json:"category"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	MustHave       bool     `json:"must_have"`
	Weight         int      `json:"weight"`
	Aliases        []string `json:"aliases"`
}

// RequirementsDoc is the frozen unit of work for one JD. Once saved by the
// artifact store it is read-only ground truth for every evaluation against
// that JD; re-extraction produces a new document, never an edit in place.
type RequirementsDoc struct {
	RoleID              string        `json:"role_id"`
	JDHash              string        `json:"jd_hash"`
	RequirementsVersion string        `json:"requirements_version"`
	CreatedAt           string        `json:"created_at"`
	RoleTitle           string        `json:"role_title"`
	Requirements        []Requirement `json:"requirements"`
}

// ByID returns an index of requirements keyed by stable ID.
func (d *RequirementsDoc) ByID() map[string]Requirement {
	idx := make(map[string]Requirement, len(d.Requirements))
	for _, r := range d.Requirements {
		idx[r.ID] = r
	}
	return idx
}

// ByKey returns an index of requirements keyed by requirement_key.
func (d *RequirementsDoc) ByKey() map[string]Requirement {
	idx := make(map[string]Requirement, len(d.Requirements))
	for _, r := range d.Requirements {
		idx[r.RequirementKey] = r
	}
	return idx
}
