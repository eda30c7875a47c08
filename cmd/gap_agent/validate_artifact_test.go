package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRequirementsArtifact = `{
	"role_id": "role_abc123def456",
	"jd_hash": "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
	"requirements_version": "2.0.0",
	"created_at": "2026-08-30T12:00:00Z",
	"role_title": "Senior Backend Engineer",
	"requirements": [
		{
			"id": "REQ-0123456789",
			"requirement_key": "python",
			"category": "Technical",
			"name": "Python",
			"description": "",
			"must_have": true,
			"weight": 5,
			"aliases": []
		}
	]
}`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resetKindFlag(t *testing.T) {
	t.Helper()
	prev := artifactKind
	t.Cleanup(func() { artifactKind = prev })
	artifactKind = ""
}

func TestValidateArtifact_ValidRequirements(t *testing.T) {
	resetKindFlag(t)
	path := writeArtifact(t, "job_requirements.role_x.abc.v1.json", validRequirementsArtifact)

	err := runValidateArtifact(nil, []string{path})
	assert.NoError(t, err)
}

func TestValidateArtifact_KindInferredFromEvidenceName(t *testing.T) {
	resetKindFlag(t)
	// Valid requirements doc, but the filename says evidence: the evidence
	// schema must reject it.
	path := writeArtifact(t, "evidence_abc_def_12345678.json", validRequirementsArtifact)

	err := runValidateArtifact(nil, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestValidateArtifact_InvalidDocument(t *testing.T) {
	resetKindFlag(t)
	broken := strings.Replace(validRequirementsArtifact, `"weight": 5`, `"weight": 9`, 1)
	path := writeArtifact(t, "job_requirements.role_x.abc.v1.json", broken)

	err := runValidateArtifact(nil, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestValidateArtifact_UnknownKind(t *testing.T) {
	resetKindFlag(t)
	path := writeArtifact(t, "something_else.json", "{}")

	err := runValidateArtifact(nil, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot infer artifact kind")
}

func TestValidateArtifact_ExplicitKind(t *testing.T) {
	resetKindFlag(t)
	artifactKind = "requirements"
	path := writeArtifact(t, "renamed.json", validRequirementsArtifact)

	err := runValidateArtifact(nil, []string{path})
	assert.NoError(t, err)
}

func TestValidateArtifact_MissingFile(t *testing.T) {
	resetKindFlag(t)

	err := runValidateArtifact(nil, []string{filepath.Join(t.TempDir(), "job_requirements.missing.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read artifact")
}
