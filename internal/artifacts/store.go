// Package artifacts persists the pipeline's frozen documents. Requirements
// are written once per (role, JD) and loaded read-only forever after;
// evidence maps are append-only audit records. Loads never regenerate: a
// missing requirements artifact is a distinguished error, not a trigger for
// re-extraction.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jonathan/gap-analyzer/internal/schemas"
	"github.com/jonathan/gap-analyzer/internal/types"
)

var unsafeRoleChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Store reads and writes pipeline artifacts under a single directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating it if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the artifact directory
func (s *Store) Dir() string {
	return s.dir
}

// requirementsFilename renders job_requirements.<role_id>.<jd_hash>.v1.json
// with unsafe role characters replaced.
func requirementsFilename(roleID, jdHash string) string {
	safeRole := unsafeRoleChars.ReplaceAllString(roleID, "_")
	return fmt.Sprintf("job_requirements.%s.%s.v1.json", safeRole, jdHash)
}

// SaveRequirements validates and writes a frozen requirements document.
// The write is atomic (temp file + rename) so a crash never leaves a
// half-written artifact that a later load would trust.
func (s *Store) SaveRequirements(doc *types.RequirementsDoc) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal requirements: %w", err)
	}
	if err := schemas.ValidateRequirementsDoc(data); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, requirementsFilename(doc.RoleID, doc.JDHash))
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// LoadRequirements loads a frozen requirements document by role and JD hash.
// Returns MissingArtifactError when it was never built.
func (s *Store) LoadRequirements(roleID, jdHash string) (*types.RequirementsDoc, error) {
	path := filepath.Join(s.dir, requirementsFilename(roleID, jdHash))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &MissingArtifactError{JDHash: jdHash, Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements artifact: %w", err)
	}

	var doc types.RequirementsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse requirements artifact %s: %w", path, err)
	}
	return &doc, nil
}

// LoadRequirementsByJDHash loads a frozen requirements document by JD hash
// alone, the primary lookup for evaluation requests that carry only the JD
// text. Returns MissingArtifactError when no artifact matches.
func (s *Store) LoadRequirementsByJDHash(jdHash string) (*types.RequirementsDoc, string, error) {
	pattern := filepath.Join(s.dir, fmt.Sprintf("*.%s.v1.json", jdHash))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan artifacts directory: %w", err)
	}
	if len(matches) == 0 {
		return nil, "", &MissingArtifactError{JDHash: jdHash}
	}

	path := matches[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read requirements artifact: %w", err)
	}

	var doc types.RequirementsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("failed to parse requirements artifact %s: %w", path, err)
	}
	return &doc, path, nil
}

// HasRequirementsForJDHash reports whether a frozen artifact already exists
// for the JD hash. Builds use this for idempotency.
func (s *Store) HasRequirementsForJDHash(jdHash string) (bool, error) {
	pattern := filepath.Join(s.dir, fmt.Sprintf("*.%s.v1.json", jdHash))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return false, fmt.Errorf("failed to scan artifacts directory: %w", err)
	}
	return len(matches) > 0, nil
}

// SaveEvidence validates and writes an evidence map audit artifact. The
// caller is expected to strip in-memory metadata first (WithoutMeta).
// Filename: evidence_<jd16>_<res16>_<runid>.json.
func (s *Store) SaveEvidence(em *types.EvidenceMap) (string, error) {
	data, err := json.MarshalIndent(em, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal evidence map: %w", err)
	}
	if err := schemas.ValidateEvidenceMap(data); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("evidence_%s_%s_%s.json",
		truncate(em.JDHash, 16), truncate(em.ResumeHash, 16), em.RunID)
	path := filepath.Join(s.dir, filename)
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// LoadEvidence loads an evidence map from an artifact path.
func (s *Store) LoadEvidence(path string) (*types.EvidenceMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence artifact: %w", err)
	}
	var em types.EvidenceMap
	if err := json.Unmarshal(data, &em); err != nil {
		return nil, fmt.Errorf("failed to parse evidence artifact %s: %w", path, err)
	}
	return &em, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}
	return nil
}
