// Package pipeline orchestrates the frozen-requirements evaluation flow:
// build requirements once, evaluate resumes against the frozen artifact many
// times. The two generation calls live at the edges; everything between them
// is deterministic.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/gap-analyzer/internal/artifacts"
	"github.com/jonathan/gap-analyzer/internal/audit"
	"github.com/jonathan/gap-analyzer/internal/config"
	"github.com/jonathan/gap-analyzer/internal/db"
	"github.com/jonathan/gap-analyzer/internal/extraction"
	"github.com/jonathan/gap-analyzer/internal/hashing"
	"github.com/jonathan/gap-analyzer/internal/llm"
	"github.com/jonathan/gap-analyzer/internal/matching"
	"github.com/jonathan/gap-analyzer/internal/schemas"
	"github.com/jonathan/gap-analyzer/internal/scoring"
	"github.com/jonathan/gap-analyzer/internal/types"
)

// maxConcurrentEvaluations bounds batch evaluation fan-out so one batch
// cannot exhaust provider rate limits.
const maxConcurrentEvaluations = 4

// Pipeline wires the stages together with their injected dependencies.
// Database is optional; a nil DB degrades to filesystem-only persistence.
type Pipeline struct {
	cfg      config.Config
	client   llm.Client
	store    *artifacts.Store
	database *db.DB
	audit    *audit.Logger
}

// New creates a Pipeline. auditLog may be audit.Nop(); database may be nil.
func New(cfg config.Config, client llm.Client, store *artifacts.Store, database *db.DB, auditLog *audit.Logger) *Pipeline {
	if auditLog == nil {
		auditLog = audit.Nop()
	}
	return &Pipeline{
		cfg:      cfg,
		client:   client,
		store:    store,
		database: database,
		audit:    auditLog,
	}
}

// BuildResult is the outcome of the requirements build stage.
type BuildResult struct {
	Doc          *types.RequirementsDoc `json:"requirements_doc"`
	ArtifactPath string                 `json:"artifact_path"`
	JDHash       string                 `json:"jd_hash"`
	Reused       bool                   `json:"reused"`
}

// BuildRequirements extracts, normalizes and freezes the requirements for a
// JD. The operation is idempotent per JD hash: when an artifact for this
// exact JD text already exists it is returned as-is instead of re-extracted,
// unless force is set.
func (p *Pipeline) BuildRequirements(ctx context.Context, jdText, roleID string, force bool) (*BuildResult, error) {
	jdHash := hashing.Text(jdText)

	if !force {
		doc, path, err := p.store.LoadRequirementsByJDHash(jdHash)
		if err == nil {
			p.audit.Event("build_requirements", "reused",
				zap.String("jd_hash", jdHash),
				zap.String("artifact_path", path))
			return &BuildResult{Doc: doc, ArtifactPath: path, JDHash: jdHash, Reused: true}, nil
		}
		// Only a genuinely absent artifact triggers extraction. A present but
		// unreadable one is surfaced, never silently overwritten.
		var missing *artifacts.MissingArtifactError
		if !errors.As(err, &missing) {
			p.audit.Error("build_requirements", err, zap.String("jd_hash", jdHash))
			return nil, fmt.Errorf("failed to load requirements artifact: %w", err)
		}
	}

	extractor := extraction.NewExtractor(p.client, p.cfg.ExtractionModel).
		WithJaccardThreshold(p.cfg.JaccardThreshold)

	doc, callAudit, err := extractor.Extract(ctx, jdText, roleID)
	if err != nil {
		p.audit.Error("build_requirements", err, zap.String("jd_hash", jdHash))
		return nil, fmt.Errorf("requirements extraction failed: %w", err)
	}
	p.audit.ModelCall("extract_requirements", callAudit, zap.String("jd_hash", jdHash))

	path, err := p.store.SaveRequirements(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to freeze requirements: %w", err)
	}

	p.audit.Event("build_requirements", "ok",
		zap.String("jd_hash", jdHash),
		zap.String("role_id", doc.RoleID),
		zap.Int("num_requirements", len(doc.Requirements)),
		zap.String("artifact_path", path))

	return &BuildResult{Doc: doc, ArtifactPath: path, JDHash: jdHash, Reused: false}, nil
}

// EvaluationResult is the full outcome of one resume evaluation, including
// the provenance fields that let a reader reproduce the run.
type EvaluationResult struct {
	ModelID        string               `json:"model_id"`
	JDAnalysis     types.JDAnalysis     `json:"jd_analysis"`
	ResumeAnalysis types.ResumeAnalysis `json:"resume_analysis"`
	GapReport      []types.GapEntry     `json:"gap_report"`
	MatchScore     int                  `json:"match_score"`
	Score          *types.ScoreResult   `json:"score"`

	JDHash                   string `json:"jd_hash"`
	ResumeHash               string `json:"resume_hash"`
	RequirementsVersion      string `json:"requirements_version"`
	RequirementsSource       string `json:"requirements_source"`
	RequirementsArtifactPath string `json:"requirements_artifact_path"`
	RequirementsHash         string `json:"requirements_hash"`
	NumRequirements          int    `json:"num_requirements"`

	PromptVersion string            `json:"prompt_version"`
	PromptHash    string            `json:"prompt_hash"`
	ModelParams   types.ModelParams `json:"model_params"`

	MatchedCount          int    `json:"matched_count"`
	MatchedCountRaw       int    `json:"matched_count_raw"`
	MatchedCountValidated int    `json:"matched_count_validated"`
	InvalidQuoteCount     int    `json:"invalid_quote_count"`
	RunID                 string `json:"run_id"`
	EvidencePath          string `json:"evidence_path"`
}

// Evaluate runs one resume against the frozen requirements for the JD.
// There is no fallback: a missing requirements artifact surfaces as
// artifacts.MissingArtifactError and the caller decides what to do about it.
func (p *Pipeline) Evaluate(ctx context.Context, jdText, resumeText string) (*EvaluationResult, error) {
	jdHash := hashing.Text(jdText)

	doc, artifactPath, err := p.store.LoadRequirementsByJDHash(jdHash)
	if err != nil {
		p.audit.Error("evaluate", err, zap.String("jd_hash", jdHash))
		return nil, err
	}

	matcher := matching.NewMatcher(p.client, p.cfg.MatchingModel).
		WithMinQuoteLength(p.cfg.MinQuoteLength)

	em, callAudit, err := matcher.Match(ctx, resumeText, doc)
	if err != nil {
		p.audit.Error("evaluate", err, zap.String("jd_hash", jdHash))
		return nil, fmt.Errorf("evidence matching failed: %w", err)
	}
	p.audit.ModelCall("match_evidence", callAudit,
		zap.String("jd_hash", jdHash),
		zap.String("run_id", em.RunID))

	// Persist the audit artifact without in-memory validation stats.
	clean := em.WithoutMeta()
	cleanJSON, err := json.Marshal(&clean)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize evidence map: %w", err)
	}
	if err := schemas.ValidateEvidenceMap(cleanJSON); err != nil {
		return nil, fmt.Errorf("evidence map failed schema validation: %w", err)
	}
	evidencePath, err := p.store.SaveEvidence(&clean)
	if err != nil {
		return nil, fmt.Errorf("failed to save evidence artifact: %w", err)
	}

	score, err := scoring.Score(doc, em, resumeText)
	if err != nil {
		p.audit.Error("evaluate", err, zap.String("run_id", em.RunID))
		return nil, fmt.Errorf("scoring failed: %w", err)
	}

	gapReport := GapReport(doc, em)
	reqHash := RequirementsHash(doc)

	result := &EvaluationResult{
		ModelID:        em.ModelID,
		JDAnalysis:     JDAnalysis(doc),
		ResumeAnalysis: ResumeAnalysis(doc, em),
		GapReport:      gapReport,
		MatchScore:     int(math.Round(score.OverallScore)),
		Score:          score,

		JDHash:                   jdHash,
		ResumeHash:               em.ResumeHash,
		RequirementsVersion:      doc.RequirementsVersion,
		RequirementsSource:       "artifact",
		RequirementsArtifactPath: artifactPath,
		RequirementsHash:         reqHash,
		NumRequirements:          len(doc.Requirements),

		PromptVersion: callAudit.PromptVersion,
		PromptHash:    callAudit.PromptHash,
		ModelParams:   callAudit.ModelParams,

		MatchedCount: score.TotalMatched,
		RunID:        em.RunID,
		EvidencePath: evidencePath,
	}
	if em.Meta != nil {
		result.MatchedCountRaw = em.Meta.MatchedCountRaw
		result.MatchedCountValidated = em.Meta.MatchedCountValidated
		result.InvalidQuoteCount = em.Meta.InvalidQuoteCount
	}

	p.audit.Evaluation(em, score, gapReport, reqHash, artifactPath)
	p.recordEvaluation(ctx, em, score, reqHash, evidencePath)

	return result, nil
}

// recordEvaluation writes the run to the database when one is configured.
// Failures are logged and swallowed: the artifact store already holds the
// canonical record.
func (p *Pipeline) recordEvaluation(ctx context.Context, em *types.EvidenceMap, score *types.ScoreResult, reqHash, evidencePath string) {
	if p.database == nil {
		return
	}
	_, err := p.database.RecordEvaluation(ctx, &db.EvaluationRunInput{
		RunID:            em.RunID,
		RoleID:           em.RoleID,
		JDHash:           em.JDHash,
		ResumeHash:       em.ResumeHash,
		RequirementsHash: reqHash,
		CandidateName:    em.CandidateName,
		OverallScore:     score.OverallScore,
		MustHaveCoverage: score.MustHaveCoverage,
		ModelID:          em.ModelID,
		EvidencePath:     evidencePath,
	})
	if err != nil {
		p.audit.Error("record_evaluation", err, zap.String("run_id", em.RunID))
	}
}

// EvaluateBatch evaluates several resumes against the same JD concurrently.
// Results keep input order; the first error cancels the remaining work.
func (p *Pipeline) EvaluateBatch(ctx context.Context, jdText string, resumeTexts []string) ([]*EvaluationResult, error) {
	// Fail fast on a missing artifact instead of once per resume.
	jdHash := hashing.Text(jdText)
	if _, _, err := p.store.LoadRequirementsByJDHash(jdHash); err != nil {
		return nil, err
	}

	results := make([]*EvaluationResult, len(resumeTexts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEvaluations)

	for i, resumeText := range resumeTexts {
		g.Go(func() error {
			res, err := p.Evaluate(gctx, jdText, resumeText)
			if err != nil {
				return fmt.Errorf("resume %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ValidateArtifact checks an existing artifact file against its schema.
// kind selects the schema: "requirements" or "evidence".
func ValidateArtifact(kind string, data []byte) error {
	switch kind {
	case "requirements":
		return schemas.ValidateRequirementsDoc(data)
	case "evidence":
		return schemas.ValidateEvidenceMap(data)
	default:
		return fmt.Errorf("unknown artifact kind %q", kind)
	}
}

// Close releases the pipeline's resources.
func (p *Pipeline) Close() {
	if p.client != nil {
		_ = p.client.Close()
	}
	if p.database != nil {
		p.database.Close()
	}
	p.audit.Close()
}
