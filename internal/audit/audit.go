// Package audit writes the append-only JSONL audit trail for pipeline
// operations and model performance. Audit records are provenance for humans;
// nothing in the pipeline ever reads them back as input.
package audit

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/gap-analyzer/internal/types"
)

// Logger appends structured audit entries to a JSONL file.
type Logger struct {
	log *zap.Logger
}

// New creates an audit logger writing JSONL to path, creating parent
// directories as needed.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	cfg := zap.Config{
		Encoding:         "json",
		Level:            zap.NewAtomicLevelAt(zapcore.InfoLevel),
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "action",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "timestamp",
			EncodeTime: zapcore.RFC3339TimeEncoder,
		},
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit logger: %w", err)
	}

	return &Logger{log: log}, nil
}

// Nop returns a logger that discards everything, for callers that run
// without an audit trail.
func Nop() *Logger {
	return &Logger{log: zap.NewNop()}
}

// Close flushes buffered entries.
func (l *Logger) Close() {
	_ = l.log.Sync()
}

// Event records a generic pipeline action with its outcome.
func (l *Logger) Event(action, status string, fields ...zap.Field) {
	l.log.Info(action, append([]zap.Field{zap.String("status", status)}, fields...)...)
}

// Error records a failed pipeline action.
func (l *Logger) Error(action string, err error, fields ...zap.Field) {
	l.log.Info(action, append([]zap.Field{
		zap.String("status", "error"),
		zap.String("error", err.Error()),
	}, fields...)...)
}

// ModelCall records the provenance of one generation call.
func (l *Logger) ModelCall(action string, ca *types.CallAudit, fields ...zap.Field) {
	l.log.Info(action, append([]zap.Field{
		zap.String("status", "ok"),
		zap.String("prompt_version", ca.PromptVersion),
		zap.String("prompt_hash", ca.PromptHash),
		zap.String("model_id", ca.ModelID),
		zap.Float64("temperature", ca.ModelParams.Temperature),
		zap.Float64("top_p", ca.ModelParams.TopP),
	}, fields...)...)
}

// Evaluation records the performance summary of one completed evaluation:
// what was scored, against what frozen inputs, and why it scored that way.
func (l *Logger) Evaluation(em *types.EvidenceMap, score *types.ScoreResult, gapReport []types.GapEntry, requirementsHash, artifactPath string) {
	numMatches, numMissing, numGaps := 0, 0, 0
	for _, g := range gapReport {
		switch g.Status {
		case types.StatusMatch:
			numMatches++
		case types.StatusMissing:
			numMissing++
		case types.StatusGap:
			numGaps++
		}
	}

	fields := []zap.Field{
		zap.String("status", "ok"),
		zap.String("run_id", em.RunID),
		zap.String("role_id", em.RoleID),
		zap.String("jd_hash", em.JDHash),
		zap.String("resume_hash", em.ResumeHash),
		zap.String("requirements_version", em.RequirementsVersion),
		zap.String("requirements_hash", requirementsHash),
		zap.String("requirements_artifact_path", artifactPath),
		zap.String("prompt_version", em.PromptVersion),
		zap.String("model_id", em.ModelID),
		zap.String("candidate_name", em.CandidateName),
		zap.Float64("overall_score", score.OverallScore),
		zap.Float64("must_have_coverage", score.MustHaveCoverage),
		zap.Int("num_requirements", score.TotalRequirements),
		zap.Int("num_matches", numMatches),
		zap.Int("num_missing", numMissing),
		zap.Int("num_gaps", numGaps),
	}
	if em.Meta != nil {
		fields = append(fields,
			zap.Int("matched_count_raw", em.Meta.MatchedCountRaw),
			zap.Int("matched_count_validated", em.Meta.MatchedCountValidated),
			zap.Int("invalid_quote_count", em.Meta.InvalidQuoteCount),
		)
	}

	l.log.Info("evaluate", fields...)
}
