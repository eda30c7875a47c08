// Package db provides optional PostgreSQL storage for evaluation run records.
// The filesystem artifact store is the source of truth; the database is a
// queryable index over runs, and the pipeline degrades to filesystem-only
// when no DATABASE_URL is configured.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EvaluationRun is one recorded evaluation of a resume against a frozen
// requirements document.
type EvaluationRun struct {
	ID               uuid.UUID  `json:"id"`
	RunID            string     `json:"run_id"`
	RoleID           string     `json:"role_id"`
	JDHash           string     `json:"jd_hash"`
	ResumeHash       string     `json:"resume_hash"`
	RequirementsHash string     `json:"requirements_hash"`
	CandidateName    string     `json:"candidate_name"`
	OverallScore     float64    `json:"overall_score"`
	MustHaveCoverage float64    `json:"must_have_coverage"`
	ModelID          string     `json:"model_id"`
	EvidencePath     string     `json:"evidence_path"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// EvaluationRunInput holds the fields recorded for a new evaluation run.
type EvaluationRunInput struct {
	RunID            string
	RoleID           string
	JDHash           string
	ResumeHash       string
	RequirementsHash string
	CandidateName    string
	OverallScore     float64
	MustHaveCoverage float64
	ModelID          string
	EvidencePath     string
}

// RecordEvaluation inserts an evaluation run record and returns its ID
func (db *DB) RecordEvaluation(ctx context.Context, input *EvaluationRunInput) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO evaluation_runs
		   (run_id, role_id, jd_hash, resume_hash, requirements_hash, candidate_name,
		    overall_score, must_have_coverage, model_id, evidence_path, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		 RETURNING id`,
		input.RunID, input.RoleID, input.JDHash, input.ResumeHash, input.RequirementsHash,
		input.CandidateName, input.OverallScore, input.MustHaveCoverage, input.ModelID,
		input.EvidencePath,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record evaluation: %w", err)
	}
	return id, nil
}

// GetEvaluation retrieves an evaluation run by its short run ID
func (db *DB) GetEvaluation(ctx context.Context, runID string) (*EvaluationRun, error) {
	var run EvaluationRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, run_id, role_id, jd_hash, resume_hash, requirements_hash, candidate_name,
		        overall_score, must_have_coverage, model_id, evidence_path, created_at, completed_at
		 FROM evaluation_runs WHERE run_id = $1`,
		runID,
	).Scan(&run.ID, &run.RunID, &run.RoleID, &run.JDHash, &run.ResumeHash, &run.RequirementsHash,
		&run.CandidateName, &run.OverallScore, &run.MustHaveCoverage, &run.ModelID,
		&run.EvidencePath, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return &run, nil
}

// ListEvaluations retrieves recent evaluation runs, optionally filtered by JD hash
func (db *DB) ListEvaluations(ctx context.Context, jdHash string, limit int) ([]EvaluationRun, error) {
	if limit == 0 {
		limit = 50
	}

	query := `SELECT id, run_id, role_id, jd_hash, resume_hash, requirements_hash, candidate_name,
	                 overall_score, must_have_coverage, model_id, evidence_path, created_at, completed_at
	          FROM evaluation_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if jdHash != "" {
		query += fmt.Sprintf(" AND jd_hash = $%d", argNum)
		args = append(args, jdHash)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var runs []EvaluationRun
	for rows.Next() {
		var run EvaluationRun
		if err := rows.Scan(&run.ID, &run.RunID, &run.RoleID, &run.JDHash, &run.ResumeHash,
			&run.RequirementsHash, &run.CandidateName, &run.OverallScore, &run.MustHaveCoverage,
			&run.ModelID, &run.EvidencePath, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
