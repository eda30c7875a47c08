package db

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the local DB for integration testing.
// Skipped if DATABASE_URL is not set or connection fails.
func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	return db
}

func TestEvaluationRunType(t *testing.T) {
	run := EvaluationRun{
		RunID:        "deadbeef",
		RoleID:       "role_abc",
		OverallScore: 75.0,
	}

	assert.Equal(t, "deadbeef", run.RunID)
	assert.Equal(t, 75.0, run.OverallScore)
	assert.Nil(t, run.CompletedAt)
}

func TestRecordAndGetEvaluation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	input := &EvaluationRunInput{
		RunID:            "test" + time.Now().Format("150405"),
		RoleID:           "role_test",
		JDHash:           strings.Repeat("a", 64),
		ResumeHash:       strings.Repeat("b", 64),
		RequirementsHash: strings.Repeat("c", 64),
		CandidateName:    "Test Candidate",
		OverallScore:     66.7,
		MustHaveCoverage: 50.0,
		ModelID:          "test-model",
		EvidencePath:     "/tmp/evidence.json",
	}

	id, err := db.RecordEvaluation(ctx, input)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	run, err := db.GetEvaluation(ctx, input.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, input.RoleID, run.RoleID)
	assert.Equal(t, input.OverallScore, run.OverallScore)
	assert.NotNil(t, run.CompletedAt)

	runs, err := db.ListEvaluations(ctx, input.JDHash, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, runs)
}

func TestGetEvaluationMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	run, err := db.GetEvaluation(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, run)
}
