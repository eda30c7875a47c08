package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/gap-analyzer/internal/artifacts"
	"github.com/jonathan/gap-analyzer/internal/config"
	"github.com/jonathan/gap-analyzer/internal/pipeline"
	"github.com/jonathan/gap-analyzer/internal/types"
)

const testJD = `Senior Backend Engineer

Must have Python. Kubernetes experience is a plus.`

const testResume = `Jane Doe

Experience
Built Python services for five years at Initech.`

const extractionJSON = `{
	"role_title": "Senior Backend Engineer",
	"requirements": [
		{"name": "Python", "category": "Technical", "must_have": true, "weight": 5},
		{"name": "Kubernetes", "category": "Infrastructure", "must_have": false, "weight": 3}
	]
}`

type fakeClient struct {
	mu        sync.Mutex
	responses []string
	calls     int
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt, model string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls >= len(f.responses) {
		return "", errors.New("fakeClient: no scripted response")
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) push(resp string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
}

func newTestServer(t *testing.T, client *fakeClient) (*Server, *artifacts.Store) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		Provider:         "gemini",
		ExtractionModel:  "test-extract-model",
		MatchingModel:    "test-match-model",
		ArtifactsDir:     dir,
		ServerAddr:       ":0",
		JaccardThreshold: config.DefaultJaccardThreshold,
		MinQuoteLength:   config.DefaultMinQuoteLength,
	}
	store, err := artifacts.NewStore(dir)
	require.NoError(t, err)
	p := pipeline.New(cfg, client, store, nil, nil)
	return New(cfg, p, nil), store
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// buildArtifact freezes requirements via the API and returns the match
// response referencing the frozen stable IDs.
func buildArtifact(t *testing.T, s *Server, store *artifacts.Store, client *fakeClient) string {
	t.Helper()
	client.push(extractionJSON)
	rec := postJSON(t, s, "/api/requirements/build", BuildRequirementsRequest{JDText: testJD})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var build BuildRequirementsResponse
	decodeBody(t, rec, &build)

	doc, _, err := store.LoadRequirementsByJDHash(build.JDHash)
	require.NoError(t, err)
	byKey := doc.ByKey()
	return fmt.Sprintf(`{
		"candidate_name": "Jane Doe",
		"matches": [
			{"requirement_id": %q, "requirement_key": "python", "matched": true,
			 "evidence": [{"quote": "Built Python services for five years at Initech.", "resume_section": "Experience"}], "notes": ""},
			{"requirement_id": %q, "requirement_key": "kubernetes", "matched": false, "evidence": [], "notes": ""}
		]
	}`, byKey["python"].ID, byKey["kubernetes"].ID)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, &fakeClient{})

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuildRequirements(t *testing.T) {
	client := &fakeClient{responses: []string{extractionJSON}}
	s, _ := newTestServer(t, client)

	rec := postJSON(t, s, "/api/requirements/build", BuildRequirementsRequest{JDText: testJD})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BuildRequirementsResponse
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.JDHash, 64)
	assert.Equal(t, 2, resp.NumRequirements)
	assert.False(t, resp.Reused)
	assert.NotEmpty(t, resp.ArtifactPath)

	// Same JD again reuses the frozen artifact.
	rec = postJSON(t, s, "/api/requirements/build", BuildRequirementsRequest{JDText: testJD})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Reused)
}

func TestBuildRequirementsValidation(t *testing.T) {
	s, _ := newTestServer(t, &fakeClient{})

	rec := postJSON(t, s, "/api/requirements/build", BuildRequirementsRequest{JDText: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "jd_text is required")
}

func TestAnalyzeWithoutArtifactIs409(t *testing.T) {
	s, _ := newTestServer(t, &fakeClient{})

	rec := postJSON(t, s, "/api/analyze", AnalyzeRequest{JDText: testJD, ResumeText: testResume})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "REQUIREMENTS_MISSING", resp["code"])
	assert.Contains(t, resp["error"], "requirements/build")
}

func TestAnalyze(t *testing.T) {
	client := &fakeClient{}
	s, store := newTestServer(t, client)

	matchJSON := buildArtifact(t, s, store, client)
	client.push(matchJSON)

	rec := postJSON(t, s, "/api/analyze", AnalyzeRequest{JDText: testJD, ResumeText: testResume})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalyzeResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 50, resp.MatchScore)
	assert.Equal(t, "artifact", resp.RequirementsSource)
	assert.Equal(t, 100.0, resp.MustHaveCoverage)
	assert.Equal(t, 0.0, resp.NiceToHaveCoverage)
	assert.Equal(t, 2, resp.NumRequirements)
	assert.Equal(t, "Jane Doe", resp.ResumeAnalysis.CandidateName)
	require.Len(t, resp.GapReport, 2)
	assert.Equal(t, types.StatusMatch, resp.GapReport[0].Status)
}

func TestAnalyzeValidation(t *testing.T) {
	s, _ := newTestServer(t, &fakeClient{})

	rec := postJSON(t, s, "/api/analyze", AnalyzeRequest{JDText: testJD})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "resume_text is required")
}

func TestAnalyzeBatch(t *testing.T) {
	client := &fakeClient{}
	s, store := newTestServer(t, client)

	matchJSON := buildArtifact(t, s, store, client)
	client.push(matchJSON)
	client.push(matchJSON)

	rec := postJSON(t, s, "/api/analyze/batch", AnalyzeBatchRequest{
		JDText:      testJD,
		ResumeTexts: []string{testResume, testResume},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Results []AnalyzeResponse `json:"results"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, resp.Results[0].MatchScore, resp.Results[1].MatchScore)
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadText(t *testing.T) {
	s, _ := newTestServer(t, &fakeClient{})

	body, contentType := multipartBody(t, "resume.txt", "Jane  Doe\r\nPython   engineer")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Jane Doe\nPython engineer", resp["text"])
	assert.Equal(t, "resume.txt", resp["filename"])
}

func TestUploadMissingFile(t *testing.T) {
	s, _ := newTestServer(t, &fakeClient{})

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file provided")
}

func TestMasterResumeRoundTrip(t *testing.T) {
	s, _ := newTestServer(t, &fakeClient{})

	// Empty before any upload.
	req := httptest.NewRequest(http.MethodGet, "/api/master-resume", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var empty MasterResumeResponse
	decodeBody(t, rec, &empty)
	assert.Nil(t, empty.Text)
	assert.Nil(t, empty.Filename)

	// Upload replaces and returns the stored text.
	body, contentType := multipartBody(t, "master.txt", "Jane Doe\nPython engineer")
	post := httptest.NewRequest(http.MethodPost, "/api/master-resume", body)
	post.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, post)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored MasterResumeResponse
	decodeBody(t, rec, &stored)
	require.NotNil(t, stored.Text)
	assert.Equal(t, "Jane Doe\nPython engineer", *stored.Text)
	require.NotNil(t, stored.Filename)
	assert.Equal(t, "master.txt", *stored.Filename)

	// GET reads it back.
	req = httptest.NewRequest(http.MethodGet, "/api/master-resume", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var fetched MasterResumeResponse
	decodeBody(t, rec, &fetched)
	require.NotNil(t, fetched.Text)
	assert.Equal(t, "Jane Doe\nPython engineer", *fetched.Text)
}

func TestMasterResumeRejectsOtherExtensions(t *testing.T) {
	s, _ := newTestServer(t, &fakeClient{})

	body, contentType := multipartBody(t, "resume.docx", "binary")
	req := httptest.NewRequest(http.MethodPost, "/api/master-resume", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only PDF and TXT files are allowed")
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatus(&artifacts.MissingArtifactError{JDHash: "abc"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
