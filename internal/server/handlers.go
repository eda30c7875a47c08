package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/gap-analyzer/internal/artifacts"
	"github.com/jonathan/gap-analyzer/internal/ingestion"
	"github.com/jonathan/gap-analyzer/internal/pipeline"
	"github.com/jonathan/gap-analyzer/internal/types"
)

// BuildRequirementsRequest represents the request body for /api/requirements/build
type BuildRequirementsRequest struct {
	JDText string `json:"jd_text" validate:"required"`
	RoleID string `json:"role_id,omitempty"`
	Force  bool   `json:"force,omitempty"`
}

// BuildRequirementsResponse represents the response for /api/requirements/build
type BuildRequirementsResponse struct {
	JDHash          string `json:"jd_hash"`
	RoleID          string `json:"role_id"`
	NumRequirements int    `json:"num_requirements"`
	ArtifactPath    string `json:"artifact_path"`
	Reused          bool   `json:"reused"`
}

// AnalyzeRequest represents the request body for /api/analyze
type AnalyzeRequest struct {
	JDText     string `json:"jd_text" validate:"required"`
	ResumeText string `json:"resume_text" validate:"required"`
}

// AnalyzeResponse represents the response for /api/analyze
type AnalyzeResponse struct {
	JDAnalysis               types.JDAnalysis     `json:"jd_analysis"`
	ResumeAnalysis           types.ResumeAnalysis `json:"resume_analysis"`
	GapReport                []types.GapEntry     `json:"gap_report"`
	MatchScore               int                  `json:"match_score"`
	JDHash                   string               `json:"jd_hash"`
	ResumeHash               string               `json:"resume_hash"`
	RequirementsVersion      string               `json:"requirements_version"`
	RequirementsSource       string               `json:"requirements_source"`
	RequirementsArtifactPath string               `json:"requirements_artifact_path"`
	RequirementsHash         string               `json:"requirements_hash"`
	NumRequirements          int                  `json:"num_requirements"`
	MustHaveCoverage         float64              `json:"must_have_coverage"`
	NiceToHaveCoverage       float64              `json:"nice_to_have_coverage"`
	RunID                    string               `json:"run_id"`
}

// AnalyzeBatchRequest represents the request body for /api/analyze/batch
type AnalyzeBatchRequest struct {
	JDText      string   `json:"jd_text" validate:"required"`
	ResumeTexts []string `json:"resume_texts" validate:"required,min=1,dive,required"`
}

// handleBuildRequirements freezes a requirements artifact for a JD
func (s *Server) handleBuildRequirements(w http.ResponseWriter, r *http.Request) {
	var req BuildRequirementsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	req.JDText = strings.TrimSpace(req.JDText)
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	res, err := s.pipeline.BuildRequirements(r.Context(), req.JDText, req.RoleID, req.Force)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, BuildRequirementsResponse{
		JDHash:          res.JDHash,
		RoleID:          res.Doc.RoleID,
		NumRequirements: len(res.Doc.Requirements),
		ArtifactPath:    res.ArtifactPath,
		Reused:          res.Reused,
	})
}

// handleAnalyze runs one resume against the frozen requirements for a JD.
// A missing artifact is a 409 with code REQUIREMENTS_MISSING: the client must
// build requirements first, the server never regenerates them implicitly.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	req.JDText = strings.TrimSpace(req.JDText)
	req.ResumeText = strings.TrimSpace(req.ResumeText)
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := s.pipeline.Evaluate(r.Context(), req.JDText, req.ResumeText)
	if err != nil {
		var missing *artifacts.MissingArtifactError
		if errors.As(err, &missing) {
			s.jsonResponse(w, http.StatusConflict, map[string]string{
				"error": "Requirements artifact missing. Run POST /api/requirements/build first with the same JD.",
				"code":  codeRequirementsMissing,
			})
			return
		}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, analyzeResponse(result))
}

// handleAnalyzeBatch evaluates several resumes against one JD
func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	req.JDText = strings.TrimSpace(req.JDText)
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	results, err := s.pipeline.EvaluateBatch(r.Context(), req.JDText, req.ResumeTexts)
	if err != nil {
		var missing *artifacts.MissingArtifactError
		if errors.As(err, &missing) {
			s.jsonResponse(w, http.StatusConflict, map[string]string{
				"error": "Requirements artifact missing. Run POST /api/requirements/build first with the same JD.",
				"code":  codeRequirementsMissing,
			})
			return
		}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	responses := make([]AnalyzeResponse, 0, len(results))
	for _, res := range results {
		responses = append(responses, analyzeResponse(res))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"results": responses})
}

func analyzeResponse(res *pipeline.EvaluationResult) AnalyzeResponse {
	return AnalyzeResponse{
		JDAnalysis:               res.JDAnalysis,
		ResumeAnalysis:           res.ResumeAnalysis,
		GapReport:                res.GapReport,
		MatchScore:               res.MatchScore,
		JDHash:                   res.JDHash,
		ResumeHash:               res.ResumeHash,
		RequirementsVersion:      res.RequirementsVersion,
		RequirementsSource:       res.RequirementsSource,
		RequirementsArtifactPath: res.RequirementsArtifactPath,
		RequirementsHash:         res.RequirementsHash,
		NumRequirements:          res.NumRequirements,
		MustHaveCoverage:         res.Score.MustHaveCoverage,
		NiceToHaveCoverage:       res.Score.NiceToHaveCoverage,
		RunID:                    res.RunID,
	}
}

// handleUpload extracts text from an uploaded PDF or TXT file
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.errorResponse(w, http.StatusBadRequest, "No file selected")
		return
	}

	text, err := s.extractUploadText(file, header.Filename)
	if err != nil {
		s.audit.Error("upload", err, zap.String("filename", header.Filename))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.audit.Event("upload", "ok",
		zap.String("filename", header.Filename),
		zap.Int("char_count", len(text)))

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"text":     text,
		"filename": header.Filename,
	})
}

// extractUploadText reads an uploaded file and returns cleaned text. PDFs go
// through the PDF extractor via a temp file; everything else is treated as
// UTF-8 text.
func (s *Server) extractUploadText(file io.Reader, filename string) (string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		tmp, err := os.CreateTemp("", "gap-upload-*.pdf")
		if err != nil {
			return "", err
		}
		defer os.Remove(tmp.Name())

		if _, err := io.Copy(tmp, file); err != nil {
			tmp.Close()
			return "", err
		}
		if err := tmp.Close(); err != nil {
			return "", err
		}
		return ingestion.IngestFromPDF(tmp.Name())
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return ingestion.CleanText(string(data)), nil
}

// MasterResumeResponse represents the stored master resume
type MasterResumeResponse struct {
	Text     *string `json:"text"`
	Filename *string `json:"filename"`
}

// handleGetMasterResume returns the stored master resume, used as the base
// for gap analyses. Both fields are null when none has been uploaded.
func (s *Server) handleGetMasterResume(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.readMasterResume())
}

// handleSetMasterResume saves an uploaded PDF/TXT as the master resume,
// replacing any existing one.
func (s *Server) handleSetMasterResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.errorResponse(w, http.StatusBadRequest, "No file selected")
		return
	}
	lower := strings.ToLower(header.Filename)
	if !strings.HasSuffix(lower, ".pdf") && !strings.HasSuffix(lower, ".txt") {
		s.errorResponse(w, http.StatusBadRequest, "Only PDF and TXT files are allowed")
		return
	}

	if err := os.MkdirAll(s.masterDir, 0o755); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Keep only one master file.
	entries, _ := os.ReadDir(s.masterDir)
	for _, e := range entries {
		if !e.IsDir() {
			_ = os.Remove(filepath.Join(s.masterDir, e.Name()))
		}
	}

	dst, err := os.Create(filepath.Join(s.masterDir, filepath.Base(header.Filename)))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := dst.Close(); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.audit.Event("master_resume_set", "ok", zap.String("filename", header.Filename))
	s.jsonResponse(w, http.StatusOK, s.readMasterResume())
}

// readMasterResume loads the single stored master resume file, if any.
func (s *Server) readMasterResume() MasterResumeResponse {
	entries, err := os.ReadDir(s.masterDir)
	if err != nil {
		return MasterResumeResponse{}
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lower := strings.ToLower(e.Name())
		if !strings.HasSuffix(lower, ".pdf") && !strings.HasSuffix(lower, ".txt") {
			continue
		}
		path := filepath.Join(s.masterDir, e.Name())

		var text string
		if strings.HasSuffix(lower, ".pdf") {
			text, err = ingestion.IngestFromPDF(path)
		} else {
			text, err = ingestion.IngestFromFile(path)
		}
		if err != nil {
			log.Printf("Failed to read master resume %s: %v", path, err)
			return MasterResumeResponse{}
		}

		name := e.Name()
		return MasterResumeResponse{Text: &text, Filename: &name}
	}
	return MasterResumeResponse{}
}
