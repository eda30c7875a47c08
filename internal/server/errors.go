package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/gap-analyzer/internal/artifacts"
	"github.com/jonathan/gap-analyzer/internal/schemas"
	"github.com/jonathan/gap-analyzer/internal/scoring"
)

// codeRequirementsMissing is the machine-readable code clients switch on to
// know they must call POST /api/requirements/build before retrying.
const codeRequirementsMissing = "REQUIREMENTS_MISSING"

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var missing *artifacts.MissingArtifactError
	var evidence *scoring.EvidenceRequiredError
	var schema *schemas.ValidationError

	switch {
	case errors.As(err, &missing):
		return http.StatusConflict
	case errors.As(err, &evidence), errors.As(err, &schema):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// validationMessage renders the first validator failure as a client-facing
// message using the JSON field names the client actually sent.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	field := jsonFieldName(fe.Field())
	if fe.Tag() == "required" {
		return field + " is required"
	}
	return field + " is invalid"
}

// jsonFieldName maps struct field names of the request types to their JSON
// counterparts for error messages.
func jsonFieldName(field string) string {
	switch field {
	case "JDText":
		return "jd_text"
	case "ResumeText":
		return "resume_text"
	case "ResumeTexts":
		return "resume_texts"
	case "RoleID":
		return "role_id"
	default:
		return field
	}
}
