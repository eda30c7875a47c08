package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/gap-analyzer/internal/hashing"
	"github.com/jonathan/gap-analyzer/internal/prompts"
)

// fakeClient returns scripted responses in order, then repeats the last one.
type fakeClient struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ string) (string, error) {
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	f.prompts = append(f.prompts, prompt)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return f.responses[i], err
}

func (f *fakeClient) Close() error { return nil }

const jdText = "Senior Backend Engineer. Must have Python and Kubernetes. Nice to have LLM evaluation experience."

const goodResponse = `{
	"role_title": "Senior Backend Engineer",
	"requirements": [
		{"name": "Python", "importance": "must-have", "weight": 5},
		{"name": "Kubernetes", "category": "Infrastructure", "importance": "must-have"},
		{"name": "LLM evaluation", "importance": "nice-to-have"}
	]
}`

func TestExtractBuildsFrozenDoc(t *testing.T) {
	client := &fakeClient{responses: []string{goodResponse}}
	ex := NewExtractor(client, "test-model")

	doc, audit, err := ex.Extract(context.Background(), jdText, "")
	require.NoError(t, err)

	assert.Equal(t, hashing.Text(jdText), doc.JDHash)
	assert.Equal(t, "role_"+doc.JDHash[:12], doc.RoleID)
	assert.Equal(t, RequirementsVersion, doc.RequirementsVersion)
	assert.Equal(t, "Senior Backend Engineer", doc.RoleTitle)
	assert.NotEmpty(t, doc.CreatedAt)
	require.Len(t, doc.Requirements, 3)

	// Normalized ordering: must-haves first.
	assert.True(t, doc.Requirements[0].MustHave)
	assert.True(t, doc.Requirements[1].MustHave)
	assert.False(t, doc.Requirements[2].MustHave)
	for _, r := range doc.Requirements {
		assert.Regexp(t, `^REQ-[0-9a-f]{10}$`, r.ID)
	}

	require.NotNil(t, audit)
	assert.Equal(t, prompts.ExtractVersion, audit.PromptVersion)
	assert.Equal(t, "test-model", audit.ModelID)
	assert.NotEmpty(t, audit.PromptHash)
	assert.Zero(t, audit.ModelParams.Temperature)
	assert.Equal(t, 1.0, audit.ModelParams.TopP)
}

func TestExtractHonorsExplicitRoleID(t *testing.T) {
	client := &fakeClient{responses: []string{goodResponse}}
	ex := NewExtractor(client, "test-model")

	doc, _, err := ex.Extract(context.Background(), jdText, "backend_sr_2026")
	require.NoError(t, err)
	assert.Equal(t, "backend_sr_2026", doc.RoleID)
}

func TestExtractRetriesMalformedJSON(t *testing.T) {
	client := &fakeClient{responses: []string{"not json at all", goodResponse}}
	ex := NewExtractor(client, "test-model")

	doc, _, err := ex.Extract(context.Background(), jdText, "")
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
	assert.Len(t, doc.Requirements, 3)
}

func TestExtractFailsAfterSecondBadResponse(t *testing.T) {
	client := &fakeClient{responses: []string{"nope", "still nope"}}
	ex := NewExtractor(client, "test-model")

	_, _, err := ex.Extract(context.Background(), jdText, "")
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, client.calls)
}

func TestExtractRetriesAPIFailure(t *testing.T) {
	client := &fakeClient{
		responses: []string{"", goodResponse},
		errs:      []error{errors.New("rate limited"), nil},
	}
	ex := NewExtractor(client, "test-model")

	_, _, err := ex.Extract(context.Background(), jdText, "")
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
}

func TestExtractSurfacesAPIError(t *testing.T) {
	boom := errors.New("upstream down")
	client := &fakeClient{
		responses: []string{"", ""},
		errs:      []error{boom, boom},
	}
	ex := NewExtractor(client, "test-model")

	_, _, err := ex.Extract(context.Background(), jdText, "")
	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
	assert.ErrorIs(t, err, boom)
}

func TestExtractPromptContainsJD(t *testing.T) {
	client := &fakeClient{responses: []string{goodResponse}}
	ex := NewExtractor(client, "test-model")

	_, _, err := ex.Extract(context.Background(), jdText, "")
	require.NoError(t, err)
	require.NotEmpty(t, client.prompts)
	assert.Contains(t, client.prompts[0], jdText)
	assert.NotContains(t, client.prompts[0], "{{.JDText}}")
}
