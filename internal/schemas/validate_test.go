package schemas

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type, got %T", err)
	var fields []string
	for _, e := range validationErr.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidateResumeDocument_Sample(t *testing.T) {
	data, err := json.Marshal(types.SampleResume(3))
	require.NoError(t, err)
	assert.NoError(t, ValidateResumeDocument(data))
}

func TestValidateResumeDocument_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		field string
	}{
		{"missing name", `{"active_sections": []}`, "(root)"},
		{"bad section id", `{"name": "A", "active_sections": ["hobbies"]}`, "active_sections.0"},
		{"duplicate section", `{"name": "A", "active_sections": ["summary", "summary"]}`, "active_sections"},
		{"employment without role", `{"name": "A", "active_sections": [], "employment": [{"company": "X"}]}`, "employment.0"},
		{"bad link url", `{"name": "A", "active_sections": [], "links": [{"label": "x", "url": "not a url"}]}`, "links.0.url"},
		{"unknown field", `{"name": "A", "active_sections": [], "photo": "x"}`, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResumeDocument([]byte(tt.json))
			require.Error(t, err)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}
}

func TestValidateResumeDocument_CustomSection(t *testing.T) {
	doc := `{"name": "A", "active_sections": ["custom:Volunteering"], "custom": {"Volunteering": {"title": "Volunteering", "items": ["Food bank"]}}}`
	assert.NoError(t, ValidateResumeDocument([]byte(doc)))
}

func TestValidateLayoutPreferences(t *testing.T) {
	data, err := json.Marshal(types.DefaultLayoutPreferences("classic"))
	require.NoError(t, err)
	assert.NoError(t, ValidateLayoutPreferences(data))

	err = ValidateLayoutPreferences([]byte(`{"template": "classic", "font_size_pt": 40, "spacing": "cramped"}`))
	require.Error(t, err)
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "font_size_pt")
	assert.Contains(t, fields, "spacing")
}

func TestValidateExportRequest(t *testing.T) {
	assert.NoError(t, ValidateExportRequest([]byte(`{}`)))
	assert.NoError(t, ValidateExportRequest([]byte(`{"strategy": "raster", "filename": "cv"}`)))
	assert.Error(t, ValidateExportRequest([]byte(`{"strategy": "fax"}`)))
}

func TestValidateBytes_UnknownSchema(t *testing.T) {
	err := ValidateBytes("missing.schema.json", []byte(`{}`))
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.schema.json", loadErr.Path)
}

func TestValidateBytes_MalformedDocument(t *testing.T) {
	err := ValidateResumeDocument([]byte("{ invalid json }"))
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["id"], "properties": {"id": {"type": "string"}}}`
	assert.NoError(t, ValidateJSONString(schema, `{"id": "x"}`))

	err := ValidateJSONString(schema, `{"id": 3}`)
	assert.Equal(t, []string{"id"}, fieldsOf(t, err))
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "name", Message: "is required"}}}
	assert.Equal(t, "validation failed:\n  1. name: is required\n", err.Error())
}
