package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ExtractedProfile_Valid(t *testing.T) {
	doc := []byte(`{
		"name": "Ada Lovelace",
		"title": "Video Editor",
		"description": null,
		"location": "London",
		"status": "freelance",
		"availability": "available",
		"experiences": [{"client": "Acme", "role": "Editor", "period": "2020-2023", "description": "cut things"}],
		"projects": [{"title": "Launch Film", "roles": ["Editor"], "metrics": {"views": "1.2K", "likes": null}, "link": null}],
		"languages": ["English"],
		"job_types": ["Video Editing"],
		"content_verticals": ["Tech"],
		"platform_specialties": ["YouTube"],
		"skills": ["Color Grading"],
		"software": ["Adobe Premiere Pro"]
	}`)
	require.NoError(t, Validate(ExtractedProfile, doc))
}

func TestValidate_ExtractedProfile_MissingRequiredArrays(t *testing.T) {
	doc := []byte(`{"name": "Ada"}`)
	err := Validate(ExtractedProfile, doc)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ExtractedProfile, ve.Schema)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidate_ExtractedProfile_ExperienceWithoutClient(t *testing.T) {
	doc := []byte(`{
		"experiences": [{"role": "Editor"}],
		"projects": [], "languages": [], "job_types": [], "content_verticals": [],
		"platform_specialties": [], "skills": [], "software": []
	}`)
	err := Validate(ExtractedProfile, doc)
	require.Error(t, err)
}

func TestValidate_RelevanceScores(t *testing.T) {
	valid := []byte(`[{"id": "abc", "score": 95}, {"id": "def", "score": 40}]`)
	require.NoError(t, Validate(RelevanceScores, valid))

	invalid := []byte(`[{"id": "abc"}]`)
	require.Error(t, Validate(RelevanceScores, invalid))

	notArray := []byte(`{"id": "abc", "score": 1}`)
	require.Error(t, Validate(RelevanceScores, notArray))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nonexistent", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown schema")
}
