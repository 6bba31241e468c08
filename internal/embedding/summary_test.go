package embedding

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/talent-scout/internal/db"
)

func sampleProfile() *db.FullProfile {
	return &db.FullProfile{
		Talent: db.Talent{
			Name:        "Jane Doe",
			Title:       "Video Editor",
			Description: "Jane cuts launch films and shorts for tech brands.",
			Location:    "Berlin",
		},
		Experiences: []db.Experience{
			{Client: "Studio A", Description: "Over 8 years of experience editing launch films."},
			{Client: "Studio B"},
			{Client: "studio a"},
		},
		Projects: []db.Project{
			{Title: "Launch Film", Roles: []string{"Editor"}},
			{Title: "Short Doc"},
			{Title: "Reel"},
			{Title: "Fourth Project"},
		},
		Languages: []db.Language{{Name: "English"}, {Name: "German"}},
		Taxonomy: []db.TaxonomyLink{
			{Category: "Skills", Value: "Color Grading"},
			{Category: "Software", Value: "DaVinci Resolve"},
			{Category: "Platform Specialty", Value: "YouTube"},
		},
	}
}

func TestBuildSummary(t *testing.T) {
	summary := BuildSummary(sampleProfile(), []string{"Resume text excerpt."})

	assert.Contains(t, summary, "Name: Jane Doe")
	assert.Contains(t, summary, "Title: Video Editor")
	assert.Contains(t, summary, "8 years of experience")
	assert.Contains(t, summary, "Has worked with: Studio A, Studio B.")
	assert.Contains(t, summary, "Skilled in Color Grading.")
	assert.Contains(t, summary, "Uses DaVinci Resolve.")
	assert.Contains(t, summary, "Platform Specialty: YouTube.")
	assert.Contains(t, summary, "Languages: English, German.")
	assert.Contains(t, summary, "Project: Launch Film (Editor)")
	assert.NotContains(t, summary, "Fourth Project", "project titles are capped at three")
	assert.Contains(t, summary, "Resume text excerpt.")
}

func TestBuildSummary_YearsFallbackToRecordCount(t *testing.T) {
	p := sampleProfile()
	for i := range p.Experiences {
		p.Experiences[i].Description = ""
	}
	summary := BuildSummary(p, nil)
	assert.Contains(t, summary, "3 years of experience", "record count is the fallback")
}

func TestBuildSummary_Deterministic(t *testing.T) {
	a := BuildSummary(sampleProfile(), nil)
	b := BuildSummary(sampleProfile(), nil)
	assert.Equal(t, a, b, "same profile must produce the same summary text")
}

func TestBuildSummary_TruncatesAtRuneBoundary(t *testing.T) {
	p := sampleProfile()
	// A description of multi-byte runes that overflows its cap must not be
	// cut mid-rune.
	p.Talent.Description = strings.Repeat("é", maxDescriptionChars)

	summary := BuildSummary(p, nil)
	assert.True(t, utf8.ValidString(summary))
}

func TestBuildSummary_HardCap(t *testing.T) {
	p := sampleProfile()
	p.Talent.Description = strings.Repeat("very long description ", 1000)
	excerpts := []string{strings.Repeat("x", 10_000), strings.Repeat("y", 10_000), strings.Repeat("z", 10_000)}

	summary := BuildSummary(p, excerpts)
	assert.LessOrEqual(t, len(summary), maxSummaryChars)
	assert.NotContains(t, summary, "z", "only the first two excerpts are used")
}
