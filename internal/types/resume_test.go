package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *ResumeDocument {
	return &ResumeDocument{
		Name:           "Ada Lovelace",
		Title:          "Analyst",
		Email:          "ada@example.com",
		ActiveSections: []string{SectionPersonal, SectionSummary, SectionEmployment, "custom:Talks"},
		Summary:        "Writes programs for engines that do not exist yet.",
		Employment: []Employment{
			{Company: "Analytical Engines", Role: "Programmer", Bullets: []string{"Note G"}},
		},
		Skills: []string{"Mathematics"},
		Custom: map[string]CustomSection{
			"Talks": {Title: "Talks", Items: []string{"Royal Society"}},
		},
	}
}

func TestResumeDocument_Validate(t *testing.T) {
	doc := sampleDocument()
	require.NoError(t, doc.Validate())

	doc.Email = "not-an-email"
	assert.Error(t, doc.Validate())
}

func TestResumeDocument_ValidateRequiresName(t *testing.T) {
	doc := sampleDocument()
	doc.Name = ""
	assert.Error(t, doc.Validate())
}

func TestResumeDocument_ValidateNestedEntries(t *testing.T) {
	doc := sampleDocument()
	doc.Links = []Link{{Label: "site", URL: "not a url"}}
	assert.Error(t, doc.Validate())
}

func TestResumeDocument_CloneIsDeep(t *testing.T) {
	doc := sampleDocument()
	clone := doc.Clone()

	clone.ActiveSections[1] = "skills"
	clone.Employment[0].Bullets[0] = "changed"
	clone.Custom["Talks"] = CustomSection{Title: "Other"}

	assert.Equal(t, SectionSummary, doc.ActiveSections[1])
	assert.Equal(t, "Note G", doc.Employment[0].Bullets[0])
	assert.Equal(t, "Talks", doc.Custom["Talks"].Title)
}

func TestResumeDocument_CloneNil(t *testing.T) {
	var doc *ResumeDocument
	assert.Nil(t, doc.Clone())
}

func TestResumeDocument_PaginatedSectionsSkipsPersonal(t *testing.T) {
	doc := sampleDocument()
	assert.Equal(t, []string{SectionSummary, SectionEmployment, "custom:Talks"}, doc.PaginatedSections())
}

func TestResumeDocument_IsKnownSection(t *testing.T) {
	doc := sampleDocument()
	assert.True(t, doc.IsKnownSection(SectionSkills))
	assert.True(t, doc.IsKnownSection("custom:Talks"))
	assert.False(t, doc.IsKnownSection("custom:Missing"))
	assert.False(t, doc.IsKnownSection("hobbies"))
}

func TestCustomSectionName(t *testing.T) {
	assert.True(t, IsCustomSection("custom:Awards"))
	assert.False(t, IsCustomSection("summary"))
	assert.Equal(t, "Awards", CustomSectionName("custom:Awards"))
}
