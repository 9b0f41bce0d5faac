package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSystemPrompt_EmbedsTaxonomyAndEnums(t *testing.T) {
	listing := "\"Academic\": Scholarly articles\n\"Other\": Everything else"
	got := GetSystemPrompt(listing)

	assert.Contains(t, got, listing)
	assert.Contains(t, got, "person, organization, location, event, product, publication, other")
	assert.Contains(t, got, "twitter, linkedin, facebook, instagram, youtube, github, tiktok, website, other")
	assert.Contains(t, got, `"tableOfContents"`)
}

func TestGetUserPrompt_Deterministic(t *testing.T) {
	meta := DocumentMeta{
		Name:         "Annual Report",
		DocumentType: "business report",
		Description:  "FY25 results",
		FileURL:      "https://bucket/pdfs/report.pdf",
	}
	assert.Equal(t, GetUserPrompt(meta), GetUserPrompt(meta))
}

func TestGetUserPrompt_OptionalFieldsGuarded(t *testing.T) {
	bare := GetUserPrompt(DocumentMeta{Name: "A", DocumentType: "poem", Description: "d", FileURL: "u"})

	assert.NotContains(t, bare, "Tags:")
	assert.NotContains(t, bare, "Language:")
	assert.NotContains(t, bare, "Publication Year:")
	assert.NotContains(t, bare, "Target Audience:")
	assert.NotContains(t, bare, "Content Rating:")
	assert.NotContains(t, bare, "Uploaded by:")
	assert.NotContains(t, bare, "original work")

	full := GetUserPrompt(DocumentMeta{
		Name: "A", DocumentType: "poem", Description: "d", FileURL: "u",
		Tags:            []string{"x", "y"},
		Language:        "English",
		PublicationYear: 2021,
		TargetAudience:  "General",
		ContentRating:   "General",
		IsOriginalWork:  true,
		UploaderName:    "Sam",
	})
	assert.Contains(t, full, "Tags: x, y")
	assert.Contains(t, full, "Language: English")
	assert.Contains(t, full, "Publication Year: 2021")
	assert.Contains(t, full, "Target Audience: General")
	assert.Contains(t, full, "Content Rating: General")
	assert.Contains(t, full, "This is an original work.")
	assert.Contains(t, full, "Uploaded by: Sam")

	// no stray empty lines from guarded fields
	assert.False(t, strings.Contains(bare, ": \n"))
}
