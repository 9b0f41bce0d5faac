package prompt

import (
	"fmt"
	"strings"

	"github.com/printmailhq/printmail/internal/domain/analysis"
)

// DocumentMeta is the metadata embedded into the extraction prompt. Optional
// fields produce no prompt text when empty.
type DocumentMeta struct {
	Name            string
	DocumentType    string
	Description     string
	FileURL         string
	Tags            []string
	Language        string
	PublicationYear int
	TargetAudience  string
	ContentRating   string
	IsOriginalWork  bool
	UploaderName    string
}

// GetSystemPrompt provides strict directions and the exact JSON schema the
// model must follow. The taxonomy listing and the fixed enumerations are
// embedded verbatim so the model cannot invent categories, entity types, or
// platforms.
func GetSystemPrompt(taxonomyListing string) string {
	var b strings.Builder

	b.WriteString(`You are a document analyst for a public document repository. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object matching the schema below.
- "category" must be exactly one of the registered categories listed under Categories.
- Every entity "type" must be one of: `)
	b.WriteString(joinEntityTypes())
	b.WriteString(`. Use "other" rather than inventing a new type.
- Every social handle "platform" must be one of: `)
	b.WriteString(joinPlatforms())
	b.WriteString(`. Use "other" rather than inventing a new platform.
- "summary" is three paragraphs; "themes" holds 3-5 short strings.

Categories:
`)
	b.WriteString(taxonomyListing)
	b.WriteString(`

Schema (example with empty values):
{
  "category": "<string>",
  "summary": "<string>",
  "themes": ["<string>"],
  "entities": [{"type": "<string>", "name": "<string>"}],
  "socialHandles": [{"platform": "<string>", "handle": "<string>", "url": "<string>"}],
  "readingLevel": "<string>",
  "estimatedReadTime": "<string>",
  "keyPhrases": ["<string>"],
  "citations": [{"type": "<string>", "title": "<string>", "authors": ["<string>"], "year": 0, "url": "<string>"}],
  "tableOfContents": ["<string>"]
}`)

	return b.String()
}

// GetUserPrompt builds the per-document message. Absent optional metadata
// fields produce no stray lines.
func GetUserPrompt(meta DocumentMeta) string {
	var b strings.Builder

	b.WriteString("Analyze the document described below and respond with the JSON per schema.\n\n")
	fmt.Fprintf(&b, "Document Name: %s\n", meta.Name)
	fmt.Fprintf(&b, "Document Type: %s\n", meta.DocumentType)
	fmt.Fprintf(&b, "Document Description: %s\n", meta.Description)
	fmt.Fprintf(&b, "Document URL: %s\n", meta.FileURL)

	if len(meta.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(meta.Tags, ", "))
	}
	if meta.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", meta.Language)
	}
	if meta.PublicationYear > 0 {
		fmt.Fprintf(&b, "Publication Year: %d\n", meta.PublicationYear)
	}
	if meta.TargetAudience != "" {
		fmt.Fprintf(&b, "Target Audience: %s\n", meta.TargetAudience)
	}
	if meta.ContentRating != "" {
		fmt.Fprintf(&b, "Content Rating: %s\n", meta.ContentRating)
	}
	if meta.IsOriginalWork {
		b.WriteString("This is an original work.\n")
	}
	if meta.UploaderName != "" {
		fmt.Fprintf(&b, "Uploaded by: %s\n", meta.UploaderName)
	}

	return b.String()
}

func joinEntityTypes() string {
	types := analysis.EntityTypes()
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func joinPlatforms() string {
	platforms := analysis.Platforms()
	parts := make([]string, len(platforms))
	for i, p := range platforms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
