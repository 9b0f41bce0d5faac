package analysis

// Fixed enumerations the extraction model is constrained to. Values outside
// the enum are coerced to "other" during normalization, never rejected.

// EntityType enum
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityLocation     EntityType = "location"
	EntityEvent        EntityType = "event"
	EntityProduct      EntityType = "product"
	EntityPublication  EntityType = "publication"
	EntityOther        EntityType = "other"
)

// Platform enum
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformGitHub    Platform = "github"
	PlatformTikTok    Platform = "tiktok"
	PlatformWebsite   Platform = "website"
	PlatformOther     Platform = "other"
)

// EntityTypes lists the valid entity types in prompt order.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityPerson, EntityOrganization, EntityLocation,
		EntityEvent, EntityProduct, EntityPublication, EntityOther,
	}
}

// Platforms lists the valid social platforms in prompt order.
func Platforms() []Platform {
	return []Platform{
		PlatformTwitter, PlatformLinkedIn, PlatformFacebook,
		PlatformInstagram, PlatformYouTube, PlatformGitHub,
		PlatformTikTok, PlatformWebsite, PlatformOther,
	}
}

// Entity is a named entity mentioned in the document
type Entity struct {
	Type EntityType `json:"type"`
	Name string     `json:"name"`
}

// SocialHandle is a social media handle referenced in the document
type SocialHandle struct {
	Platform Platform `json:"platform"`
	Handle   string   `json:"handle"`
	URL      string   `json:"url"`
}

// Citation is a structured reference found in the document
type Citation struct {
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"`
	Year    int      `json:"year,omitempty"`
	URL     string   `json:"url,omitempty"`
}

// Result is the fully-populated, enum-safe analysis of one document.
// Every field is always set after Normalize, possibly to its default.
type Result struct {
	Category          string         `json:"category"`
	Summary           string         `json:"summary"`
	Themes            []string       `json:"themes"`
	Entities          []Entity       `json:"entities"`
	SocialHandles     []SocialHandle `json:"social_handles"`
	ReadingLevel      string         `json:"reading_level"`
	EstimatedReadTime string         `json:"estimated_read_time"`
	KeyPhrases        []string       `json:"key_phrases"`
	Citations         []Citation     `json:"citations"`
	TableOfContents   []string       `json:"table_of_contents"`
}

const (
	DefaultCategory = "Uncategorized"
	DefaultSummary  = "No summary available."

	// FallbackCategory is assigned when the model returns a category that is
	// not part of the live taxonomy.
	FallbackCategory = "Other"
)

// DefaultResult returns the fully-defaulted result used when the model's
// output is missing or unparseable.
func DefaultResult() *Result {
	return &Result{
		Category:        DefaultCategory,
		Summary:         DefaultSummary,
		Themes:          []string{},
		Entities:        []Entity{},
		SocialHandles:   []SocialHandle{},
		KeyPhrases:      []string{},
		Citations:       []Citation{},
		TableOfContents: []string{},
	}
}
