package documents

import (
	"time"

	"github.com/printmailhq/printmail/internal/domain/analysis"
)

// ID tipe untuk Document
type DocumentID string

// OwnershipStatus enum
type OwnershipStatus string

const (
	OwnershipOriginator   OwnershipStatus = "originator"
	OwnershipTeam         OwnershipStatus = "team"
	OwnershipCompany      OwnershipStatus = "company"
	OwnershipNotOwner     OwnershipStatus = "not_owner"
	OwnershipPublicDomain OwnershipStatus = "public_domain"
)

// Aggregate Root: Document
type Document struct {
	ID          DocumentID `json:"id"`
	FileName    string     `json:"file_name"`
	FileURL     string     `json:"file_url"`
	FileSize    int64      `json:"file_size"`
	IsPublic    bool       `json:"is_public"`
	Name        string     `json:"name"`
	Description string     `json:"description"`

	DocumentType    string          `json:"document_type"`
	OwnershipStatus OwnershipStatus `json:"ownership_status"`

	Tags            []string `json:"tags,omitempty"`
	Language        string   `json:"language,omitempty"`
	PublicationYear int      `json:"publication_year,omitempty"`
	TargetAudience  string   `json:"target_audience,omitempty"`
	ContentRating   string   `json:"content_rating,omitempty"`
	IsOriginalWork  bool     `json:"is_original_work,omitempty"`

	UploaderName  string `json:"uploader_name,omitempty"`
	UploaderEmail string `json:"uploader_email,omitempty"`

	ViewCount     int     `json:"view_count"`
	DownloadCount int     `json:"download_count"`
	PrintCount    int     `json:"print_count"`
	AverageRating float64 `json:"average_rating"`
	FlagCount     int     `json:"flag_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Analyzed bool             `json:"analyzed"`
	Analysis *analysis.Result `json:"analysis,omitempty"`
}

// Rating is a single user rating for a document (1..5 stars)
type Rating struct {
	ID         int64      `json:"id"`
	DocumentID DocumentID `json:"document_id"`
	UserID     string     `json:"user_id,omitempty"`
	Stars      int        `json:"stars"`
	Review     string     `json:"review,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
