package moderation

import "time"

// FlagID identifier type
type FlagID string

// Status enum
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Terminal reports whether a flag status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Flag is a community report against a document. A flag transitions to a
// terminal status exactly once; acceptance hides the referenced document.
type Flag struct {
	ID          FlagID    `json:"id"`
	DocumentID  string    `json:"document_id"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	FlaggedBy   string    `json:"flagged_by,omitempty"`
	Status      Status    `json:"status"`
	ReviewedBy  string    `json:"reviewed_by,omitempty"`
	ReviewNotes string    `json:"review_notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ResolvedAt  time.Time `json:"resolved_at,omitempty"`
}
