package taxonomy

import "time"

// CategoryID identifier type
type CategoryID string

// Category is one entry of the closed, administrator-editable category list.
// Deactivated categories stay in storage so documents that reference the name
// remain valid.
type Category struct {
	ID          CategoryID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ParentID    CategoryID `json:"parent_id,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
