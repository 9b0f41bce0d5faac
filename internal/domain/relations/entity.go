package relations

// Type enum: the dimension two documents are related on
type Type string

const (
	TypeTheme    Type = "theme"
	TypeCategory Type = "category"
	TypeEntity   Type = "entity"
)

// Relationship links two documents on a shared theme, category, or entity.
// Strength is a 0..1 score; upserting an existing (source, related, type,
// value) tuple updates the strength.
type Relationship struct {
	ID        int64   `json:"id"`
	SourceID  string  `json:"source_document_id"`
	RelatedID string  `json:"related_document_id"`
	Type      Type    `json:"type"`
	Value     string  `json:"value"`
	Strength  float64 `json:"strength"`
}
