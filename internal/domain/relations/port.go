package relations

import "context"

// Repository port for document relationships
type Repository interface {
	Upsert(ctx context.Context, r *Relationship) error
	ListBySource(ctx context.Context, sourceID string) ([]*Relationship, error)
	ListByTypeValue(ctx context.Context, t Type, value string) ([]*Relationship, error)
}
