package moderation

import "context"

// Repository port for moderation flags
type Repository interface {
	Save(ctx context.Context, f *Flag) error
	Get(ctx context.Context, id FlagID) (*Flag, error)
	ListByDocument(ctx context.Context, documentID string) ([]*Flag, error)
	ListPending(ctx context.Context, limit int) ([]*Flag, error)
}
