package taxonomy

import "context"

// Repository port for the category registry
type Repository interface {
	Save(ctx context.Context, c *Category) error
	Get(ctx context.Context, id CategoryID) (*Category, error)
	// FindActiveByName returns nil when no active category carries the name.
	FindActiveByName(ctx context.Context, name string) (*Category, error)
	ListActive(ctx context.Context) ([]*Category, error)
	Count(ctx context.Context) (int, error)
	SetActive(ctx context.Context, id CategoryID, active bool) error
}
