package documents

import (
	"context"
	"io"

	"github.com/printmailhq/printmail/internal/domain/analysis"
)

// Counter identifies the engagement counter to bump
type Counter string

const (
	CounterView     Counter = "view"
	CounterDownload Counter = "download"
	CounterPrint    Counter = "print"
)

// ListFilter narrows public listings; zero values mean "no filter"
type ListFilter struct {
	Category        string
	DocumentType    string
	Tag             string
	Language        string
	TargetAudience  string
	ContentRating   string
	PublicationYear int
	OwnershipStatus string
}

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, d *Document) error
	Get(ctx context.Context, id DocumentID) (*Document, error)
	ListPublic(ctx context.Context, filter ListFilter, limit int) ([]*Document, error)
	Search(ctx context.Context, term string, limit int) ([]*Document, error)
	Top(ctx context.Context, by Counter, limit int) ([]*Document, error)
	TopRated(ctx context.Context, limit int) ([]*Document, error)

	Increment(ctx context.Context, id DocumentID, c Counter) (int, error)
	SetPublic(ctx context.Context, id DocumentID, public bool) error
	IncrementFlagCount(ctx context.Context, id DocumentID) error
	// HighlyFlagged lists documents whose flag count reached the threshold
	HighlyFlagged(ctx context.Context, threshold, limit int) ([]*Document, error)

	// SaveAnalysis patches every analysis field plus analyzed=true in one write
	SaveAnalysis(ctx context.Context, id DocumentID, res *analysis.Result) error

	SaveRating(ctx context.Context, r *Rating) error
	AverageRating(ctx context.Context, id DocumentID) (float64, error)
	SetAverageRating(ctx context.Context, id DocumentID, avg float64) error
}

// ArtifactStore port (interface untuk penyimpanan file PDF)
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
