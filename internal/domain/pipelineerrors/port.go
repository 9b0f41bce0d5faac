package pipelineerrors

import "context"

// Repository defines persistence for pipeline errors
type Repository interface {
	Save(ctx context.Context, e *PipelineError) error
	ListByDocument(ctx context.Context, documentID string, limit int) ([]*PipelineError, error)
}
