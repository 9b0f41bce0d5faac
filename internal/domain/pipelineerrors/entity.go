package pipelineerrors

import "time"

// PipelineError is a persisted record of a background analysis failure. The
// upload flow never sees these; they exist for operators and for re-runs.
type PipelineError struct {
	ID          int64     `json:"id"`
	DocumentID  string    `json:"document_id"`
	Stage       string    `json:"stage,omitempty"` // extract | normalize | persist | other
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
