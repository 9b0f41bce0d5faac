package analysis

import "context"

// Extractor port (interface untuk model ekstraksi)
type Extractor interface {
	Extract(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
