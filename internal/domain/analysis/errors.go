package analysis

import "errors"

// ErrExtractionFailed indicates a transport or model error calling the
// extraction model. Propagated to the caller, never retried here.
var ErrExtractionFailed = errors.New("extraction failed")

// ErrQuotaExceeded indicates the model provider returned a quota/limit error
// (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("model quota exceeded")

// ErrMalformedOutput indicates the model output contained no parseable JSON.
// Normalize recovers locally with a fully-defaulted result; the error exists
// only for the caller's logging path.
var ErrMalformedOutput = errors.New("no parseable JSON in model output")
