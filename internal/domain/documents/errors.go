package documents

import "errors"

// ErrNotFound indicates the referenced document does not exist.
var ErrNotFound = errors.New("document not found")
