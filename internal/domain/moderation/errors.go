package moderation

import "errors"

// ErrNotFound indicates the referenced flag does not exist.
var ErrNotFound = errors.New("flag not found")

// ErrAlreadyResolved indicates the flag already reached a terminal status.
var ErrAlreadyResolved = errors.New("flag already resolved")

// ErrInvalidStatus indicates a review verdict outside accepted/rejected.
var ErrInvalidStatus = errors.New("invalid review status")
