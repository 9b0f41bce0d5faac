package orders

import "errors"

// ErrNotFound indicates the referenced order does not exist.
var ErrNotFound = errors.New("order not found")
