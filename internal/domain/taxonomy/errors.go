package taxonomy

import "errors"

// ErrDuplicateName indicates an active category with the same name exists.
var ErrDuplicateName = errors.New("category name already exists")

// ErrNotFound indicates the referenced category does not exist.
var ErrNotFound = errors.New("category not found")
