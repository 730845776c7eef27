package catalog

import "errors"

// ErrNotFound is returned when a requested card does not exist
var ErrNotFound = errors.New("not found")
