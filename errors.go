package maxima

import "errors"

var (
	// ErrNotFound is returned by ValueAt when the argument is not part of
	// the function's current domain.
	ErrNotFound = errors.New("argument not found")
)
