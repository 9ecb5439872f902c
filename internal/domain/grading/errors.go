package grading

import "errors"

// ErrMatchUnavailable marks a store that cannot run similarity search at all
// (function or collection not installed), as opposed to a transient failure.
var ErrMatchUnavailable = errors.New("similarity search unavailable")
