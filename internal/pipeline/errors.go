package pipeline

import "errors"

// ErrInvalidInput is returned for zero-area or inconsistent source buffers, unknown styles
// and parameters that cannot be clamped into a meaningful range
var ErrInvalidInput = errors.New("invalid input")
