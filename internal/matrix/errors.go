package matrix

import "errors"

// Common errors.
var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrRagged        = errors.New("ragged rows")
)
