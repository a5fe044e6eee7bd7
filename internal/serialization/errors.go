package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrInvalidModel       = errors.New("invalid model")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "weight_shape", "unknown_format")
	Layer   int    // Index of the layer involved, or -1
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Layer >= 0 {
		return fmt.Sprintf("%s: layer %d: %s", e.Type, e.Layer, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap makes every ValidationError match ErrInvalidModel.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidModel
}
