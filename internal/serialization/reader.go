package serialization

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads a model from r and verifies its header, layer records and
// checksum.
func Decode(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if err := ValidateModel(&m); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := ValidateChecksum(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Read loads and verifies the model stored at path.
func Read(path string) (*Model, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	m, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return m, nil
}
