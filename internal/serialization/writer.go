package serialization

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Encode stamps m with the checksum of its layers and writes it to w as
// indented JSON.
func Encode(w io.Writer, m *Model) error {
	sum, err := ComputeChecksum(m.Layers)
	if err != nil {
		return err
	}
	m.Checksum = sum

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// Write saves m to path, replacing any existing file.
func Write(path string, m *Model) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Encode(file, m); err != nil {
		_ = file.Close() // Best effort close on error
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
