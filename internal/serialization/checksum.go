package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ComputeChecksum returns the hex SHA-256 of the canonical (compact JSON)
// encoding of layers.
func ComputeChecksum(layers []LayerRecord) (string, error) {
	payload, err := json.Marshal(layers)
	if err != nil {
		return "", fmt.Errorf("failed to marshal layers: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// ValidateChecksum recomputes the checksum of m's layers and compares it to
// the stored one. Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(m *Model) error {
	computed, err := ComputeChecksum(m.Layers)
	if err != nil {
		return err
	}
	if computed != m.Checksum {
		return fmt.Errorf("%w: stored %.12s, computed %.12s", ErrChecksumMismatch, m.Checksum, computed)
	}
	return nil
}
