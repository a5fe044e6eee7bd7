package serialization

import "fmt"

// ValidateModel checks the header and that every layer record is
// self-consistent: known kind, positive sizes, weights of shape
// [OutputSize, InputSize].
func ValidateModel(m *Model) error {
	if m.Header.Format != FormatName {
		return &ValidationError{
			Type:    "unknown_format",
			Layer:   -1,
			Details: fmt.Sprintf("got %q, expected %q", m.Header.Format, FormatName),
		}
	}
	if m.Header.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, m.Header.FormatVersion, FormatVersion)
	}
	if len(m.Layers) == 0 {
		return &ValidationError{Type: "no_layers", Layer: -1, Details: "model has no layers"}
	}

	for i, rec := range m.Layers {
		switch rec.Kind {
		case "dense", "convolutional", "pooling":
		default:
			return &ValidationError{Type: "unknown_kind", Layer: i, Details: fmt.Sprintf("kind %q", rec.Kind)}
		}
		if rec.InputSize <= 0 || rec.OutputSize <= 0 {
			return &ValidationError{
				Type:    "layer_size",
				Layer:   i,
				Details: fmt.Sprintf("input_size=%d, output_size=%d", rec.InputSize, rec.OutputSize),
			}
		}
		if rec.Weights == nil {
			return &ValidationError{Type: "missing_weights", Layer: i, Details: "weights are null"}
		}
		if r, c := rec.Weights.Shape(); r != rec.OutputSize || c != rec.InputSize {
			return &ValidationError{
				Type:    "weight_shape",
				Layer:   i,
				Details: fmt.Sprintf("weights [%d,%d], expected [%d,%d]", r, c, rec.OutputSize, rec.InputSize),
			}
		}
	}
	return nil
}
