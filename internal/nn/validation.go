package nn

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/minnet/internal/loss"
	"github.com/born-ml/minnet/internal/matrix"
)

// Sentinel errors. Match them with errors.Is.
var (
	// ErrInvalidArgument reports an out-of-range or malformed parameter.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLengthMismatch reports input/target counts or vector lengths that
	// do not line up.
	ErrLengthMismatch = loss.ErrLengthMismatch

	// ErrShapeMismatch reports incompatible matrix dimensions.
	ErrShapeMismatch = matrix.ErrShapeMismatch
)

// ValidationError describes a rejected argument.
type ValidationError struct {
	Field  string // Argument or config field (e.g., "learning_rate", "inputs[3]")
	Reason string // What is wrong with it
	Err    error  // ErrInvalidArgument or ErrLengthMismatch
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", e.Unwrap(), e.Field, e.Reason)
}

// Unwrap returns the sentinel the error matches.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidArgument
	}
	return e.Err
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Err: ErrInvalidArgument}
}

func mismatch(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Err: ErrLengthMismatch}
}

// validateVector checks that v has want finite entries.
func validateVector(field string, v []float64, want int) error {
	if len(v) != want {
		return mismatch(field, "has %d values, expected %d", len(v), want)
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return invalid(field, "value %d is not a finite number", i)
		}
	}
	return nil
}

// validatePairs checks an (inputs, targets) data set against the network's
// node counts.
func (n *Network) validatePairs(inputs, targets [][]float64) error {
	if len(inputs) != len(targets) {
		return mismatch("targets", "got %d targets for %d inputs", len(targets), len(inputs))
	}
	for i := range inputs {
		if err := validateVector(fmt.Sprintf("inputs[%d]", i), inputs[i], n.inputNodes); err != nil {
			return err
		}
		if err := validateVector(fmt.Sprintf("targets[%d]", i), targets[i], n.outputNodes); err != nil {
			return err
		}
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalid(field, "must be a non-negative number, got %v", v)
	}
	return nil
}

// validateConfig checks the parameters of a Config with defaults applied.
// Layer shape feasibility is checked by the builder.
func validateConfig(cfg Config) error {
	if cfg.InputNodes <= 0 {
		return invalid("input_nodes", "must be positive, got %d", cfg.InputNodes)
	}
	if cfg.OutputNodes <= 0 {
		return invalid("output_nodes", "must be positive, got %d", cfg.OutputNodes)
	}
	if cfg.BatchSize <= 0 {
		return invalid("batch_size", "must be positive, got %d", cfg.BatchSize)
	}

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"learning_rate", cfg.LearningRate},
		{"dropout_rate", cfg.DropoutRate},
		{"decay_rate", cfg.DecayRate},
		{"epsilon", cfg.Epsilon},
		{"l1_lambda", cfg.L1Lambda},
		{"l2_lambda", cfg.L2Lambda},
	} {
		if err := nonNegative(f.name, f.value); err != nil {
			return err
		}
	}
	if cfg.DropoutRate >= 1 {
		return invalid("dropout_rate", "must be below 1, got %v", cfg.DropoutRate)
	}

	for i, spec := range cfg.Hidden {
		if err := spec.validate(); err != nil {
			return invalid(fmt.Sprintf("hidden[%d]", i), "%v", err)
		}
	}
	return nil
}
