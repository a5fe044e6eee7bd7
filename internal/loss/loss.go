// Package loss implements the scalar loss functions used for validation and
// early stopping.
//
// Every function compares a prediction vector with a target vector of the same
// length and returns the mean of the per-element terms.
package loss

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Common errors.
var (
	ErrLengthMismatch = errors.New("length mismatch")
	ErrUnknown        = errors.New("unknown loss function")
)

// Func computes a loss between prediction and target.
type Func func(prediction, target []float64) (float64, error)

// Default is the loss used when no name is given.
const Default = "mean_squared_error"

var registry = map[string]Func{
	"mean_squared_error":        MeanSquaredError,
	"mean_absolute_error":       MeanAbsoluteError,
	"cross_entropy_loss":        CrossEntropy,
	"binary_cross_entropy":      BinaryCrossEntropy,
	"categorical_cross_entropy": CategoricalCrossEntropy,
}

// Lookup resolves a loss function by name. An empty name selects Default.
func Lookup(name string) (Func, error) {
	if name == "" {
		name = Default
	}
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return f, nil
}

// Names returns the registered names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// mean evaluates term over paired elements and averages the result.
// Empty vectors have zero loss.
func mean(prediction, target []float64, term func(p, t float64) float64) (float64, error) {
	if len(prediction) != len(target) {
		return 0, fmt.Errorf("%w: prediction has %d values, target has %d", ErrLengthMismatch, len(prediction), len(target))
	}
	if len(prediction) == 0 {
		return 0, nil
	}
	terms := make([]float64, len(prediction))
	for i := range prediction {
		terms[i] = term(prediction[i], target[i])
	}
	return floats.Sum(terms) / float64(len(terms)), nil
}

// MeanSquaredError computes mean((p - t)²).
func MeanSquaredError(prediction, target []float64) (float64, error) {
	return mean(prediction, target, func(p, t float64) float64 {
		d := p - t
		return d * d
	})
}

// MeanAbsoluteError computes mean(|p - t|).
func MeanAbsoluteError(prediction, target []float64) (float64, error) {
	return mean(prediction, target, func(p, t float64) float64 {
		return math.Abs(p - t)
	})
}

// CrossEntropy computes -mean(t * log(p)).
func CrossEntropy(prediction, target []float64) (float64, error) {
	l, err := mean(prediction, target, func(p, t float64) float64 {
		return t * math.Log(p)
	})
	return -l, err
}

// BinaryCrossEntropy computes -mean(t*log(p) + (1-t)*log(1-p)).
func BinaryCrossEntropy(prediction, target []float64) (float64, error) {
	l, err := mean(prediction, target, func(p, t float64) float64 {
		return t*math.Log(p) + (1-t)*math.Log(1-p)
	})
	return -l, err
}

// CategoricalCrossEntropy computes -mean(t * log(p)) over one-hot targets.
func CategoricalCrossEntropy(prediction, target []float64) (float64, error) {
	return CrossEntropy(prediction, target)
}
