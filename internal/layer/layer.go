// Package layer implements the layer variants of the training engine.
//
// A Layer is a tagged variant: every layer owns a weight matrix of shape
// [OutputSize, InputSize] and a Kind that selects how the engine runs it:
//   - Dense: plain affine transform, y = W @ flatten(x)
//   - Convolutional: 1-D sliding windows over flatten(x), unit step
//   - Pooling: 1-D max pooling over each input row
//
// The engine dispatches on Kind with a switch; the per-kind routines live in
// conv.go and pool.go.
package layer

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/minnet/internal/matrix"
)

// Kind tags the layer variant.
type Kind int

// Layer kinds.
const (
	Dense Kind = iota
	Convolutional
	Pooling
)

// String returns the lower-case name used in model files.
func (k Kind) String() string {
	switch k {
	case Dense:
		return "dense"
	case Convolutional:
		return "convolutional"
	case Pooling:
		return "pooling"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String. The short forms "conv" and "pool"
// are accepted as well.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "dense":
		return Dense, nil
	case "convolutional", "conv":
		return Convolutional, nil
	case "pooling", "pool":
		return Pooling, nil
	default:
		return 0, fmt.Errorf("unknown layer kind %q", s)
	}
}

// Layer is one stage of the network.
//
// Weights always have shape [OutputSize, InputSize]; SetWeights enforces it.
type Layer struct {
	Kind       Kind
	InputSize  int
	OutputSize int
	KernelSize int // Convolutional only
	PoolSize   int // Pooling only
	Stride     int // Convolutional and Pooling; stored, convolution always steps by 1

	weights *matrix.Matrix
}

// NewDense creates a dense layer with Xavier-initialized weights of shape
// [outputSize, inputSize].
//
// A nil rng draws from the package-level source.
func NewDense(inputSize, outputSize int, rng *rand.Rand) *Layer {
	checkSizes("dense", inputSize, outputSize)
	return &Layer{
		Kind:       Dense,
		InputSize:  inputSize,
		OutputSize: outputSize,
		weights:    Xavier(outputSize, inputSize, rng),
	}
}

// NewConvolutional creates a 1-D convolutional layer.
//
// Parameters:
//   - inputSize: Number of cells in the flattened layer input
//   - outputSize: Number of filters; each weight row is one filter
//   - kernelSize: Window length; the first kernelSize weights of a row form the kernel
//   - stride: Stored with the layer; the convolution itself uses a unit step
//   - rng: Source for weight initialization (nil for the package-level source)
func NewConvolutional(inputSize, outputSize, kernelSize, stride int, rng *rand.Rand) *Layer {
	checkSizes("convolutional", inputSize, outputSize)
	if kernelSize <= 0 || kernelSize > inputSize {
		panic(fmt.Sprintf("layer: invalid kernel size %d for input size %d", kernelSize, inputSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("layer: invalid stride %d", stride))
	}
	return &Layer{
		Kind:       Convolutional,
		InputSize:  inputSize,
		OutputSize: outputSize,
		KernelSize: kernelSize,
		Stride:     stride,
		weights:    Xavier(outputSize, inputSize, rng),
	}
}

// NewPooling creates a 1-D max pooling layer over inputs with outputSize rows
// of inputSize cells each.
//
// The weights only carry the inherited shape; the pooling itself does not
// read them.
func NewPooling(inputSize, outputSize, poolSize, stride int, rng *rand.Rand) *Layer {
	checkSizes("pooling", inputSize, outputSize)
	if poolSize <= 0 || poolSize > inputSize {
		panic(fmt.Sprintf("layer: invalid pool size %d for row length %d", poolSize, inputSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("layer: invalid stride %d", stride))
	}
	return &Layer{
		Kind:       Pooling,
		InputSize:  inputSize,
		OutputSize: outputSize,
		PoolSize:   poolSize,
		Stride:     stride,
		weights:    Xavier(outputSize, inputSize, rng),
	}
}

func checkSizes(kind string, inputSize, outputSize int) {
	if inputSize <= 0 || outputSize <= 0 {
		panic(fmt.Sprintf("layer: invalid %s sizes in=%d out=%d", kind, inputSize, outputSize))
	}
}

// Weights returns the weight matrix. Callers must not modify it; use
// SetWeights to replace it.
func (l *Layer) Weights() *matrix.Matrix {
	return l.weights
}

// SetWeights replaces the weight matrix.
//
// Returns matrix.ErrShapeMismatch unless w is [OutputSize, InputSize].
func (l *Layer) SetWeights(w *matrix.Matrix) error {
	if w.Rows() != l.OutputSize || w.Cols() != l.InputSize {
		return fmt.Errorf("%w: %s weights must be [%d,%d], got [%d,%d]",
			matrix.ErrShapeMismatch, l.Kind, l.OutputSize, l.InputSize, w.Rows(), w.Cols())
	}
	l.weights = w
	return nil
}

// Clone returns a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	c := *l
	c.weights = l.weights.Clone()
	return &c
}

// String returns a string representation of the layer.
func (l *Layer) String() string {
	switch l.Kind {
	case Convolutional:
		return fmt.Sprintf("Convolutional(in=%d, filters=%d, kernel=%d, stride=%d)", l.InputSize, l.OutputSize, l.KernelSize, l.Stride)
	case Pooling:
		return fmt.Sprintf("Pooling(rows=%d, cols=%d, pool=%d, stride=%d)", l.OutputSize, l.InputSize, l.PoolSize, l.Stride)
	default:
		return fmt.Sprintf("Dense(in=%d, out=%d)", l.InputSize, l.OutputSize)
	}
}
