// Package activation implements the activation functions of the engine and
// their derivatives.
//
// Every derivative is evaluated on the activated output y, which is what the
// backward pass has cached. For leaky_relu and elu the sign of y equals the
// sign of the pre-activation input. relu maps every x <= 0 to y = 0, so its
// derivative treats y = 0 as the non-positive side.
package activation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/born-ml/minnet/internal/matrix"
)

// ErrUnknown is returned by Lookup for an unregistered name.
var ErrUnknown = errors.New("unknown activation function")

// Slopes for the negative side of leaky_relu and elu.
const (
	LeakyReLUAlpha = 0.01
	ELUAlpha       = 1.0
)

// Activation pairs an activation with its derivative.
type Activation struct {
	Name string

	// Derivative is evaluated on the activated output.
	Derivative func(y float64) float64

	scalar func(x float64) float64
	vector func(m *matrix.Matrix) *matrix.Matrix
}

// Forward activates every cell of m.
func (a Activation) Forward(m *matrix.Matrix) *matrix.Matrix {
	if a.vector != nil {
		return a.vector(m)
	}
	return matrix.Apply(m, a.scalar)
}

// Backward evaluates the derivative on every cell of the activated output y.
func (a Activation) Backward(y *matrix.Matrix) *matrix.Matrix {
	return matrix.Apply(y, a.Derivative)
}

var registry = map[string]Activation{
	"sigmoid":    {Name: "sigmoid", scalar: Sigmoid, Derivative: SigmoidDerivative},
	"tanh":       {Name: "tanh", scalar: Tanh, Derivative: TanhDerivative},
	"relu":       {Name: "relu", scalar: ReLU, Derivative: ReLUDerivative},
	"leaky_relu": {Name: "leaky_relu", scalar: LeakyReLU, Derivative: LeakyReLUDerivative},
	"elu":        {Name: "elu", scalar: ELU, Derivative: ELUDerivative},
	"swish":      {Name: "swish", scalar: Swish, Derivative: SwishDerivative},
	"softmax":    {Name: "softmax", vector: SoftmaxColumns, Derivative: SoftmaxDerivative},
}

// Lookup resolves an activation by name.
func Lookup(name string) (Activation, error) {
	a, ok := registry[name]
	if !ok {
		return Activation{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return a, nil
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

// Sigmoid computes 1 / (1 + exp(-x)).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SigmoidDerivative computes y * (1 - y).
func SigmoidDerivative(y float64) float64 {
	return y * (1.0 - y)
}

// Tanh computes the hyperbolic tangent.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// TanhDerivative computes 1 - y².
func TanhDerivative(y float64) float64 {
	return 1.0 - y*y
}

// ReLU computes max(0, x).
func ReLU(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

// ReLUDerivative is 0 for non-positive outputs and 1 otherwise.
func ReLUDerivative(y float64) float64 {
	if y <= 0 {
		return 0
	}
	return 1.0
}

// LeakyReLU computes x for x >= 0 and alpha*x otherwise.
func LeakyReLU(x float64) float64 {
	if x < 0 {
		return LeakyReLUAlpha * x
	}
	return x
}

// LeakyReLUDerivative is alpha for negative values and 1 otherwise.
func LeakyReLUDerivative(y float64) float64 {
	if y < 0 {
		return LeakyReLUAlpha
	}
	return 1.0
}

// ELU computes x for x >= 0 and alpha*(exp(x)-1) otherwise.
func ELU(x float64) float64 {
	if x < 0 {
		return ELUAlpha * (math.Exp(x) - 1)
	}
	return x
}

// ELUDerivative is alpha*exp(x) = y + alpha on the negative side and 1 otherwise.
func ELUDerivative(y float64) float64 {
	if y < 0 {
		return y + ELUAlpha
	}
	return 1.0
}

// Swish computes x * sigmoid(x).
func Swish(x float64) float64 {
	return x * Sigmoid(x)
}

// SwishDerivative approximates the derivative from the activated value:
// y + sigmoid(y) * (1 - y).
func SwishDerivative(y float64) float64 {
	return y + Sigmoid(y)*(1-y)
}

// Softmax returns exp(x_i) / sum(exp(x)) for a vector, shifted by the maximum.
func Softmax(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	peak := math.Inf(-1)
	for _, v := range x {
		peak = math.Max(peak, v)
	}
	var sum float64
	for i, v := range x {
		out[i] = math.Exp(v - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// SoftmaxDerivative computes y * (1 - y), the diagonal of the softmax
// Jacobian. Cross terms are ignored.
func SoftmaxDerivative(y float64) float64 {
	return y * (1.0 - y)
}

// SoftmaxColumns applies Softmax to every column of m. Holes are left out of
// the normalization and stay holes.
func SoftmaxColumns(m *matrix.Matrix) *matrix.Matrix {
	out := matrix.New(m.Rows(), m.Cols())
	for j := 0; j < m.Cols(); j++ {
		var (
			vals []float64
			rows []int
		)
		for i := 0; i < m.Rows(); i++ {
			if v, ok := m.At(i, j).Value(); ok {
				vals = append(vals, v)
				rows = append(rows, i)
			} else {
				out.Set(i, j, matrix.Hole())
			}
		}
		for k, p := range Softmax(vals) {
			out.SetFloat(rows[k], j, p)
		}
	}
	return out
}
