package matrix

import (
	"fmt"
	"math"

	"github.com/born-ml/minnet/internal/parallel"
)

// parallelRows spreads Multiply across goroutines once the left operand has
// enough rows; small products stay sequential.
var parallelRows = parallel.DefaultConfig()

// Multiply returns the matrix product a @ b.
//
// A hole contributes 0 to the inner-product sum, so it never turns an output
// cell into a hole.
// Returns ErrShapeMismatch when a.Cols() != b.Rows().
func Multiply(a, b *Matrix) (*Matrix, error) {
	if a.cols != b.rows {
		return nil, fmt.Errorf("%w: multiply [%d,%d] @ [%d,%d]", ErrShapeMismatch, a.rows, a.cols, b.rows, b.cols)
	}

	m, k, n := a.rows, a.cols, b.cols
	out := New(m, n)

	parallel.For(m, func(i int) {
		for j := 0; j < n; j++ {
			var sum float64
			for kIdx := 0; kIdx < k; kIdx++ {
				sum += a.data[i*k+kIdx].OrZero() * b.data[kIdx*n+j].OrZero()
			}
			out.data[i*n+j] = Num(sum)
		}
	}, parallelRows)

	return out, nil
}

// Transpose returns the transpose of a.
func Transpose(a *Matrix) *Matrix {
	out := New(a.cols, a.rows)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			out.data[j*a.rows+i] = a.data[i*a.cols+j]
		}
	}
	return out
}

// Add returns a + b elementwise.
func Add(a, b *Matrix) (*Matrix, error) {
	return zipWith("add", a, b, func(x, y float64) float64 { return x + y })
}

// Subtract returns a - b elementwise.
func Subtract(a, b *Matrix) (*Matrix, error) {
	return zipWith("subtract", a, b, func(x, y float64) float64 { return x - y })
}

// ElementwiseMultiply returns the Hadamard product of a and b.
func ElementwiseMultiply(a, b *Matrix) (*Matrix, error) {
	return zipWith("elementwise multiply", a, b, func(x, y float64) float64 { return x * y })
}

func zipWith(op string, a, b *Matrix, f func(x, y float64) float64) (*Matrix, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("%w: %s [%d,%d] and [%d,%d]", ErrShapeMismatch, op, a.rows, a.cols, b.rows, b.cols)
	}
	out := New(a.rows, a.cols)
	for i := range a.data {
		out.data[i] = lift(a.data[i], b.data[i], f)
	}
	return out, nil
}

// Apply maps f over every present cell of a. Holes stay holes.
func Apply(a *Matrix, f func(float64) float64) *Matrix {
	out := New(a.rows, a.cols)
	for i, c := range a.data {
		if c.absent {
			out.data[i] = c
			continue
		}
		out.data[i] = Num(f(c.value))
	}
	return out
}

// ScalarMultiply returns s * a.
func ScalarMultiply(s float64, a *Matrix) *Matrix {
	return Apply(a, func(x float64) float64 { return x * s })
}

// ScalarAdd returns a + s.
func ScalarAdd(s float64, a *Matrix) *Matrix {
	return Apply(a, func(x float64) float64 { return x + s })
}

// Power raises every cell of a to p.
func Power(a *Matrix, p float64) *Matrix {
	return Apply(a, func(x float64) float64 { return math.Pow(x, p) })
}

// Sign returns -1 for negative cells and 1 otherwise, including 0.
func Sign(a *Matrix) *Matrix {
	return Apply(a, func(x float64) float64 {
		if x < 0 {
			return -1
		}
		return 1
	})
}

// Sum returns the sum of all present cells.
func Sum(a *Matrix) float64 {
	var s float64
	for _, c := range a.data {
		s += c.OrZero()
	}
	return s
}
