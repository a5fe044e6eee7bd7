package layer

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/minnet/internal/matrix"
)

// Windows returns the number of unit-step windows a convolutional layer
// slides over its flattened input.
func (l *Layer) Windows() int {
	return l.InputSize - l.KernelSize + 1
}

// Convolve computes the forward pass of a convolutional layer.
//
// The input is flattened to InputSize cells. Output cell [i][j] is the dot
// product of the first KernelSize weights of row i with window j of the
// input. Holes count as 0 on both sides.
//
// Output shape: [OutputSize, Windows()].
func Convolve(l *Layer, input *matrix.Matrix) (*matrix.Matrix, error) {
	return slide(l, input, l.Windows())
}

// ConvDelta recomputes the forward window products against the current
// weights and the cached input, laid out in the weight shape.
//
// Columns [0, Windows()) hold the window products; the remaining columns are
// holes.
func ConvDelta(l *Layer, input *matrix.Matrix) (*matrix.Matrix, error) {
	return slide(l, input, l.InputSize)
}

func slide(l *Layer, input *matrix.Matrix, cols int) (*matrix.Matrix, error) {
	if input.Len() != l.InputSize {
		return nil, fmt.Errorf("%w: convolution expects %d input cells, got %d",
			matrix.ErrShapeMismatch, l.InputSize, input.Len())
	}

	x := orZero(input.Cells())
	k := l.KernelSize
	windows := l.Windows()

	out := matrix.Filled(l.OutputSize, cols, matrix.Hole())
	for i := 0; i < l.OutputSize; i++ {
		kernel := orZero(l.weights.Row(i)[:k])
		for j := 0; j < windows; j++ {
			out.SetFloat(i, j, floats.Dot(kernel, x[j:j+k]))
		}
	}
	return out, nil
}

// FoldConv turns the product W^T @ error of a convolutional layer into an
// error over its flattened input.
//
// product has shape [InputSize, Windows()]; cell [q][j] is the error of
// window j weighted by kernel position q. Input position p collects every
// cell with q + j == p and q < KernelSize (overlap-add).
//
// Output shape: [InputSize, 1].
func FoldConv(l *Layer, product *matrix.Matrix) (*matrix.Matrix, error) {
	windows := l.Windows()
	if product.Rows() != l.InputSize || product.Cols() != windows {
		return nil, fmt.Errorf("%w: fold expects [%d,%d], got [%d,%d]",
			matrix.ErrShapeMismatch, l.InputSize, windows, product.Rows(), product.Cols())
	}

	out := matrix.New(l.InputSize, 1)
	for p := 0; p < l.InputSize; p++ {
		var sum float64
		for j := 0; j < windows; j++ {
			q := p - j
			if q < 0 || q >= l.KernelSize {
				continue
			}
			sum += product.At(q, j).OrZero()
		}
		out.SetFloat(p, 0, sum)
	}
	return out, nil
}

func orZero(cells []matrix.Cell) []float64 {
	out := make([]float64, len(cells))
	for i, c := range cells {
		out[i] = c.OrZero()
	}
	return out
}
