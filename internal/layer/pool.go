package layer

import (
	"fmt"

	"github.com/born-ml/minnet/internal/matrix"
)

// PoolWidth returns the number of pooling windows over a row of cols cells:
// 1 when cols <= poolSize, otherwise ceil((cols-poolSize)/stride) + 1.
//
// The last window may run past the end of the row; MaxPool leaves it a hole.
func PoolWidth(cols, poolSize, stride int) int {
	span := cols - poolSize
	if span <= 0 {
		return 1
	}
	return (span+stride-1)/stride + 1
}

// Width returns the pooling output width of a pooling layer.
func (l *Layer) Width() int {
	return PoolWidth(l.InputSize, l.PoolSize, l.Stride)
}

// MaxPool computes the forward pass of a pooling layer.
//
// Each input row i < OutputSize is pooled independently with windows of
// PoolSize cells starting every Stride cells. A window that would run past the
// end of the row is skipped and its output cell is a hole, so the output can
// be ragged. Rows missing from the input are holes as well.
//
// Output shape: [OutputSize, Width()].
func MaxPool(l *Layer, input *matrix.Matrix) (*matrix.Matrix, error) {
	if input.Cols() != l.InputSize {
		return nil, fmt.Errorf("%w: pooling expects rows of %d cells, got %d",
			matrix.ErrShapeMismatch, l.InputSize, input.Cols())
	}

	width := l.Width()
	out := matrix.Filled(l.OutputSize, width, matrix.Hole())
	for i := 0; i < l.OutputSize && i < input.Rows(); i++ {
		row := input.Row(i)
		for j := 0; j < width; j++ {
			pos, ok := l.argmax(row, j)
			if !ok {
				continue
			}
			out.Set(i, j, row[j*l.Stride+pos])
		}
	}
	return out, nil
}

// PoolDelta routes the gradient of each pooling window to the input position
// that held the window maximum. Every other position receives 0.
//
// grad has the pooling output shape; the result has the weight shape
// [OutputSize, InputSize].
func PoolDelta(l *Layer, grad, input *matrix.Matrix) (*matrix.Matrix, error) {
	return l.route(grad, input, l.OutputSize)
}

// RoutePool sends the error of each pooling window back to the input position
// that held the window maximum, producing an error in the input shape.
func RoutePool(l *Layer, errs, input *matrix.Matrix) (*matrix.Matrix, error) {
	return l.route(errs, input, input.Rows())
}

func (l *Layer) route(signal, input *matrix.Matrix, rows int) (*matrix.Matrix, error) {
	width := l.Width()
	if signal.Rows() != l.OutputSize || signal.Cols() != width {
		return nil, fmt.Errorf("%w: pooling signal must be [%d,%d], got [%d,%d]",
			matrix.ErrShapeMismatch, l.OutputSize, width, signal.Rows(), signal.Cols())
	}
	if input.Cols() != l.InputSize {
		return nil, fmt.Errorf("%w: pooling expects rows of %d cells, got %d",
			matrix.ErrShapeMismatch, l.InputSize, input.Cols())
	}

	out := matrix.New(rows, l.InputSize)
	for i := 0; i < rows && i < l.OutputSize && i < input.Rows(); i++ {
		row := input.Row(i)
		for j := 0; j < width; j++ {
			pos, ok := l.argmax(row, j)
			if !ok {
				continue
			}
			g, present := signal.At(i, j).Value()
			if !present {
				continue
			}
			start := j * l.Stride
			cur := out.At(i, start+pos).OrZero()
			out.SetFloat(i, start+pos, cur+g)
		}
	}
	return out, nil
}

// argmax returns the offset of the first maximum of window j within row,
// relative to the window start. ok is false when the window runs past the
// row end or holds only holes.
func (l *Layer) argmax(row []matrix.Cell, j int) (int, bool) {
	start := j * l.Stride
	end := start + l.PoolSize
	if end > len(row) {
		return 0, false
	}

	best, found := 0, false
	var bestVal float64
	for q, c := range row[start:end] {
		v, ok := c.Value()
		if !ok {
			continue
		}
		if !found || v > bestVal {
			best, bestVal, found = q, v, true
		}
	}
	return best, found
}
