package nn

import (
	"fmt"

	"github.com/born-ml/minnet/internal/layer"
	"github.com/born-ml/minnet/internal/matrix"
)

// backward computes the weight delta of every layer for one sample from its
// forward cache. It only reads the network.
func (n *Network) backward(outputs []*matrix.Matrix, target []float64) ([]*matrix.Matrix, error) {
	top := len(n.layers)
	errs, err := matrix.Subtract(matrix.Column(target), outputs[top])
	if err != nil {
		return nil, fmt.Errorf("output error: %w", err)
	}

	deltas := make([]*matrix.Matrix, top)
	for i := top - 1; i >= 0; i-- {
		l := n.layers[i]

		grad, err := matrix.ElementwiseMultiply(errs, n.act.Backward(outputs[i+1]))
		if err != nil {
			return nil, fmt.Errorf("layer %d gradient: %w", i, err)
		}

		deltas[i], err = weightDelta(l, grad, outputs[i])
		if err != nil {
			return nil, fmt.Errorf("layer %d delta: %w", i, err)
		}

		if i > 0 {
			errs, err = routeError(l, errs, outputs[i])
			if err != nil {
				return nil, fmt.Errorf("layer %d error: %w", i, err)
			}
		}
	}
	return deltas, nil
}

// weightDelta returns the [OutputSize, InputSize] delta of l given its
// gradient and its cached input.
func weightDelta(l *layer.Layer, grad, input *matrix.Matrix) (*matrix.Matrix, error) {
	switch l.Kind {
	case layer.Convolutional:
		return layer.ConvDelta(l, input)
	case layer.Pooling:
		return layer.PoolDelta(l, grad, input)
	default:
		return matrix.Multiply(grad, matrix.Transpose(input.Flatten()))
	}
}

// routeError sends the error at the output of l back to its input, shaped
// like input.
func routeError(l *layer.Layer, errs, input *matrix.Matrix) (*matrix.Matrix, error) {
	switch l.Kind {
	case layer.Pooling:
		return layer.RoutePool(l, errs, input)

	case layer.Convolutional:
		product, err := matrix.Multiply(matrix.Transpose(l.Weights()), errs)
		if err != nil {
			return nil, err
		}
		folded, err := layer.FoldConv(l, product)
		if err != nil {
			return nil, err
		}
		return folded.Reshape(input.Shape())

	default:
		product, err := matrix.Multiply(matrix.Transpose(l.Weights()), errs)
		if err != nil {
			return nil, err
		}
		return product.Reshape(input.Shape())
	}
}
