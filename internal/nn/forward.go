package nn

import (
	"fmt"

	"github.com/born-ml/minnet/internal/layer"
	"github.com/born-ml/minnet/internal/matrix"
)

// forward runs input through every layer and returns the cache of outputs:
// outputs[0] is the input column, outputs[i+1] the activated output of
// layer i. Dropout is applied to every layer except the last.
func (n *Network) forward(input []float64) ([]*matrix.Matrix, error) {
	outputs := make([]*matrix.Matrix, 0, len(n.layers)+1)
	cur := matrix.Column(input)
	outputs = append(outputs, cur)

	last := len(n.layers) - 1
	for i, l := range n.layers {
		z, err := propagate(l, cur)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, l.Kind, err)
		}

		a := n.act.Forward(z)
		if i < last && n.dropoutRate > 0 {
			a = matrix.Dropout(a, n.dropoutRate, n.rng)
		}
		outputs = append(outputs, a)
		cur = a
	}
	return outputs, nil
}

// propagate computes the pre-activation output of l.
func propagate(l *layer.Layer, prev *matrix.Matrix) (*matrix.Matrix, error) {
	switch l.Kind {
	case layer.Convolutional:
		return layer.Convolve(l, prev)
	case layer.Pooling:
		return layer.MaxPool(l, prev)
	default:
		return matrix.Multiply(l.Weights(), prev.Flatten())
	}
}

// Query runs a forward pass and returns the flattened output. Dropout is
// still applied to hidden layers when the dropout rate is positive.
//
// The input must have InputNodes finite values.
func (n *Network) Query(input []float64) ([]float64, error) {
	if err := validateVector("input", input, n.inputNodes); err != nil {
		return nil, err
	}
	outputs, err := n.forward(input)
	if err != nil {
		return nil, err
	}
	return outputs[len(outputs)-1].Floats(), nil
}
