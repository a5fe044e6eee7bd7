package nn

import (
	"fmt"

	"github.com/born-ml/minnet/internal/loss"
)

// CalculateLoss averages the named loss over every (input, target) pair,
// using Query for the predictions. An empty name selects
// mean_squared_error.
func (n *Network) CalculateLoss(inputs, targets [][]float64, lossName string) (float64, error) {
	fn, err := loss.Lookup(lossName)
	if err != nil {
		return 0, invalid("loss", "%v", err)
	}
	if len(inputs) == 0 {
		return 0, invalid("inputs", "no samples to evaluate")
	}
	if err := n.validatePairs(inputs, targets); err != nil {
		return 0, err
	}

	var total float64
	for i := range inputs {
		pred, err := n.Query(inputs[i])
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		l, err := fn(pred, targets[i])
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		total += l
	}
	return total / float64(len(inputs)), nil
}
