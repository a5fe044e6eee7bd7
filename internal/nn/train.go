package nn

import (
	"fmt"
	"sync"

	"github.com/born-ml/minnet/internal/layer"
	"github.com/born-ml/minnet/internal/matrix"
	"github.com/born-ml/minnet/internal/parallel"
)

// Workers is the number of goroutines running the backward pass of a batch.
const Workers = 4

// Sample is one (input, target) training pair.
type Sample struct {
	Input  []float64
	Target []float64
}

// Train runs one pass over the data set in consecutive mini-batches of at
// most BatchSize samples, in order.
//
// Every pair is validated before any weight changes: differing counts or
// vector lengths fail with ErrLengthMismatch, non-finite values with
// ErrInvalidArgument.
func (n *Network) Train(inputs, targets [][]float64) error {
	if err := n.validatePairs(inputs, targets); err != nil {
		return err
	}

	samples := make([]Sample, len(inputs))
	for i := range inputs {
		samples[i] = Sample{Input: inputs[i], Target: targets[i]}
	}

	for start := 0; start < len(samples); start += n.batchSize {
		end := min(start+n.batchSize, len(samples))
		if err := n.trainBatch(samples[start:end]); err != nil {
			return fmt.Errorf("batch at sample %d: %w", start, err)
		}
	}
	return nil
}

// TrainBatch applies one gradient step computed from batch.
//
// Forward passes run on the calling goroutine in order, so dropout masks are
// reproducible for a fixed seed. Backward passes run on Workers goroutines
// and their deltas are summed. If any sample fails the batch is abandoned
// and no weight changes.
func (n *Network) TrainBatch(batch []Sample) error {
	for i, s := range batch {
		if err := validateVector(fmt.Sprintf("batch[%d].input", i), s.Input, n.inputNodes); err != nil {
			return err
		}
		if err := validateVector(fmt.Sprintf("batch[%d].target", i), s.Target, n.outputNodes); err != nil {
			return err
		}
	}
	return n.trainBatch(batch)
}

func (n *Network) trainBatch(batch []Sample) error {
	if len(batch) == 0 {
		return nil
	}

	caches := make([][]*matrix.Matrix, len(batch))
	for i, s := range batch {
		outputs, err := n.forward(s.Input)
		if err != nil {
			return fmt.Errorf("sample %d forward: %w", i, err)
		}
		caches[i] = outputs
	}

	acc := newDeltaAccumulator(n.layers)
	err := parallel.ForEach(len(batch), Workers, func(i int) error {
		deltas, err := n.backward(caches[i], batch[i].Target)
		if err != nil {
			return fmt.Errorf("sample %d backward: %w", i, err)
		}
		return acc.merge(deltas)
	})
	if err != nil {
		return err
	}

	return n.applyDeltas(acc.sums, len(batch))
}

// applyDeltas computes W + (lr/size) * (delta + penalty) for every layer and
// only then installs the new weights.
func (n *Network) applyDeltas(deltas []*matrix.Matrix, size int) error {
	scale := n.learningRate / float64(size)

	updated := make([]*matrix.Matrix, len(n.layers))
	for i, l := range n.layers {
		penalty, err := regularizationPenalty(l.Weights(), n.l1Lambda, n.l2Lambda)
		if err != nil {
			return fmt.Errorf("layer %d penalty: %w", i, err)
		}
		step, err := matrix.Add(deltas[i], penalty)
		if err != nil {
			return fmt.Errorf("layer %d step: %w", i, err)
		}
		w, err := matrix.Add(l.Weights(), matrix.ScalarMultiply(scale, step))
		if err != nil {
			return fmt.Errorf("layer %d update: %w", i, err)
		}
		updated[i] = w
	}

	for i, l := range n.layers {
		if err := l.SetWeights(updated[i]); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

// regularizationPenalty returns l1 * sign(W) + l2 * W, with sign(0) = +1.
func regularizationPenalty(w *matrix.Matrix, l1, l2 float64) (*matrix.Matrix, error) {
	return matrix.Add(
		matrix.ScalarMultiply(l1, matrix.Sign(w)),
		matrix.ScalarMultiply(l2, w),
	)
}

// deltaAccumulator sums per-sample deltas from concurrent workers.
type deltaAccumulator struct {
	mu   sync.Mutex
	sums []*matrix.Matrix
}

func newDeltaAccumulator(layers []*layer.Layer) *deltaAccumulator {
	sums := make([]*matrix.Matrix, len(layers))
	for i, l := range layers {
		sums[i] = matrix.New(l.OutputSize, l.InputSize)
	}
	return &deltaAccumulator{sums: sums}
}

func (a *deltaAccumulator) merge(deltas []*matrix.Matrix) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, d := range deltas {
		sum, err := matrix.Add(a.sums[i], d)
		if err != nil {
			return fmt.Errorf("merge layer %d: %w", i, err)
		}
		a.sums[i] = sum
	}
	return nil
}
