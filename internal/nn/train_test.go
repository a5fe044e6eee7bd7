package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/minnet/internal/loss"
	"github.com/born-ml/minnet/internal/matrix"
)

var xorData = []Sample{
	{Input: []float64{0, 0}, Target: []float64{0}},
	{Input: []float64{0, 1}, Target: []float64{1}},
	{Input: []float64{1, 0}, Target: []float64{1}},
	{Input: []float64{1, 1}, Target: []float64{0}},
}

// learnsXOR trains a 2-4-1 sigmoid network on randomly drawn single samples.
func learnsXOR(t *testing.T, seed int64) bool {
	t.Helper()

	n, err := New(Config{
		InputNodes:   2,
		Hidden:       []LayerSpec{Dense(4)},
		OutputNodes:  1,
		LearningRate: 0.1,
		Seed:         seed,
	})
	require.NoError(t, err)

	//nolint:gosec // test data order
	pick := rand.New(rand.NewSource(seed))
	for step := 0; step < 30000; step++ {
		s := xorData[pick.Intn(len(xorData))]
		require.NoError(t, n.TrainBatch([]Sample{s}))
	}

	for _, s := range xorData {
		out, err := n.Query(s.Input)
		require.NoError(t, err)
		if math.Round(out[0]) != s.Target[0] {
			return false
		}
	}
	return true
}

func TestXOR(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping XOR training in short mode")
	}

	// Plain gradient steps without bias can stall in a local minimum for an
	// unlucky initialization, so a few seeds are tried.
	for seed := int64(1); seed <= 5; seed++ {
		if learnsXOR(t, seed) {
			return
		}
		t.Logf("seed %d did not converge", seed)
	}
	t.Fatal("network did not learn XOR for any seed")
}

func TestSingleStepLowersLoss(t *testing.T) {
	input := []float64{0.5, -0.3, 0.8}
	target := []float64{0.9, 0.1}

	improved := 0
	for seed := int64(1); seed <= 10; seed++ {
		n, err := New(Config{
			InputNodes:   3,
			Hidden:       []LayerSpec{Dense(5)},
			OutputNodes:  2,
			LearningRate: 0.01,
			Seed:         seed,
		})
		require.NoError(t, err)

		before, err := n.CalculateLoss([][]float64{input}, [][]float64{target}, loss.Default)
		require.NoError(t, err)
		require.NoError(t, n.Train([][]float64{input}, [][]float64{target}))
		after, err := n.CalculateLoss([][]float64{input}, [][]float64{target}, loss.Default)
		require.NoError(t, err)

		if after < before {
			improved++
		}
	}
	assert.Positive(t, improved)
}

func TestTrainLengthMismatchLeavesWeights(t *testing.T) {
	n, err := New(Config{InputNodes: 2, Hidden: []LayerSpec{Dense(3)}, OutputNodes: 1, LearningRate: 0.5, Seed: 11})
	require.NoError(t, err)
	before := snapshot(n)

	err = n.Train([][]float64{{0, 1}, {1, 1}}, [][]float64{{1}})
	require.ErrorIs(t, err, ErrLengthMismatch)
	assertWeightsEqual(t, before, n)

	// A bad vector anywhere in the set rejects the whole call.
	err = n.Train([][]float64{{0, 1}, {1}}, [][]float64{{1}, {0}})
	require.ErrorIs(t, err, ErrLengthMismatch)
	assertWeightsEqual(t, before, n)

	err = n.TrainBatch([]Sample{{Input: []float64{0, math.NaN()}, Target: []float64{1}}})
	require.ErrorIs(t, err, ErrInvalidArgument)
	assertWeightsEqual(t, before, n)
}

func TestTrainChangesWeights(t *testing.T) {
	n, err := New(Config{InputNodes: 2, Hidden: []LayerSpec{Dense(3)}, OutputNodes: 1, LearningRate: 0.5, BatchSize: 2, Seed: 4})
	require.NoError(t, err)
	before := snapshot(n)

	inputs := [][]float64{{0, 1}, {1, 0}, {1, 1}}
	targets := [][]float64{{1}, {1}, {0}}
	require.NoError(t, n.Train(inputs, targets))

	for i, l := range n.Layers() {
		assert.False(t, before[i].Equal(l.Weights()), "layer %d was not updated", i)
	}
}

func TestTrainBatchMatchesSequentialSum(t *testing.T) {
	cfg := Config{InputNodes: 2, Hidden: []LayerSpec{Dense(3)}, OutputNodes: 1, LearningRate: 0.3, Seed: 21}
	n, err := New(cfg)
	require.NoError(t, err)

	// Reference: the mean of per-sample deltas computed one at a time.
	ref, err := New(cfg)
	require.NoError(t, err)
	sums := make([]*matrix.Matrix, len(ref.layers))
	for i, l := range ref.layers {
		sums[i] = matrix.New(l.OutputSize, l.InputSize)
	}
	for _, s := range xorData {
		outputs, err := ref.forward(s.Input)
		require.NoError(t, err)
		deltas, err := ref.backward(outputs, s.Target)
		require.NoError(t, err)
		for i := range sums {
			sums[i], err = matrix.Add(sums[i], deltas[i])
			require.NoError(t, err)
		}
	}
	require.NoError(t, ref.applyDeltas(sums, len(xorData)))

	require.NoError(t, n.TrainBatch(xorData))

	for i, l := range n.Layers() {
		want := ref.layers[i].Weights().Floats()
		got := l.Weights().Floats()
		require.Len(t, got, len(want))
		for j := range want {
			assert.InDelta(t, want[j], got[j], 1e-12)
		}
	}
}

func TestRegularizationPenalty(t *testing.T) {
	w := matrix.MustFromRows([][]float64{{-2, 0, 3}})

	p, err := regularizationPenalty(w, 0.5, 0.1)
	require.NoError(t, err)

	got := p.Floats()
	want := []float64{-0.7, 0.5, 0.8}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestRegularizationPenaltyIsAdded(t *testing.T) {
	// Zero delta: the update reduces to W + lr*(l2*W).
	n, err := New(Config{InputNodes: 1, OutputNodes: 1, LearningRate: 1, L2Lambda: 0.5, Seed: 2})
	require.NoError(t, err)
	w := n.layers[0].Weights().At(0, 0).OrZero()

	zero := []*matrix.Matrix{matrix.New(1, 1)}
	require.NoError(t, n.applyDeltas(zero, 1))
	assert.InDelta(t, w*1.5, n.layers[0].Weights().At(0, 0).OrZero(), 1e-15)
}

func TestMixedStackTrains(t *testing.T) {
	n, err := New(Config{
		InputNodes:   8,
		Hidden:       []LayerSpec{Conv(2, 3, 1), Pool(2, 3), Dense(4)},
		OutputNodes:  2,
		LearningRate: 0.05,
		L1Lambda:     0.001,
		Seed:         13,
	})
	require.NoError(t, err)

	//nolint:gosec // test data
	rng := rand.New(rand.NewSource(13))
	inputs := make([][]float64, 12)
	targets := make([][]float64, 12)
	for i := range inputs {
		inputs[i] = make([]float64, 8)
		for j := range inputs[i] {
			inputs[i][j] = rng.Float64()
		}
		targets[i] = []float64{float64(i % 2), float64((i + 1) % 2)}
	}

	for epoch := 0; epoch < 5; epoch++ {
		require.NoError(t, n.Train(inputs, targets))
	}

	for _, in := range inputs {
		out, err := n.Query(in)
		require.NoError(t, err)
		require.Len(t, out, 2)
		for _, v := range out {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		}
	}

	// Convolution deltas only fill the window columns.
	conv := n.Layers()[0].Weights()
	for i := 0; i < conv.Rows(); i++ {
		assert.True(t, conv.At(i, conv.Cols()-1).IsHole())
	}
}

func TestBackwardRejectsWrongTarget(t *testing.T) {
	n, err := New(Config{InputNodes: 2, OutputNodes: 1, Seed: 1})
	require.NoError(t, err)

	outputs, err := n.forward([]float64{1, 0})
	require.NoError(t, err)

	_, err = n.backward(outputs, []float64{1, 0})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func BenchmarkTrainBatch(b *testing.B) {
	n, err := New(Config{InputNodes: 16, Hidden: []LayerSpec{Dense(32), Dense(16)}, OutputNodes: 4, LearningRate: 0.01, Seed: 1})
	if err != nil {
		b.Fatal(err)
	}

	//nolint:gosec // benchmark data
	rng := rand.New(rand.NewSource(1))
	batch := make([]Sample, 10)
	for i := range batch {
		in := make([]float64, 16)
		for j := range in {
			in[j] = rng.Float64()
		}
		batch[i] = Sample{Input: in, Target: []float64{1, 0, 0, 1}}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := n.TrainBatch(batch); err != nil {
			b.Fatal(err)
		}
	}
}
