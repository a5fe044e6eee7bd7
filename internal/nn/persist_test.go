package nn

import (
	"bytes"
	"context"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/minnet/internal/serialization"
)

func TestSaveLoadBitIdentical(t *testing.T) {
	n, err := New(Config{
		InputNodes:   8,
		Hidden:       []LayerSpec{Conv(2, 3, 1), Pool(2, 3), Dense(4)},
		OutputNodes:  2,
		LearningRate: 0.05,
		Activation:   "tanh",
		L2Lambda:     0.01,
		BatchSize:    3,
		Seed:         17,
	})
	require.NoError(t, err)

	// Train once so the conv weights carry holes.
	inputs := [][]float64{{1, 2, 3, 4, 5, 6, 7, 8}, {8, 7, 6, 5, 4, 3, 2, 1}}
	targets := [][]float64{{1, 0}, {0, 1}}
	require.NoError(t, n.Train(inputs, targets))

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, n.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, n.Hidden(), loaded.Hidden())
	assert.Equal(t, n.ActivationName(), loaded.ActivationName())
	assert.Equal(t, n.LearningRate(), loaded.LearningRate())
	assert.Equal(t, n.BatchSize(), loaded.BatchSize())
	assert.Equal(t, n.L2Lambda(), loaded.L2Lambda())
	assert.Equal(t, n.DecayRate(), loaded.DecayRate())
	assertWeightsEqual(t, snapshot(n), loaded)

	for _, in := range inputs {
		want, err := n.Query(in)
		require.NoError(t, err)
		got, err := loaded.Query(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLoadFromReplacesWeights(t *testing.T) {
	cfg := Config{InputNodes: 2, Hidden: []LayerSpec{Dense(3)}, OutputNodes: 1, Seed: 1}
	a, err := New(cfg)
	require.NoError(t, err)
	cfg.Seed = 2
	b, err := New(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, a.Save(path))
	require.NoError(t, b.LoadFrom(path))
	assertWeightsEqual(t, snapshot(a), b)
}

func TestLoadRejectsTopologyMismatch(t *testing.T) {
	n, err := New(Config{InputNodes: 2, Hidden: []LayerSpec{Dense(3)}, OutputNodes: 1, Seed: 1})
	require.NoError(t, err)

	m := n.toModel()
	m.Hyperparameters.Hidden[0].Size = 5

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, serialization.Write(path, m))

	_, err = Load(path)
	require.ErrorIs(t, err, serialization.ErrInvalidModel)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	n, err := New(Config{InputNodes: 2, OutputNodes: 1, Seed: 1})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, n.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.Replace(data, []byte(`"input_size": 2`), []byte(`"input_size": 3`), 1)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = Load(path)
	require.Error(t, err)
}

func earlyStoppingData(seed int64) (inputs, targets [][]float64) {
	//nolint:gosec // test data
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < 40; i++ {
		a, b := rng.Float64(), rng.Float64()
		inputs = append(inputs, []float64{a, b})
		targets = append(targets, []float64{(a + b) / 2})
	}
	return inputs, targets
}

func TestEarlyStoppingRestoresBest(t *testing.T) {
	var buf bytes.Buffer
	n, err := New(Config{
		InputNodes:   2,
		Hidden:       []LayerSpec{Dense(4)},
		OutputNodes:  1,
		LearningRate: 0.5,
		BatchSize:    4,
		Seed:         8,
		Logger:       log.New(&buf, "", 0),
	})
	require.NoError(t, err)

	inputs, targets := earlyStoppingData(1)
	valInputs, valTargets := earlyStoppingData(2)
	path := filepath.Join(t.TempDir(), "best.json")

	res, err := n.TrainWithEarlyStopping(context.Background(), inputs, targets, valInputs, valTargets, 30, 3,
		EarlyStoppingOptions{CheckpointPath: path})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Epochs, 1)
	assert.LessOrEqual(t, res.Epochs, 30)
	assert.GreaterOrEqual(t, res.BestEpoch, 1)
	assert.LessOrEqual(t, res.BestEpoch, res.Epochs)
	assert.Contains(t, []StopReason{StopMaxEpochs, StopPatience}, res.Reason)
	if res.Reason == StopPatience {
		assert.Equal(t, res.BestEpoch+3, res.Epochs)
	}

	require.FileExists(t, path)

	got, err := n.CalculateLoss(valInputs, valTargets, "")
	require.NoError(t, err)
	assert.InDelta(t, res.BestLoss, got, 1e-12, "best checkpoint is loaded back")

	assert.Contains(t, buf.String(), "epoch=1 val_loss=")
	assert.Contains(t, buf.String(), "early_stopping reason=")
}

func TestEarlyStoppingPatienceRunsOut(t *testing.T) {
	// A zero learning rate never improves after the first epoch.
	n, err := New(Config{InputNodes: 2, Hidden: []LayerSpec{Dense(2)}, OutputNodes: 1, Seed: 3})
	require.NoError(t, err)

	inputs, targets := earlyStoppingData(5)
	path := filepath.Join(t.TempDir(), "best.json")

	res, err := n.TrainWithEarlyStopping(context.Background(), inputs, targets, inputs, targets, 100, 2,
		EarlyStoppingOptions{CheckpointPath: path})
	require.NoError(t, err)

	assert.Equal(t, StopPatience, res.Reason)
	assert.Equal(t, 1, res.BestEpoch)
	assert.Equal(t, 3, res.Epochs)
}

func TestEarlyStoppingCancelled(t *testing.T) {
	n, err := New(Config{InputNodes: 2, OutputNodes: 1, LearningRate: 0.1, Seed: 3})
	require.NoError(t, err)
	before := snapshot(n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs, targets := earlyStoppingData(4)
	path := filepath.Join(t.TempDir(), "best.json")

	res, err := n.TrainWithEarlyStopping(ctx, inputs, targets, inputs, targets, 10, 2,
		EarlyStoppingOptions{CheckpointPath: path})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, StopCancelled, res.Reason)
	assert.Zero(t, res.Epochs)
	assert.NoFileExists(t, path)
	assertWeightsEqual(t, before, n)
}

func TestEarlyStoppingValidation(t *testing.T) {
	n, err := New(Config{InputNodes: 2, OutputNodes: 1, Seed: 3})
	require.NoError(t, err)
	inputs, targets := earlyStoppingData(4)
	ctx := context.Background()

	_, err = n.TrainWithEarlyStopping(ctx, inputs, targets, inputs, targets, 0, 2, EarlyStoppingOptions{})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = n.TrainWithEarlyStopping(ctx, inputs, targets, inputs, targets, 5, 0, EarlyStoppingOptions{})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = n.TrainWithEarlyStopping(ctx, inputs, targets, nil, nil, 5, 2, EarlyStoppingOptions{})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = n.TrainWithEarlyStopping(ctx, inputs, targets[:3], inputs, targets, 5, 2, EarlyStoppingOptions{})
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = n.TrainWithEarlyStopping(ctx, inputs, targets, inputs, targets, 5, 2, EarlyStoppingOptions{Loss: "hinge"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}
