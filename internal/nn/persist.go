package nn

import (
	"fmt"

	"github.com/born-ml/minnet/internal/layer"
	"github.com/born-ml/minnet/internal/serialization"
)

// Save writes the network topology, hyperparameters and weights to path.
func (n *Network) Save(path string) error {
	if err := serialization.Write(path, n.toModel()); err != nil {
		return fmt.Errorf("save network: %w", err)
	}
	return nil
}

// Load reads a network saved with Save.
//
// The activation is resolved by name and the layers are rebuilt from the
// stored hyperparameters; every stored weight matrix must match the rebuilt
// layer shape.
func Load(path string) (*Network, error) {
	m, err := serialization.Read(path)
	if err != nil {
		return nil, err
	}
	return fromModel(m, Config{})
}

// LoadFrom replaces the topology, hyperparameters and weights of n with the
// model stored at path. The logger and the dropout RNG are kept.
func (n *Network) LoadFrom(path string) error {
	m, err := serialization.Read(path)
	if err != nil {
		return err
	}
	loaded, err := fromModel(m, Config{Logger: n.logger})
	if err != nil {
		return err
	}
	loaded.rng = n.rng
	*n = *loaded
	return nil
}

func (n *Network) toModel() *serialization.Model {
	hidden := make([]serialization.LayerSpec, len(n.hidden))
	for i, h := range n.hidden {
		hidden[i] = serialization.LayerSpec{
			Kind:   h.Kind.String(),
			Size:   h.Size,
			Kernel: h.Kernel,
			Stride: h.Stride,
		}
	}

	records := make([]serialization.LayerRecord, len(n.layers))
	for i, l := range n.layers {
		records[i] = serialization.LayerRecord{
			Kind:       l.Kind.String(),
			InputSize:  l.InputSize,
			OutputSize: l.OutputSize,
			KernelSize: l.KernelSize,
			PoolSize:   l.PoolSize,
			Stride:     l.Stride,
			Weights:    l.Weights(),
		}
	}

	return &serialization.Model{
		Header: serialization.NewHeader(map[string]string{"network": n.String()}),
		Hyperparameters: serialization.Hyperparameters{
			InputNodes:   n.inputNodes,
			Hidden:       hidden,
			OutputNodes:  n.outputNodes,
			LearningRate: n.learningRate,
			Activation:   n.act.Name,
			DropoutRate:  n.dropoutRate,
			DecayRate:    n.decayRate,
			Epsilon:      n.epsilon,
			BatchSize:    n.batchSize,
			L1Lambda:     n.l1Lambda,
			L2Lambda:     n.l2Lambda,
		},
		Layers: records,
	}
}

// fromModel rebuilds a network from m. base supplies the fields a model
// file does not carry (logger).
func fromModel(m *serialization.Model, base Config) (*Network, error) {
	hp := m.Hyperparameters

	hidden := make([]LayerSpec, len(hp.Hidden))
	for i, h := range hp.Hidden {
		kind, err := layer.ParseKind(h.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: hidden[%d]: %w", serialization.ErrInvalidModel, i, err)
		}
		hidden[i] = LayerSpec{Kind: kind, Size: h.Size, Kernel: h.Kernel, Stride: h.Stride}
	}

	cfg := base
	cfg.InputNodes = hp.InputNodes
	cfg.Hidden = hidden
	cfg.OutputNodes = hp.OutputNodes
	cfg.LearningRate = hp.LearningRate
	cfg.Activation = hp.Activation
	cfg.DropoutRate = hp.DropoutRate
	cfg.DecayRate = hp.DecayRate
	cfg.Epsilon = hp.Epsilon
	cfg.BatchSize = hp.BatchSize
	cfg.L1Lambda = hp.L1Lambda
	cfg.L2Lambda = hp.L2Lambda

	n, err := New(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", serialization.ErrInvalidModel, err)
	}

	if len(m.Layers) != len(n.layers) {
		return nil, fmt.Errorf("%w: %d stored layers, topology has %d",
			serialization.ErrInvalidModel, len(m.Layers), len(n.layers))
	}
	for i, rec := range m.Layers {
		l := n.layers[i]
		if rec.Kind != l.Kind.String() || rec.InputSize != l.InputSize || rec.OutputSize != l.OutputSize {
			return nil, fmt.Errorf("%w: layer %d is %s [%d,%d], topology expects %s [%d,%d]",
				serialization.ErrInvalidModel, i, rec.Kind, rec.OutputSize, rec.InputSize,
				l.Kind, l.OutputSize, l.InputSize)
		}
		if err := l.SetWeights(rec.Weights); err != nil {
			return nil, fmt.Errorf("%w: layer %d: %w", serialization.ErrInvalidModel, i, err)
		}
	}
	return n, nil
}
