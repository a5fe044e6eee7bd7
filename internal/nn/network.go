// Package nn implements the training engine: a feed-forward network of dense,
// convolutional and pooling layers trained with mini-batch gradient steps.
//
// A Network is not safe for concurrent use. Train, TrainBatch, Query and
// CalculateLoss all read or write the weights and the dropout RNG; callers
// must serialize them. Within TrainBatch the backward pass fans out to
// Workers goroutines internally.
package nn

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/born-ml/minnet/internal/activation"
	"github.com/born-ml/minnet/internal/layer"
)

// Network is an ordered stack of layers plus training hyperparameters.
//
// The layer count and kinds are fixed at construction; only weight contents
// change afterwards.
type Network struct {
	inputNodes  int
	hidden      []LayerSpec
	outputNodes int
	layers      []*layer.Layer

	act          activation.Activation
	learningRate float64
	dropoutRate  float64
	decayRate    float64
	epsilon      float64
	batchSize    int
	l1Lambda     float64
	l2Lambda     float64

	rng    *rand.Rand
	logger *log.Logger
}

// New validates cfg and builds a network with Xavier-initialized weights.
//
// The hidden layers follow cfg.Hidden in order; the output layer is always
// Dense(cfg.OutputNodes). Errors wrap ErrInvalidArgument.
func New(cfg Config) (*Network, error) {
	cfg = cfg.withDefaults()
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	act, err := activation.Lookup(cfg.Activation)
	if err != nil {
		return nil, invalid("activation", "%v", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // G404: math/rand is fine for weight init and dropout
	rng := rand.New(rand.NewSource(seed))

	layers, err := buildLayers(cfg, rng)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Network{
		inputNodes:   cfg.InputNodes,
		hidden:       cfg.Hidden,
		outputNodes:  cfg.OutputNodes,
		layers:       layers,
		act:          act,
		learningRate: cfg.LearningRate,
		dropoutRate:  cfg.DropoutRate,
		decayRate:    cfg.DecayRate,
		epsilon:      cfg.Epsilon,
		batchSize:    cfg.BatchSize,
		l1Lambda:     cfg.L1Lambda,
		l2Lambda:     cfg.L2Lambda,
		rng:          rng,
		logger:       logger,
	}, nil
}

// buildLayers tracks the output shape [rows, cols] of every layer, starting
// from the [InputNodes, 1] input column, and sizes each layer from it.
func buildLayers(cfg Config, rng *rand.Rand) ([]*layer.Layer, error) {
	rows, cols := cfg.InputNodes, 1
	layers := make([]*layer.Layer, 0, len(cfg.Hidden)+1)

	for i, spec := range cfg.Hidden {
		field := fmt.Sprintf("hidden[%d]", i)
		flat := rows * cols

		switch spec.Kind {
		case layer.Dense:
			layers = append(layers, layer.NewDense(flat, spec.Size, rng))
			rows, cols = spec.Size, 1

		case layer.Convolutional:
			if spec.Kernel > flat {
				return nil, invalid(field, "kernel %d exceeds input size %d", spec.Kernel, flat)
			}
			l := layer.NewConvolutional(flat, spec.Size, spec.Kernel, spec.Stride, rng)
			layers = append(layers, l)
			rows, cols = spec.Size, l.Windows()

		case layer.Pooling:
			if spec.Size > cols {
				return nil, invalid(field, "pool size %d exceeds row length %d", spec.Size, cols)
			}
			l := layer.NewPooling(cols, rows, spec.Size, spec.Stride, rng)
			layers = append(layers, l)
			cols = l.Width()

		default:
			return nil, invalid(field, "unknown layer kind %v", spec.Kind)
		}
	}

	layers = append(layers, layer.NewDense(rows*cols, cfg.OutputNodes, rng))
	return layers, nil
}

// InputNodes returns the length of an input vector.
func (n *Network) InputNodes() int { return n.inputNodes }

// OutputNodes returns the length of an output vector.
func (n *Network) OutputNodes() int { return n.outputNodes }

// Hidden returns a copy of the hidden layer specs.
func (n *Network) Hidden() []LayerSpec { return append([]LayerSpec(nil), n.hidden...) }

// LearningRate returns the step size.
func (n *Network) LearningRate() float64 { return n.learningRate }

// DropoutRate returns the probability of zeroing a hidden output cell.
func (n *Network) DropoutRate() float64 { return n.dropoutRate }

// DecayRate returns the stored decay rate.
func (n *Network) DecayRate() float64 { return n.decayRate }

// Epsilon returns the stored epsilon.
func (n *Network) Epsilon() float64 { return n.epsilon }

// BatchSize returns the mini-batch size used by Train.
func (n *Network) BatchSize() int { return n.batchSize }

// L1Lambda returns the L1 penalty coefficient.
func (n *Network) L1Lambda() float64 { return n.l1Lambda }

// L2Lambda returns the L2 penalty coefficient.
func (n *Network) L2Lambda() float64 { return n.l2Lambda }

// ActivationName returns the name of the activation function.
func (n *Network) ActivationName() string { return n.act.Name }

// Layers returns the layer stack, output layer last. Callers must not
// replace weights while the network is training.
func (n *Network) Layers() []*layer.Layer { return n.layers }

// String returns a one-line summary of the topology.
func (n *Network) String() string {
	s := fmt.Sprintf("Network(in=%d", n.inputNodes)
	for _, h := range n.hidden {
		s += ", " + h.String()
	}
	return s + fmt.Sprintf(", out=%d, activation=%s)", n.outputNodes, n.act.Name)
}
