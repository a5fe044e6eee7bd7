package nn

import (
	"fmt"
	"log"

	"github.com/born-ml/minnet/internal/layer"
)

// Defaults applied to zero Config fields.
const (
	DefaultActivation = "sigmoid"
	DefaultBatchSize  = 10
	DefaultDecayRate  = 0.9
	DefaultEpsilon    = 1e-8
)

// LayerSpec describes one hidden layer.
//
// Build it with Dense, Conv or Pool.
type LayerSpec struct {
	Kind   layer.Kind
	Size   int // dense: nodes; conv: filters; pool: pool size
	Kernel int // conv only
	Stride int // conv and pool; 0 means 1
}

// Dense specifies a fully connected layer of n nodes.
func Dense(n int) LayerSpec {
	return LayerSpec{Kind: layer.Dense, Size: n}
}

// Conv specifies a 1-D convolutional layer.
//
// The convolution always slides with a unit step; stride is stored with the
// layer and persisted.
func Conv(filters, kernel, stride int) LayerSpec {
	return LayerSpec{Kind: layer.Convolutional, Size: filters, Kernel: kernel, Stride: stride}
}

// Pool specifies a 1-D max pooling layer.
func Pool(size, stride int) LayerSpec {
	return LayerSpec{Kind: layer.Pooling, Size: size, Stride: stride}
}

func (s LayerSpec) stride() int {
	if s.Stride == 0 {
		return 1
	}
	return s.Stride
}

func (s LayerSpec) validate() error {
	if s.Size <= 0 {
		return fmt.Errorf("%s size must be positive, got %d", s.Kind, s.Size)
	}
	if s.Stride < 0 {
		return fmt.Errorf("%s stride must be positive, got %d", s.Kind, s.Stride)
	}
	if s.Kind == layer.Convolutional && s.Kernel <= 0 {
		return fmt.Errorf("convolutional kernel must be positive, got %d", s.Kernel)
	}
	return nil
}

// String returns a compact form like "dense(4)" or "conv(8,3,1)".
func (s LayerSpec) String() string {
	switch s.Kind {
	case layer.Convolutional:
		return fmt.Sprintf("conv(%d,%d,%d)", s.Size, s.Kernel, s.stride())
	case layer.Pooling:
		return fmt.Sprintf("pool(%d,%d)", s.Size, s.stride())
	default:
		return fmt.Sprintf("dense(%d)", s.Size)
	}
}

// Config holds the construction parameters of a Network.
type Config struct {
	InputNodes  int
	Hidden      []LayerSpec
	OutputNodes int

	LearningRate float64
	DropoutRate  float64 // Probability of zeroing a hidden output cell
	Activation   string  // Default: "sigmoid"

	// DecayRate and Epsilon are stored and persisted; the update rule does
	// not read them.
	DecayRate float64 // Default: 0.9
	Epsilon   float64 // Default: 1e-8

	BatchSize int     // Default: 10
	L1Lambda  float64 // L1 penalty coefficient
	L2Lambda  float64 // L2 penalty coefficient

	Seed   int64       // Weight init and dropout seed; 0 seeds from the clock
	Logger *log.Logger // Progress logger; nil discards
}

func (c Config) withDefaults() Config {
	if c.Activation == "" {
		c.Activation = DefaultActivation
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.DecayRate == 0 {
		c.DecayRate = DefaultDecayRate
	}
	if c.Epsilon == 0 {
		c.Epsilon = DefaultEpsilon
	}
	c.Hidden = append([]LayerSpec(nil), c.Hidden...)
	for i := range c.Hidden {
		if c.Hidden[i].Kind != layer.Dense {
			c.Hidden[i].Stride = c.Hidden[i].stride()
		}
	}
	return c
}
