// Package config loads the YAML run file used by the minnet CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/minnet/internal/layer"
	"github.com/born-ml/minnet/internal/nn"
)

// Config captures the knobs of a training run.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Model    ModelConfig    `yaml:"model"`
	Training TrainingConfig `yaml:"training"`
}

// DataConfig describes the CSV data set.
type DataConfig struct {
	Path            string  `yaml:"path"`
	Targets         int     `yaml:"targets"`          // Trailing columns holding targets
	Header          bool    `yaml:"header"`           // Skip the first record
	Standardize     bool    `yaml:"standardize"`      // Standardize input columns
	ValidationSplit float64 `yaml:"validation_split"` // Fraction held out for validation; 0 validates on the training set
	Shuffle         bool    `yaml:"shuffle"`
}

// LayerConfig is one hidden layer entry.
type LayerConfig struct {
	Kind   string `yaml:"kind"` // dense, conv or pool
	Size   int    `yaml:"size"`
	Kernel int    `yaml:"kernel,omitempty"`
	Stride int    `yaml:"stride,omitempty"`
}

// ModelConfig holds the network topology and hyperparameters.
type ModelConfig struct {
	InputNodes   int           `yaml:"input_nodes"` // 0 derives it from the data
	Hidden       []LayerConfig `yaml:"hidden"`
	OutputNodes  int           `yaml:"output_nodes"` // 0 derives it from data.targets
	Activation   string        `yaml:"activation"`
	LearningRate float64       `yaml:"learning_rate"`
	DropoutRate  float64       `yaml:"dropout_rate"`
	DecayRate    float64       `yaml:"decay_rate"`
	Epsilon      float64       `yaml:"epsilon"`
	BatchSize    int           `yaml:"batch_size"`
	L1Lambda     float64       `yaml:"l1_lambda"`
	L2Lambda     float64       `yaml:"l2_lambda"`
}

// TrainingConfig controls the early-stopping loop and outputs.
type TrainingConfig struct {
	Epochs     int    `yaml:"epochs"`
	Patience   int    `yaml:"patience"`
	Loss       string `yaml:"loss"`
	Checkpoint string `yaml:"checkpoint"`
	Output     string `yaml:"output"`
	Seed       int64  `yaml:"seed"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	DataPath     string
	Epochs       int
	Patience     int
	LearningRate float64
	BatchSize    int
	Seed         int64
	Output       string
}

// Default returns a Config with every default filled in.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Targets:         1,
			ValidationSplit: 0.2,
		},
		Model: ModelConfig{
			Activation:   nn.DefaultActivation,
			LearningRate: 0.1,
			BatchSize:    nn.DefaultBatchSize,
		},
		Training: TrainingConfig{
			Epochs:     100,
			Patience:   10,
			Checkpoint: nn.DefaultCheckpointPath,
			Output:     "model.json",
		},
	}
}

// Load reads a Config from YAML on top of Default. Unknown keys are
// rejected. The result is not validated so that overrides can be applied
// first.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of Default. An empty document yields the
// defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataPath != "" {
		c.Data.Path = o.DataPath
	}
	if o.Epochs > 0 {
		c.Training.Epochs = o.Epochs
	}
	if o.Patience > 0 {
		c.Training.Patience = o.Patience
	}
	if o.LearningRate > 0 {
		c.Model.LearningRate = o.LearningRate
	}
	if o.BatchSize > 0 {
		c.Model.BatchSize = o.BatchSize
	}
	if o.Seed != 0 {
		c.Training.Seed = o.Seed
	}
	if o.Output != "" {
		c.Training.Output = o.Output
	}
}

// Validate verifies the config is runnable. Network hyperparameters are
// checked again by nn.New.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Data.Path == "" {
		return errors.New("data.path must be set")
	}
	if c.Data.Targets <= 0 {
		return fmt.Errorf("data.targets must be > 0 (got %d)", c.Data.Targets)
	}
	if c.Data.ValidationSplit < 0 || c.Data.ValidationSplit >= 1 {
		return fmt.Errorf("data.validation_split must be in [0, 1) (got %v)", c.Data.ValidationSplit)
	}
	if c.Model.InputNodes < 0 || c.Model.OutputNodes < 0 {
		return fmt.Errorf("model node counts must be >= 0 (got %d, %d)", c.Model.InputNodes, c.Model.OutputNodes)
	}
	if c.Model.OutputNodes > 0 && c.Model.OutputNodes != c.Data.Targets {
		return fmt.Errorf("model.output_nodes %d does not match data.targets %d", c.Model.OutputNodes, c.Data.Targets)
	}
	for i, h := range c.Model.Hidden {
		if _, err := layer.ParseKind(h.Kind); err != nil {
			return fmt.Errorf("model.hidden[%d]: %w", i, err)
		}
	}
	if c.Training.Epochs <= 0 {
		return fmt.Errorf("training.epochs must be > 0 (got %d)", c.Training.Epochs)
	}
	if c.Training.Patience <= 0 {
		return fmt.Errorf("training.patience must be > 0 (got %d)", c.Training.Patience)
	}
	if c.Training.Output == "" {
		c.Training.Output = "model.json"
	}
	if c.Training.Checkpoint == "" {
		c.Training.Checkpoint = nn.DefaultCheckpointPath
	}
	return nil
}

// NetworkConfig converts the model section into an nn.Config for a data set
// with the given input width. Zero node counts are derived from the data.
func (c *Config) NetworkConfig(inputs int) (nn.Config, error) {
	hidden := make([]nn.LayerSpec, 0, len(c.Model.Hidden))
	for i, h := range c.Model.Hidden {
		kind, err := layer.ParseKind(h.Kind)
		if err != nil {
			return nn.Config{}, fmt.Errorf("model.hidden[%d]: %w", i, err)
		}
		switch kind {
		case layer.Convolutional:
			hidden = append(hidden, nn.Conv(h.Size, h.Kernel, h.Stride))
		case layer.Pooling:
			hidden = append(hidden, nn.Pool(h.Size, h.Stride))
		default:
			hidden = append(hidden, nn.Dense(h.Size))
		}
	}

	in := c.Model.InputNodes
	if in == 0 {
		in = inputs
	}
	if in != inputs {
		return nn.Config{}, fmt.Errorf("model.input_nodes %d does not match %d data columns", in, inputs)
	}
	out := c.Model.OutputNodes
	if out == 0 {
		out = c.Data.Targets
	}

	return nn.Config{
		InputNodes:   in,
		Hidden:       hidden,
		OutputNodes:  out,
		LearningRate: c.Model.LearningRate,
		DropoutRate:  c.Model.DropoutRate,
		Activation:   c.Model.Activation,
		DecayRate:    c.Model.DecayRate,
		Epsilon:      c.Model.Epsilon,
		BatchSize:    c.Model.BatchSize,
		L1Lambda:     c.Model.L1Lambda,
		L2Lambda:     c.Model.L2Lambda,
		Seed:         c.Training.Seed,
	}, nil
}
