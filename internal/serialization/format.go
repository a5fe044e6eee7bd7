package serialization

import (
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/minnet/internal/matrix"
)

// Format constants.
const (
	FormatName    = "minnet"
	FormatVersion = 1 // v1: JSON document with SHA-256 layer checksum
)

const minnetVersion = "0.3.0" // Current minnet version

// Header identifies a model file.
type Header struct {
	Format        string            `json:"format"`         // Always FormatName
	FormatVersion int               `json:"format_version"` // Version of the file format
	MinnetVersion string            `json:"minnet_version"` // Version of minnet that created this file
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	RunID         string            `json:"run_id"`         // Unique id of the save
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
}

// LayerSpec describes one hidden layer as the user configured it.
//
// Dense: Size is the node count. Conv: Size is the filter count and Kernel
// the window length. Pool: Size is the pool size.
type LayerSpec struct {
	Kind   string `json:"kind"`
	Size   int    `json:"size"`
	Kernel int    `json:"kernel,omitempty"`
	Stride int    `json:"stride,omitempty"`
}

// Hyperparameters holds everything needed to rebuild the network topology
// and its training settings.
type Hyperparameters struct {
	InputNodes   int         `json:"input_nodes"`
	Hidden       []LayerSpec `json:"hidden"`
	OutputNodes  int         `json:"output_nodes"`
	LearningRate float64     `json:"learning_rate"`
	Activation   string      `json:"activation"`
	DropoutRate  float64     `json:"dropout_rate"`
	DecayRate    float64     `json:"decay_rate"`
	Epsilon      float64     `json:"epsilon"`
	BatchSize    int         `json:"batch_size"`
	L1Lambda     float64     `json:"l1_lambda"`
	L2Lambda     float64     `json:"l2_lambda"`
}

// LayerRecord is the stored form of one layer.
type LayerRecord struct {
	Kind       string         `json:"kind"`
	InputSize  int            `json:"input_size"`
	OutputSize int            `json:"output_size"`
	KernelSize int            `json:"kernel_size,omitempty"`
	PoolSize   int            `json:"pool_size,omitempty"`
	Stride     int            `json:"stride,omitempty"`
	Weights    *matrix.Matrix `json:"weights"`
}

// Model is the full contents of a model file.
type Model struct {
	Header          Header          `json:"header"`
	Hyperparameters Hyperparameters `json:"hyperparameters"`
	Layers          []LayerRecord   `json:"layers"`
	Checksum        string          `json:"checksum"`
}

// NewHeader returns a header for a new save with a fresh run id.
func NewHeader(metadata map[string]string) Header {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return Header{
		Format:        FormatName,
		FormatVersion: FormatVersion,
		MinnetVersion: minnetVersion,
		CreatedAt:     time.Now().UTC(),
		RunID:         uuid.NewString(),
		Metadata:      metadata,
	}
}
