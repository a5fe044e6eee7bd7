// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/minnet/internal/activation"
	"github.com/born-ml/minnet/internal/loss"
	"github.com/born-ml/minnet/internal/nn"
)

// Network is a trainable stack of layers.
type Network = nn.Network

// Config holds the construction parameters of a Network.
type Config = nn.Config

// LayerSpec describes one hidden layer.
type LayerSpec = nn.LayerSpec

// Sample is one (input, target) training pair.
type Sample = nn.Sample

// EarlyStoppingOptions tunes TrainWithEarlyStopping.
type EarlyStoppingOptions = nn.EarlyStoppingOptions

// EarlyStoppingResult summarizes an early-stopping run.
type EarlyStoppingResult = nn.EarlyStoppingResult

// StopReason says why early stopping returned.
type StopReason = nn.StopReason

// ValidationError describes a rejected argument.
type ValidationError = nn.ValidationError

// Stop reasons.
const (
	StopMaxEpochs = nn.StopMaxEpochs
	StopPatience  = nn.StopPatience
	StopCancelled = nn.StopCancelled
)

// Workers is the number of goroutines running the backward pass of a batch.
const Workers = nn.Workers

// Errors.
var (
	ErrInvalidArgument = nn.ErrInvalidArgument
	ErrLengthMismatch  = nn.ErrLengthMismatch
	ErrShapeMismatch   = nn.ErrShapeMismatch
)

// New validates cfg and builds a network.
//
// Example:
//
//	net, err := nn.New(nn.Config{
//	    InputNodes:  8,
//	    Hidden:      []nn.LayerSpec{nn.Conv(4, 3, 1), nn.Pool(2, 2), nn.Dense(16)},
//	    OutputNodes: 2,
//	})
func New(cfg Config) (*Network, error) {
	return nn.New(cfg)
}

// Load reads a network saved with Network.Save.
func Load(path string) (*Network, error) {
	return nn.Load(path)
}

// Dense specifies a fully connected layer of n nodes.
func Dense(n int) LayerSpec {
	return nn.Dense(n)
}

// Conv specifies a 1-D convolutional layer with the given filter count and
// kernel length.
func Conv(filters, kernel, stride int) LayerSpec {
	return nn.Conv(filters, kernel, stride)
}

// Pool specifies a 1-D max pooling layer.
func Pool(size, stride int) LayerSpec {
	return nn.Pool(size, stride)
}

// Activations returns the names accepted by Config.Activation.
func Activations() []string {
	return activation.Names()
}

// Losses returns the names accepted by CalculateLoss and
// EarlyStoppingOptions.Loss.
func Losses() []string {
	return loss.Names()
}
