// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a small feed-forward network trainer.
//
// # Overview
//
// This package contains:
//   - Network: layer stack with Train, TrainBatch, Query and CalculateLoss
//   - Layers: Dense, Conv (1-D), Pool (1-D max pooling)
//   - Activations: sigmoid, tanh, relu, leaky_relu, elu, swish, softmax
//   - Losses: mean_squared_error, mean_absolute_error, cross_entropy_loss,
//     binary_cross_entropy, categorical_cross_entropy
//   - Early stopping with on-disk checkpoints
//   - JSON model files (Save, Load)
//
// # Basic Usage
//
//	import "github.com/born-ml/minnet/nn"
//
//	func main() {
//	    net, err := nn.New(nn.Config{
//	        InputNodes:   2,
//	        Hidden:       []nn.LayerSpec{nn.Dense(4)},
//	        OutputNodes:  1,
//	        LearningRate: 0.1,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // One pass over the data in mini-batches
//	    if err := net.Train(inputs, targets); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    out, err := net.Query([]float64{1, 0})
//	}
//
// # Layers
//
// Dense: fully connected layer, weights [out, in] with Xavier initialization
//
// Conv: 1-D convolution over the flattened previous output. Each of the
// filters uses the first kernel weights of its row and slides with a unit
// step.
//
// Pool: 1-D max pooling over each row of the previous output. Windows that
// run past the end of a row produce holes, which downstream layers treat as
// zero.
//
// The output layer is always Dense(OutputNodes).
//
// # Training
//
// TrainBatch runs the forward passes in order on the calling goroutine and
// the backward passes on Workers goroutines, then applies
//
//	W = W + (lr / batch) * (sum(deltas) + l1*sign(W) + l2*W)
//
// A Network is not safe for concurrent use.
package nn
