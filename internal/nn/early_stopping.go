package nn

import (
	"context"
	"fmt"
	"math"

	"github.com/born-ml/minnet/internal/loss"
)

// DefaultCheckpointPath is where TrainWithEarlyStopping saves the best model
// when no path is given.
const DefaultCheckpointPath = "best_model.json"

// StopReason says why TrainWithEarlyStopping returned.
type StopReason string

// Stop reasons.
const (
	StopMaxEpochs StopReason = "max_epochs"
	StopPatience  StopReason = "patience"
	StopCancelled StopReason = "cancelled"
)

// EarlyStoppingOptions tunes TrainWithEarlyStopping.
type EarlyStoppingOptions struct {
	CheckpointPath string // Default: DefaultCheckpointPath
	Loss           string // Validation loss name. Default: mean_squared_error
}

// EarlyStoppingResult summarizes an early-stopping run.
type EarlyStoppingResult struct {
	Epochs    int        // Epochs completed
	BestEpoch int        // Epoch with the lowest validation loss (1-based)
	BestLoss  float64    // Lowest validation loss seen
	Reason    StopReason // Why training stopped
}

// TrainWithEarlyStopping trains for up to maxEpochs passes over the training
// set, tracking the validation loss after each one.
//
// Every improvement is checkpointed to disk and resets the patience counter;
// every other epoch uses up one unit of patience. Training stops when
// maxEpochs is reached, patience runs out, or ctx is done (checked between
// epochs). Before returning, the best checkpoint is loaded back into n.
//
// On cancellation the partial result is returned together with ctx.Err().
func (n *Network) TrainWithEarlyStopping(
	ctx context.Context,
	inputs, targets, valInputs, valTargets [][]float64,
	maxEpochs, patience int,
	opts EarlyStoppingOptions,
) (*EarlyStoppingResult, error) {
	if maxEpochs < 1 {
		return nil, invalid("max_epochs", "must be at least 1, got %d", maxEpochs)
	}
	if patience < 1 {
		return nil, invalid("patience", "must be at least 1, got %d", patience)
	}
	if opts.CheckpointPath == "" {
		opts.CheckpointPath = DefaultCheckpointPath
	}
	if opts.Loss == "" {
		opts.Loss = loss.Default
	}
	if _, err := loss.Lookup(opts.Loss); err != nil {
		return nil, invalid("loss", "%v", err)
	}
	if len(valInputs) == 0 {
		return nil, invalid("val_inputs", "validation set is empty")
	}
	if err := n.validatePairs(inputs, targets); err != nil {
		return nil, err
	}
	if err := n.validatePairs(valInputs, valTargets); err != nil {
		return nil, err
	}

	res := &EarlyStoppingResult{BestLoss: math.Inf(1), Reason: StopMaxEpochs}
	remaining := patience
	var runErr error

	for epoch := 1; epoch <= maxEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			res.Reason = StopCancelled
			runErr = err
			break
		}

		if err := n.Train(inputs, targets); err != nil {
			return res, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		valLoss, err := n.CalculateLoss(valInputs, valTargets, opts.Loss)
		if err != nil {
			return res, fmt.Errorf("epoch %d validation: %w", epoch, err)
		}
		res.Epochs = epoch

		if valLoss < res.BestLoss {
			res.BestLoss = valLoss
			res.BestEpoch = epoch
			remaining = patience
			if err := n.Save(opts.CheckpointPath); err != nil {
				return res, fmt.Errorf("epoch %d checkpoint: %w", epoch, err)
			}
		} else {
			remaining--
		}

		n.logger.Printf("epoch=%d val_loss=%.6f best=%.6f patience=%d", epoch, valLoss, res.BestLoss, remaining)

		if remaining <= 0 {
			res.Reason = StopPatience
			break
		}
	}

	if res.BestEpoch > 0 {
		if err := n.LoadFrom(opts.CheckpointPath); err != nil {
			return res, fmt.Errorf("restore best model: %w", err)
		}
	}
	n.logger.Printf("early_stopping reason=%s epochs=%d best_epoch=%d best_loss=%.6f",
		res.Reason, res.Epochs, res.BestEpoch, res.BestLoss)

	return res, runErr
}
