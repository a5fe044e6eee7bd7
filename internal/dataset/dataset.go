// Package dataset loads numeric CSV data sets and prepares them for
// training: shuffling, train/validation splits and input standardization.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/minnet/internal/matrix"
)

// ErrEmpty is returned for a data set without records.
var ErrEmpty = errors.New("data set is empty")

// Set holds paired input and target vectors.
type Set struct {
	Inputs  [][]float64
	Targets [][]float64
}

// Len returns the number of samples.
func (s *Set) Len() int { return len(s.Inputs) }

// LoadCSV loads a numeric CSV file.
//
// CSV Format:
//
//	x0,x1,...,xN,t0,...,tM
//	0.1,0.5,...,1,0,...,1
//
// The last targets columns of each record are the target vector; the rest
// is the input. With header set the first record is skipped.
func LoadCSV(path string, targets int, header bool) (*Set, error) {
	//nolint:gosec // G304: path comes from the run config
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	s, err := ReadCSV(file, targets, header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadCSV parses CSV records from r. See LoadCSV for the layout.
func ReadCSV(r io.Reader, targets int, header bool) (*Set, error) {
	if targets <= 0 {
		return nil, fmt.Errorf("targets must be > 0 (got %d)", targets)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if header && len(records) > 0 {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	width := len(records[0])
	if width <= targets {
		return nil, fmt.Errorf("records have %d columns, need more than %d targets", width, targets)
	}

	s := &Set{
		Inputs:  make([][]float64, len(records)),
		Targets: make([][]float64, len(records)),
	}
	for i, record := range records {
		if len(record) != width {
			return nil, fmt.Errorf("invalid record length at row %d: got %d, want %d", i+1, len(record), width)
		}
		values := make([]float64, width)
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value at row %d, column %d: %w", i+1, j+1, err)
			}
			values[j] = v
		}
		s.Inputs[i] = values[:width-targets : width-targets]
		s.Targets[i] = values[width-targets:]
	}
	return s, nil
}

// Shuffle permutes the samples in place, keeping pairs together.
func (s *Set) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(s.Inputs), func(i, j int) {
		s.Inputs[i], s.Inputs[j] = s.Inputs[j], s.Inputs[i]
		s.Targets[i], s.Targets[j] = s.Targets[j], s.Targets[i]
	})
}

// Split holds out the trailing fraction of the samples for validation.
// Both parts get at least one sample.
func (s *Set) Split(fraction float64) (train, validation *Set, err error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, fmt.Errorf("validation fraction must be in (0, 1) (got %v)", fraction)
	}
	if s.Len() < 2 {
		return nil, nil, fmt.Errorf("need at least 2 samples to split, got %d", s.Len())
	}

	held := int(float64(s.Len()) * fraction)
	held = max(1, min(held, s.Len()-1))
	cut := s.Len() - held

	train = &Set{Inputs: s.Inputs[:cut], Targets: s.Targets[:cut]}
	validation = &Set{Inputs: s.Inputs[cut:], Targets: s.Targets[cut:]}
	return train, validation, nil
}

// Holdout is Split, except that a fraction of 0 validates on the training
// samples themselves. Tiny sets such as XOR need every sample for training.
func (s *Set) Holdout(fraction float64) (train, validation *Set, err error) {
	if fraction == 0 {
		if s.Len() == 0 {
			return nil, nil, ErrEmpty
		}
		return s, s, nil
	}
	return s.Split(fraction)
}

// Scaler holds per-column input statistics.
type Scaler struct {
	Mean []float64
	Std  []float64 // sqrt(variance + eps)
}

// Apply standardizes one input vector with the stored statistics.
func (sc *Scaler) Apply(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = (x - sc.Mean[i]) / sc.Std[i]
	}
	return out
}

// Standardize rescales every input column to zero mean and unit variance in
// place and returns the statistics used.
func (s *Set) Standardize(eps float64) (*Scaler, error) {
	if s.Len() == 0 {
		return nil, ErrEmpty
	}

	rows, err := matrix.FromRows(s.Inputs)
	if err != nil {
		return nil, err
	}
	columns := matrix.Transpose(rows) // one row per input column

	mean := matrix.Mean(columns).Floats()
	variance := matrix.Variance(columns).Floats()
	sc := &Scaler{Mean: mean, Std: make([]float64, len(variance))}
	for i, v := range variance {
		sc.Std[i] = math.Sqrt(v + eps)
	}

	normalized := matrix.Transpose(matrix.Normalize(columns, eps))
	for i := range s.Inputs {
		s.Inputs[i] = cellsToFloats(normalized.Row(i))
	}
	return sc, nil
}

func cellsToFloats(cells []matrix.Cell) []float64 {
	out := make([]float64, len(cells))
	for i, c := range cells {
		out[i] = c.OrZero()
	}
	return out
}
