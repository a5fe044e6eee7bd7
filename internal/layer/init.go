package layer

import (
	"math"
	"math/rand"

	"github.com/born-ml/minnet/internal/matrix"
)

// Xavier (Glorot) initialization for weights.
//
// Draws every cell of a rows x cols matrix from the uniform distribution
// U(-sqrt(6/(rows + cols)), sqrt(6/(rows + cols))).
//
// A nil rng draws from the package-level source.
func Xavier(rows, cols int, rng *rand.Rand) *matrix.Matrix {
	bound := GlorotLimit(rows, cols)

	draw := rand.Float64
	if rng != nil {
		draw = rng.Float64
	}

	m := matrix.New(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			//nolint:gosec // Using math/rand for weight initialization (not security-critical)
			m.SetFloat(i, j, (draw()*2.0-1.0)*bound)
		}
	}
	return m
}

// GlorotLimit returns sqrt(6 / (rows + cols)).
func GlorotLimit(rows, cols int) float64 {
	return math.Sqrt(6.0 / float64(rows+cols))
}
