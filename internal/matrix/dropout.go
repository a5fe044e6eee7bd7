package matrix

import "math/rand"

// Dropout zeroes each present cell of a independently with probability rate.
//
// One uniform draw is taken per cell from rng (holes included, so the stream
// position only depends on the shape). A rate <= 0 returns a copy without
// drawing. A nil rng uses the package-level source.
func Dropout(a *Matrix, rate float64, rng *rand.Rand) *Matrix {
	if rate <= 0 {
		return a.Clone()
	}
	draw := rand.Float64
	if rng != nil {
		draw = rng.Float64
	}

	out := New(a.rows, a.cols)
	for i, c := range a.data {
		keep := draw() >= rate
		switch {
		case c.absent:
			out.data[i] = c
		case keep:
			out.data[i] = c
		default:
			out.data[i] = Num(0)
		}
	}
	return out
}
