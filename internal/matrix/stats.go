package matrix

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// rowValues returns the present cells of row i.
func (m *Matrix) rowValues(i int) []float64 {
	vals := make([]float64, 0, m.cols)
	for _, c := range m.data[i*m.cols : (i+1)*m.cols] {
		if !c.absent {
			vals = append(vals, c.value)
		}
	}
	return vals
}

// Mean returns the per-row mean of a as a column vector.
// Holes are excluded; a row with no present cells has a hole as its mean.
func Mean(a *Matrix) *Matrix {
	out := New(a.rows, 1)
	for i := 0; i < a.rows; i++ {
		vals := a.rowValues(i)
		if len(vals) == 0 {
			out.data[i] = Hole()
			continue
		}
		out.data[i] = Num(stat.Mean(vals, nil))
	}
	return out
}

// Variance returns the per-row population variance of a as a column vector.
// Holes are excluded; a row with no present cells has a hole as its variance.
func Variance(a *Matrix) *Matrix {
	out := New(a.rows, 1)
	for i := 0; i < a.rows; i++ {
		vals := a.rowValues(i)
		if len(vals) == 0 {
			out.data[i] = Hole()
			continue
		}
		_, v := stat.PopMeanVariance(vals, nil)
		out.data[i] = Num(v)
	}
	return out
}

// Normalize standardizes each row of a: (x - mean) / sqrt(variance + eps).
func Normalize(a *Matrix, eps float64) *Matrix {
	mean := Mean(a)
	variance := Variance(a)
	out := New(a.rows, a.cols)
	for i := 0; i < a.rows; i++ {
		mu, okMu := mean.data[i].Value()
		v, okV := variance.data[i].Value()
		denom := math.Sqrt(v + eps)
		for j := 0; j < a.cols; j++ {
			c := a.data[i*a.cols+j]
			if c.absent || !okMu || !okV {
				out.data[i*a.cols+j] = Hole()
				continue
			}
			out.data[i*a.cols+j] = Num((c.value - mu) / denom)
		}
	}
	return out
}

// ScaleAndShift returns gamma * a + beta.
func ScaleAndShift(a *Matrix, gamma, beta float64) *Matrix {
	return Apply(a, func(x float64) float64 { return gamma*x + beta })
}
