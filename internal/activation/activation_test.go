package activation

import (
	"math"
	"testing"

	"github.com/born-ml/minnet/internal/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"sigmoid", "tanh", "relu", "leaky_relu", "elu", "swish", "softmax"} {
		a, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, a.Name)
		assert.NotNil(t, a.Derivative)
	}

	_, err := Lookup("gelu")
	require.ErrorIs(t, err, ErrUnknown)
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	assert.Len(t, names, 7)
	assert.IsIncreasing(t, names)
}

func TestScalarValues(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		x    float64
		want float64
	}{
		{"sigmoid(0)", Sigmoid, 0, 0.5},
		{"sigmoid(2)", Sigmoid, 2, 1 / (1 + math.Exp(-2))},
		{"tanh(0.5)", Tanh, 0.5, math.Tanh(0.5)},
		{"relu(-1)", ReLU, -1, 0},
		{"relu(2)", ReLU, 2, 2},
		{"leaky(-2)", LeakyReLU, -2, -0.02},
		{"leaky(3)", LeakyReLU, 3, 3},
		{"elu(-1)", ELU, -1, math.Exp(-1) - 1},
		{"elu(1.5)", ELU, 1.5, 1.5},
		{"swish(1)", Swish, 1, 1 / (1 + math.Exp(-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.f(tt.x), 1e-12)
		})
	}
}

func TestDerivatives_FromOutput(t *testing.T) {
	y := Sigmoid(0.3)
	assert.InDelta(t, y*(1-y), SigmoidDerivative(y), 1e-12)

	ty := Tanh(0.3)
	assert.InDelta(t, 1-ty*ty, TanhDerivative(ty), 1e-12)

	assert.Equal(t, 0.0, ReLUDerivative(-0.1))
	assert.Equal(t, 0.0, ReLUDerivative(ReLU(-2)), "negative input has zero slope")
	assert.Equal(t, 1.0, ReLUDerivative(ReLU(2)))
	assert.Equal(t, LeakyReLUAlpha, LeakyReLUDerivative(-3))
	assert.Equal(t, 1.0, LeakyReLUDerivative(3))

	// elu'(x) = exp(x) for x < 0, recovered from y = exp(x) - 1.
	ey := ELU(-0.7)
	assert.InDelta(t, math.Exp(-0.7), ELUDerivative(ey), 1e-12)
	assert.Equal(t, 1.0, ELUDerivative(0.4))

	assert.InDelta(t, 0.5+Sigmoid(0.5)*0.5, SwishDerivative(0.5), 1e-12)
	assert.InDelta(t, 0.21, SoftmaxDerivative(0.3), 1e-12)
}

func TestSoftmax(t *testing.T) {
	p := Softmax([]float64{1, 2, 3})
	var sum float64
	for _, v := range p {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Greater(t, p[2], p[1])
	assert.Greater(t, p[1], p[0])
	assert.Empty(t, Softmax(nil))
}

func TestSoftmaxColumns(t *testing.T) {
	m := matrix.MustFromRows([][]float64{{1, 0}, {2, 0}, {3, 0}})
	m.Set(1, 1, matrix.Hole())

	a, err := Lookup("softmax")
	require.NoError(t, err)
	out := a.Forward(m)

	col0 := Softmax([]float64{1, 2, 3})
	for i, want := range col0 {
		assert.InDelta(t, want, out.At(i, 0).OrZero(), 1e-12)
	}
	assert.True(t, out.At(1, 1).IsHole())
	assert.InDelta(t, 0.5, out.At(0, 1).OrZero(), 1e-12)
	assert.InDelta(t, 0.5, out.At(2, 1).OrZero(), 1e-12)
}

func TestForwardBackward_KeepHoles(t *testing.T) {
	a, err := Lookup("sigmoid")
	require.NoError(t, err)

	m := matrix.MustFromRows([][]float64{{0, 1}})
	m.Set(0, 1, matrix.Hole())

	y := a.Forward(m)
	assert.Equal(t, matrix.Num(0.5), y.At(0, 0))
	assert.True(t, y.At(0, 1).IsHole())

	d := a.Backward(y)
	assert.Equal(t, matrix.Num(0.25), d.At(0, 0))
	assert.True(t, d.At(0, 1).IsHole())
}
