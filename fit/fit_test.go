package fit

import (
	"math"
	"testing"

	"github.com/hupe1980/feeddown/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad(c, m, n float64, xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = c + m*x + n*x*x
	}
	return ys
}

func TestQuadratic_Noiseless(t *testing.T) {
	xs := []float64{-2, -1, 0, 1, 2, 3}
	res, err := Quadratic(xs, quad(2, 3, -1, xs))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, res.Coefficients[0], 1e-6)
	assert.InDelta(t, 3.0, res.Coefficients[1], 1e-6)
	assert.InDelta(t, -1.0, res.Coefficients[2], 1e-6)
	for i, se := range res.StdErrors {
		assert.Less(t, se, 1e-6, "std error %d", i)
	}
	assert.InDelta(t, 3.0, res.Slope(), 1e-9)
	assert.InDelta(t, 2.0, res.Offset(), 1e-9)
	assert.InDelta(t, -1.0, res.Curvature(), 1e-9)
	assert.InDelta(t, 2+3*5-25, res.Eval(5), 1e-6)
}

func TestQuadratic_MinimumPoints(t *testing.T) {
	xs := []float64{0, 1, 2, 4}
	res, err := Quadratic(xs, quad(2, 3, -1, xs))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.Slope(), 1e-6)
}

func TestQuadratic_LargeKnobValues(t *testing.T) {
	// Crossing-angle scans run over hundreds of microradians.
	xs := []float64{-160, -120, -80, 0, 80, 120, 160}
	ys := quad(1e-3, 2.5e-5, -3e-8, xs)
	res, err := Quadratic(xs, ys)
	require.NoError(t, err)
	assert.InEpsilon(t, 1e-3, res.Coefficients[0], 1e-6)
	assert.InEpsilon(t, 2.5e-5, res.Coefficients[1], 1e-6)
	assert.InEpsilon(t, -3e-8, res.Coefficients[2], 1e-6)
}

func TestQuadratic_Noisy(t *testing.T) {
	rng := testutil.NewRNG(42)
	var xs, ys []float64
	for i := 0; i < 200; i++ {
		x := -2 + 4*float64(i)/199
		xs = append(xs, x)
		ys = append(ys, 2+3*x-x*x+rng.Normal(0, 0.05))
	}
	res, err := Quadratic(xs, ys)
	require.NoError(t, err)

	for j := 0; j < NumParams; j++ {
		assert.Greater(t, res.StdErrors[j], 0.0)
		assert.InDelta(t, res.StdErrors[j]*res.StdErrors[j], res.Covariance[j][j], 1e-12)
		for k := 0; k < NumParams; k++ {
			assert.InDelta(t, res.Covariance[j][k], res.Covariance[k][j], 1e-12, "covariance symmetric")
		}
	}
	want := [NumParams]float64{2, 3, -1}
	for j := range want {
		assert.InDelta(t, want[j], res.Coefficients[j], 5*res.StdErrors[j]+1e-3)
	}
}

func TestQuadratic_ExactlyDetermined(t *testing.T) {
	xs := []float64{0, 1, 2}
	res, err := Quadratic(xs, quad(1, 1, 1, xs))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Slope(), 1e-9)
	for j := 0; j < NumParams; j++ {
		assert.True(t, math.IsInf(res.StdErrors[j], 1))
	}
}

func TestQuadratic_Failures(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}},
		{"too few points", []float64{1, 2}, []float64{1, 2}},
		{"two distinct abscissae", []float64{0, 0, 1, 1}, []float64{1, 1, 2, 2}},
		{"constant abscissa", []float64{1, 1, 1, 1}, []float64{1, 2, 3, 4}},
		{"nan", []float64{0, 1, 2, 3}, []float64{0, math.NaN(), 2, 3}},
		{"inf", []float64{0, math.Inf(1), 2, 3}, []float64{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Quadratic(tt.x, tt.y)
			assert.ErrorIs(t, err, ErrFitFailure)
		})
	}
}

func TestInvert(t *testing.T) {
	A := [NumParams][NumParams]float64{{4, 2, 0}, {2, 5, 1}, {0, 1, 3}}
	inv, err := invert(A)
	require.NoError(t, err)
	for i := 0; i < NumParams; i++ {
		for j := 0; j < NumParams; j++ {
			var sum float64
			for k := 0; k < NumParams; k++ {
				sum += A[i][k] * inv[k][j]
			}
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, sum, 1e-12)
		}
	}

	_, err = invert([NumParams][NumParams]float64{})
	assert.ErrorIs(t, err, errSingular)
}
