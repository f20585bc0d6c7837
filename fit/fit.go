// Package fit fits the quadratic knob-response model
//
//	y = c + m*x + n*x²
//
// to one channel (real or imaginary part) of a monitor's difference series.
// The slope m is the gradient of the RDT component with respect to the knob;
// c and n absorb offset and curvature.
package fit

import (
	"errors"
	"fmt"
	"math"
)

// ErrFitFailure is returned when a series cannot be fitted.
var ErrFitFailure = errors.New("fit failure")

// NumParams is the number of model coefficients.
const NumParams = 3

// Result holds the fitted coefficients [c, m, n], their covariance and
// standard errors.
type Result struct {
	Coefficients [NumParams]float64
	Covariance   [NumParams][NumParams]float64
	StdErrors    [NumParams]float64
}

// Offset returns c.
func (r Result) Offset() float64 { return r.Coefficients[0] }

// Slope returns m.
func (r Result) Slope() float64 { return r.Coefficients[1] }

// Curvature returns n.
func (r Result) Curvature() float64 { return r.Coefficients[2] }

// Eval returns the model value at x.
func (r Result) Eval(x float64) float64 {
	c := r.Coefficients
	return c[0] + c[1]*x + c[2]*x*x
}

// Quadratic fits y = c + m*x + n*x² by unweighted least squares.
//
// The abscissa is centered and scaled before building the normal equations,
// and the solution is mapped back, so large knob values do not degrade the
// conditioning. The covariance is s²·(XᵀX)⁻¹ with s² = RSS/(N-3); with
// exactly three points the covariance is +Inf.
func Quadratic(x, y []float64) (Result, error) {
	var res Result
	if len(x) != len(y) {
		return res, fmt.Errorf("%w: %d abscissae for %d ordinates", ErrFitFailure, len(x), len(y))
	}
	n := len(x)
	if n < NumParams {
		return res, fmt.Errorf("%w: need at least %d points, got %d", ErrFitFailure, NumParams, n)
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return res, fmt.Errorf("%w: non-finite value at point %d", ErrFitFailure, i)
		}
	}

	mu, sc := center(x)

	// Normal matrix A = UᵀU and b = Uᵀy in the scaled variable u.
	var A [NumParams][NumParams]float64
	var b [NumParams]float64
	for i := 0; i < n; i++ {
		u := (x[i] - mu) / sc
		row := [NumParams]float64{1, u, u * u}
		for j := 0; j < NumParams; j++ {
			for k := 0; k < NumParams; k++ {
				A[j][k] += row[j] * row[k]
			}
			b[j] += row[j] * y[i]
		}
	}

	inv, err := invert(A)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrFitFailure, err)
	}

	var gamma [NumParams]float64
	for j := 0; j < NumParams; j++ {
		for k := 0; k < NumParams; k++ {
			gamma[j] += inv[j][k] * b[k]
		}
	}

	var rss float64
	for i := 0; i < n; i++ {
		u := (x[i] - mu) / sc
		r := y[i] - (gamma[0] + gamma[1]*u + gamma[2]*u*u)
		rss += r * r
	}

	dof := n - NumParams
	var covU [NumParams][NumParams]float64
	for j := 0; j < NumParams; j++ {
		for k := 0; k < NumParams; k++ {
			if dof > 0 {
				covU[j][k] = rss / float64(dof) * inv[j][k]
			} else {
				covU[j][k] = math.Inf(1)
			}
		}
	}

	// Map back: beta = T gamma, Cov = T CovU Tᵀ.
	T := [NumParams][NumParams]float64{
		{1, -mu / sc, mu * mu / (sc * sc)},
		{0, 1 / sc, -2 * mu / (sc * sc)},
		{0, 0, 1 / (sc * sc)},
	}
	for j := 0; j < NumParams; j++ {
		for k := 0; k < NumParams; k++ {
			res.Coefficients[j] += T[j][k] * gamma[k]
		}
	}
	if dof > 0 {
		res.Covariance = sandwich(T, covU)
	} else {
		res.Covariance = covU
	}
	for j := 0; j < NumParams; j++ {
		res.StdErrors[j] = math.Sqrt(math.Abs(res.Covariance[j][j]))
	}
	return res, nil
}

// center returns the mean of x and half its range (1 when x is constant).
func center(x []float64) (mu, sc float64) {
	lo, hi := x[0], x[0]
	var sum float64
	for _, v := range x {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	mu = sum / float64(len(x))
	sc = (hi - lo) / 2
	if sc == 0 {
		sc = 1
	}
	return mu, sc
}

// sandwich computes T·C·Tᵀ.
func sandwich(T, C [NumParams][NumParams]float64) [NumParams][NumParams]float64 {
	var out [NumParams][NumParams]float64
	for i := 0; i < NumParams; i++ {
		for j := 0; j < NumParams; j++ {
			var sum float64
			for k := 0; k < NumParams; k++ {
				for l := 0; l < NumParams; l++ {
					sum += T[i][k] * C[k][l] * T[j][l]
				}
			}
			out[i][j] = sum
		}
	}
	return out
}
