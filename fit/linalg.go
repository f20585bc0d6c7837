package fit

import (
	"errors"
	"math"
)

var errSingular = errors.New("normal matrix is singular")

// singularTol is the relative pivot size below which the normal matrix is
// treated as singular.
const singularTol = 1e-12

// invert inverts A by Gauss-Jordan elimination with partial pivoting.
func invert(A [NumParams][NumParams]float64) ([NumParams][NumParams]float64, error) {
	const n = NumParams
	var aug [n][2 * n]float64
	var scale float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			aug[i][j] = A[i][j]
			scale = math.Max(scale, math.Abs(A[i][j]))
		}
		aug[i][n+i] = 1
	}
	if scale == 0 {
		return [n][n]float64{}, errSingular
	}

	for col := 0; col < n; col++ {
		pivot := col
		maxAbs := math.Abs(aug[col][col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug[r][col]); v > maxAbs {
				maxAbs = v
				pivot = r
			}
		}
		if maxAbs <= singularTol*scale {
			return [n][n]float64{}, errSingular
		}
		if pivot != col {
			aug[col], aug[pivot] = aug[pivot], aug[col]
		}

		p := aug[col][col]
		for c := 0; c < 2*n; c++ {
			aug[col][c] /= p
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			if factor == 0 {
				continue
			}
			for c := 0; c < 2*n; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	var inv [n][n]float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			inv[i][j] = aug[i][n+j]
		}
	}
	return inv, nil
}
