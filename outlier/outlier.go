// Package outlier rejects statistically anomalous measurement rows.
package outlier

import (
	"math"

	"github.com/hupe1980/feeddown/measurement"
)

// DefaultThreshold is the z-score magnitude at which a row is rejected.
const DefaultThreshold = 3.0

// Filter returns the rows whose amplitude, real and imaginary z-scores are all
// strictly below threshold in magnitude. Columns are scored independently
// using the population standard deviation. A column without variance never
// rejects a row. Fewer than two rows are returned unchanged.
//
// The input is not modified; survivors keep their relative order.
func Filter(rows []measurement.Row, threshold float64) []measurement.Row {
	out := make([]measurement.Row, 0, len(rows))
	if len(rows) < 2 {
		return append(out, rows...)
	}

	amp := newColumn(rows, func(r measurement.Row) float64 { return r.Amplitude })
	re := newColumn(rows, func(r measurement.Row) float64 { return r.Real })
	im := newColumn(rows, func(r measurement.Row) float64 { return r.Imag })

	for _, r := range rows {
		if amp.exceeds(r.Amplitude, threshold) ||
			re.exceeds(r.Real, threshold) ||
			im.exceeds(r.Imag, threshold) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ZScores returns the per-column z-scores of every row, in input order.
func ZScores(rows []measurement.Row) (amp, re, im []float64) {
	ac := newColumn(rows, func(r measurement.Row) float64 { return r.Amplitude })
	rc := newColumn(rows, func(r measurement.Row) float64 { return r.Real })
	ic := newColumn(rows, func(r measurement.Row) float64 { return r.Imag })

	amp = make([]float64, len(rows))
	re = make([]float64, len(rows))
	im = make([]float64, len(rows))
	for i, r := range rows {
		amp[i] = ac.z(r.Amplitude)
		re[i] = rc.z(r.Real)
		im[i] = ic.z(r.Imag)
	}
	return amp, re, im
}

type column struct {
	mean float64
	std  float64
}

func newColumn(rows []measurement.Row, get func(measurement.Row) float64) column {
	if len(rows) == 0 {
		return column{}
	}
	var sum float64
	for _, r := range rows {
		sum += get(r)
	}
	mean := sum / float64(len(rows))

	var ss float64
	for _, r := range rows {
		d := get(r) - mean
		ss += d * d
	}
	return column{mean: mean, std: math.Sqrt(ss / float64(len(rows)))}
}

func (c column) z(v float64) float64 {
	if c.std == 0 {
		return 0
	}
	return (v - c.mean) / c.std
}

func (c column) exceeds(v, threshold float64) bool {
	if c.std == 0 {
		return false
	}
	return math.Abs(c.z(v)) >= threshold
}
