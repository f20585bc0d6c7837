// Package aggregate computes ring-wide statistics over the good arc monitors
// of a dataset.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/feeddown/bpm"
	"github.com/hupe1980/feeddown/dataset"
)

// ErrEmptyDataset is returned for a dataset without monitors.
var ErrEmptyDataset = errors.New("empty dataset")

// Series holds parallel knob deltas, mean values and standard deviations.
type Series struct {
	Knob []float64
	Mean []float64
	Std  []float64
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Knob) }

// Shift returns the mean and standard deviation of |Δre + iΔim| over the good
// arc monitors at every knob delta. The knob deltas are those of the first
// monitor in name order; an intersected dataset has the same set for every
// monitor. Raw differences are used, not fitted curves. A delta at which no
// good monitor contributes yields NaN.
func Shift(ds *dataset.Dataset, c *bpm.Classifier) (Series, error) {
	good, err := goodMonitors(ds, c)
	if err != nil {
		return Series{}, err
	}

	first := ds.Data[ds.Names()[0]]
	knobs := distinct(first.Diffs)

	out := Series{
		Knob: knobs,
		Mean: make([]float64, len(knobs)),
		Std:  make([]float64, len(knobs)),
	}
	for i, k := range knobs {
		var amps []float64
		for _, name := range good {
			for _, d := range ds.Data[name].Diffs {
				if d.Knob == k {
					amps = append(amps, math.Hypot(d.Real, d.Imag))
				}
			}
		}
		out.Mean[i], out.Std[i] = meanStd(amps)
	}
	return out, nil
}

// SlopeStats summarizes the fitted slopes across good arc monitors.
type SlopeStats struct {
	Count    int
	RealMean float64
	RealStd  float64
	ImagMean float64
	ImagStd  float64
}

// Slopes returns the mean and standard deviation of the fitted real and
// imaginary slopes over the good arc monitors that carry a fit.
func Slopes(ds *dataset.Dataset, c *bpm.Classifier) (SlopeStats, error) {
	good, err := goodMonitors(ds, c)
	if err != nil {
		return SlopeStats{}, err
	}
	var re, im []float64
	for _, name := range good {
		f := ds.Data[name].Fit
		if f == nil {
			continue
		}
		re = append(re, f.Real.Slope())
		im = append(im, f.Imag.Slope())
	}
	st := SlopeStats{Count: len(re)}
	st.RealMean, st.RealStd = meanStd(re)
	st.ImagMean, st.ImagStd = meanStd(im)
	return st, nil
}

func goodMonitors(ds *dataset.Dataset, c *bpm.Classifier) ([]string, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	beam, err := ds.BeamNumber()
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	var good []string
	for _, name := range ds.Names() {
		if c.Good(beam, name) {
			good = append(good, name)
		}
	}
	return good, nil
}

// distinct returns the sorted distinct knob deltas.
func distinct(diffs []dataset.Diff) []float64 {
	knobs := make([]float64, len(diffs))
	for i, d := range diffs {
		knobs[i] = d.Knob
	}
	sort.Float64s(knobs)
	var out []float64
	for i, k := range knobs {
		if i == 0 || k != knobs[i-1] {
			out = append(out, k)
		}
	}
	return out
}

// meanStd returns the mean and population standard deviation, or NaN for
// an empty sample.
func meanStd(v []float64) (mean, std float64) {
	if len(v) == 0 {
		return math.NaN(), math.NaN()
	}
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))
	for _, x := range v {
		std += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(std / float64(len(v)))
}
