package dataset

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Intersect returns the model indices of monitors that have exactly one
// reference entry and exactly one entry in every requested scan. A monitor
// missing from a single scan, or listed twice in one, is excluded entirely.
// When excluded is non-nil the reason for every dropped monitor is recorded
// in it.
func Intersect(acc *Accumulator, requested int, excluded map[string]Exclusion) *roaring.Bitmap {
	single := roaring.New()
	for i, name := range acc.order {
		if len(acc.records[name].Ref) == 1 {
			single.Add(uint32(i))
		}
	}

	complete := roaring.New()
	if requested > 0 && len(acc.scans) == requested {
		complete = roaring.FastAnd(acc.scans...)
	}
	complete.AndNot(acc.dup)

	keep := roaring.And(single, complete)
	if excluded == nil {
		return keep
	}
	for i, name := range acc.order {
		if keep.Contains(uint32(i)) {
			continue
		}
		rec := acc.records[name]
		switch {
		case len(rec.Ref) == 0:
			excluded[name] = NoReference
		case len(rec.Ref) > 1:
			excluded[name] = DuplicateReference
		case acc.dup.Contains(uint32(i)):
			excluded[name] = DuplicateScan
		default:
			excluded[name] = Incomplete
		}
	}
	return keep
}

// Differences returns the scan entries relative to ref, sorted by knob delta.
// Entries with equal knob deltas keep their scan order.
func Differences(ref Entry, data []Entry) []Diff {
	out := make([]Diff, len(data))
	for i, e := range data {
		out[i] = Diff{
			Knob:         e.Knob - ref.Knob,
			Real:         e.Real - ref.Real,
			Imag:         e.Imag - ref.Imag,
			AmplitudeErr: math.Hypot(e.AmplitudeErr, ref.AmplitudeErr),
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Knob < out[j].Knob })
	return out
}
