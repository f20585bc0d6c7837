package dataset

import (
	"sort"

	"github.com/hupe1980/feeddown/bpm"
	"github.com/hupe1980/feeddown/fit"
)

// Entry is a measurement row tagged with the knob value of its source.
type Entry struct {
	Knob         float64
	Amplitude    float64
	Real         float64
	Imag         float64
	AmplitudeErr float64
}

// Diff is a scan entry relative to the reference entry of the same monitor.
type Diff struct {
	Knob         float64
	Real         float64
	Imag         float64
	AmplitudeErr float64
}

// FitData holds the quadratic fits of the real and imaginary channels.
type FitData struct {
	Real fit.Result
	Imag fit.Result
}

// BPMData is the per-monitor content of a dataset.
type BPMData struct {
	S     float64
	Diffs []Diff
	Fit   *FitData
}

// Metadata describes how a dataset was produced.
type Metadata struct {
	Beam          string
	ReferencePath string
	RDT           string
	RDTPlane      string
	KnobName      string
}

// Dataset is the reference-relative data of one beam, one RDT and one plane.
type Dataset struct {
	Metadata Metadata
	Data     map[string]*BPMData
}

// BeamNumber parses Metadata.Beam.
func (d *Dataset) BeamNumber() (int, error) {
	return bpm.ParseBeam(d.Metadata.Beam)
}

// Names returns the monitor names in lexical order.
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.Data))
	for n := range d.Data {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of monitors.
func (d *Dataset) Len() int { return len(d.Data) }

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{Metadata: d.Metadata, Data: make(map[string]*BPMData, len(d.Data))}
	for n, b := range d.Data {
		out.Data[n] = b.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (b *BPMData) Clone() *BPMData {
	c := &BPMData{S: b.S, Diffs: append([]Diff(nil), b.Diffs...)}
	if b.Fit != nil {
		f := *b.Fit
		c.Fit = &f
	}
	return c
}

// Channels splits the diffs into knob, real and imaginary series.
func (b *BPMData) Channels() (knob, re, im []float64) {
	knob = make([]float64, len(b.Diffs))
	re = make([]float64, len(b.Diffs))
	im = make([]float64, len(b.Diffs))
	for i, d := range b.Diffs {
		knob[i] = d.Knob
		re[i] = d.Real
		im[i] = d.Imag
	}
	return knob, re, im
}

// Equal reports whether two monitors carry the same data.
func (b *BPMData) Equal(o *BPMData) bool {
	if b.S != o.S || len(b.Diffs) != len(o.Diffs) {
		return false
	}
	for i := range b.Diffs {
		if b.Diffs[i] != o.Diffs[i] {
			return false
		}
	}
	if (b.Fit == nil) != (o.Fit == nil) {
		return false
	}
	return b.Fit == nil || *b.Fit == *o.Fit
}
