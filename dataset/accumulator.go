package dataset

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/feeddown/lattice"
	"github.com/hupe1980/feeddown/measurement"
)

// Record collects the entries of one monitor during a build.
type Record struct {
	S    float64
	Ref  []Entry
	Data []Entry
}

// Accumulator is the per-build map of monitor records. It is owned by a
// single Build invocation and must not be shared across beams or RDT/plane
// combinations.
type Accumulator struct {
	order   []string
	index   map[string]uint32
	records map[string]*Record

	// scans holds the monitor indices seen in each scan, in AddData order.
	scans []*roaring.Bitmap
	// dup holds monitors listed more than once within a single scan.
	dup *roaring.Bitmap
}

// NewAccumulator creates empty records for every monitor of the model.
func NewAccumulator(m *lattice.Model) *Accumulator {
	a := &Accumulator{
		order:   append([]string(nil), m.Names...),
		index:   make(map[string]uint32, len(m.Names)),
		records: make(map[string]*Record, len(m.Names)),
		dup:     roaring.New(),
	}
	for i, n := range m.Names {
		if _, ok := a.index[n]; !ok {
			a.index[n] = uint32(i)
		}
		a.records[n] = &Record{S: m.S[n]}
	}
	return a
}

// AddRef appends rows to the reference lists of the named monitors. Rows of
// monitors outside the model are ignored.
func (a *Accumulator) AddRef(knob float64, rows []measurement.Row) {
	for _, r := range rows {
		if rec, ok := a.records[r.Name]; ok {
			rec.Ref = append(rec.Ref, entryOf(knob, r))
		}
	}
}

// AddData appends the rows of one scan to the scan lists of the named
// monitors. Each call counts as one scan for the coverage check.
func (a *Accumulator) AddData(knob float64, rows []measurement.Row) {
	seen := roaring.New()
	for _, r := range rows {
		rec, ok := a.records[r.Name]
		if !ok {
			continue
		}
		i := a.index[r.Name]
		if !seen.CheckedAdd(i) {
			a.dup.Add(i)
		}
		rec.Data = append(rec.Data, entryOf(knob, r))
	}
	a.scans = append(a.scans, seen)
}

// Scans returns the number of scans added so far.
func (a *Accumulator) Scans() int { return len(a.scans) }

// Record returns the record of a monitor.
func (a *Accumulator) Record(name string) (*Record, bool) {
	r, ok := a.records[name]
	return r, ok
}

// Names returns the model order of monitors.
func (a *Accumulator) Names() []string { return a.order }

func entryOf(knob float64, r measurement.Row) Entry {
	return Entry{
		Knob:         knob,
		Amplitude:    r.Amplitude,
		Real:         r.Real,
		Imag:         r.Imag,
		AmplitudeErr: r.AmplitudeErr,
	}
}
