// Package group merges per-file datasets into one dataset per beam.
//
// All datasets of a beam must agree on the driving term and plane; datasets
// of different beams must additionally agree on the knob. Monitor maps are
// merged by union under an explicit MergePolicy.
package group

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/feeddown/bpm"
	"github.com/hupe1980/feeddown/dataset"
)

var (
	// ErrMetadataConflict matches any *MetadataConflictError.
	ErrMetadataConflict = errors.New("metadata conflict")

	// ErrDuplicateBPM is returned when two datasets of one beam carry
	// different data for the same monitor under MergeRejectConflicts.
	ErrDuplicateBPM = errors.New("duplicate BPM with conflicting data")

	// ErrNoBeams is returned when no dataset was given.
	ErrNoBeams = errors.New("no beam data")

	// ErrNilDataset is returned when an input entry is nil.
	ErrNilDataset = errors.New("nil dataset")
)

// MetadataConflictError names the beam and field that disagree.
type MetadataConflictError struct {
	// Beam is the beam number, or 0 for a cross-beam conflict.
	Beam  int
	Field string
	Want  string
	Got   string
}

func (e *MetadataConflictError) Error() string {
	if e.Beam == 0 {
		return fmt.Sprintf("metadata conflict between beams: %s %q != %q", e.Field, e.Want, e.Got)
	}
	return fmt.Sprintf("metadata conflict for beam %d: %s %q != %q", e.Beam, e.Field, e.Want, e.Got)
}

// Is makes errors.Is(err, ErrMetadataConflict) match.
func (e *MetadataConflictError) Is(target error) bool { return target == ErrMetadataConflict }

// MergePolicy decides what happens when two datasets of a beam share a monitor.
type MergePolicy int

const (
	// MergeRejectConflicts accepts a shared monitor only when both datasets
	// carry identical data for it.
	MergeRejectConflicts MergePolicy = iota
	// MergeLastWriteWins keeps the monitor of the later dataset.
	MergeLastWriteWins
)

func (p MergePolicy) String() string {
	switch p {
	case MergeRejectConflicts:
		return "reject"
	case MergeLastWriteWins:
		return "last-write-wins"
	default:
		return "unknown"
	}
}

// ParseMergePolicy parses the String form of a policy.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch s {
	case "reject", "":
		return MergeRejectConflicts, nil
	case "last-write-wins", "lww":
		return MergeLastWriteWins, nil
	}
	return 0, fmt.Errorf("unknown merge policy %q", s)
}

// Option configures Group.
type Option func(*options)

type options struct {
	policy MergePolicy
	logger *slog.Logger
}

// WithMergePolicy sets the duplicate-monitor policy.
func WithMergePolicy(p MergePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger sets a logger for overwritten monitors.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Result is the grouped output. Beam1 or Beam2 is nil when no dataset of
// that beam was given.
type Result struct {
	Beam1    *dataset.Dataset
	Beam2    *dataset.Dataset
	RDT      string
	RDTPlane string
}

// Beam returns the dataset of a beam.
func (r *Result) Beam(b int) *dataset.Dataset {
	switch b {
	case 1:
		return r.Beam1
	case 2:
		return r.Beam2
	}
	return nil
}

// Group merges datasets in input order. Inputs are never modified.
func Group(datasets []*dataset.Dataset, opts ...Option) (*Result, error) {
	o := options{policy: MergeRejectConflicts}
	for _, opt := range opts {
		opt(&o)
	}

	perBeam := make(map[int][]*dataset.Dataset, 2)
	for i, ds := range datasets {
		if ds == nil {
			return nil, fmt.Errorf("group: input %d: %w", i, ErrNilDataset)
		}
		beam, err := ds.BeamNumber()
		if err != nil {
			return nil, err
		}
		if beam != 1 && beam != 2 {
			return nil, fmt.Errorf("group: unsupported beam %d", beam)
		}
		perBeam[beam] = append(perBeam[beam], ds)
	}
	if len(perBeam) == 0 {
		return nil, ErrNoBeams
	}

	res := &Result{}
	for _, beam := range []int{1, 2} {
		list := perBeam[beam]
		if len(list) == 0 {
			continue
		}
		merged, err := mergeBeam(beam, list, o)
		if err != nil {
			return nil, err
		}
		if beam == 1 {
			res.Beam1 = merged
		} else {
			res.Beam2 = merged
		}
	}

	if res.Beam1 != nil && res.Beam2 != nil {
		if err := checkCrossBeam(res.Beam1.Metadata, res.Beam2.Metadata); err != nil {
			return nil, err
		}
	}
	first := res.Beam1
	if first == nil {
		first = res.Beam2
	}
	res.RDT = first.Metadata.RDT
	res.RDTPlane = first.Metadata.RDTPlane
	return res, nil
}

func mergeBeam(beam int, list []*dataset.Dataset, o options) (*dataset.Dataset, error) {
	base := list[0].Metadata
	for _, ds := range list[1:] {
		md := ds.Metadata
		if md.RDT != base.RDT {
			return nil, &MetadataConflictError{Beam: beam, Field: "rdt", Want: base.RDT, Got: md.RDT}
		}
		if md.RDTPlane != base.RDTPlane {
			return nil, &MetadataConflictError{Beam: beam, Field: "rdt_plane", Want: base.RDTPlane, Got: md.RDTPlane}
		}
	}

	out := &dataset.Dataset{Metadata: base, Data: make(map[string]*dataset.BPMData)}
	out.Metadata.Beam = bpm.BeamName(beam)

	// Monitor names are interned so duplicates are found with bitmap
	// intersections between the merged set and each incoming dataset.
	ids := make(map[string]uint32)
	seen := roaring.New()
	for _, ds := range list {
		incoming := roaring.New()
		for name := range ds.Data {
			id, ok := ids[name]
			if !ok {
				id = uint32(len(ids))
				ids[name] = id
			}
			incoming.Add(id)
		}

		if dup := roaring.And(seen, incoming); !dup.IsEmpty() {
			if err := resolveDuplicates(beam, ds, out, names(ids, dup), o); err != nil {
				return nil, err
			}
		}
		for name, b := range ds.Data {
			if _, ok := out.Data[name]; ok && o.policy == MergeRejectConflicts {
				continue
			}
			out.Data[name] = b.Clone()
		}
		seen.Or(incoming)
	}
	return out, nil
}

func resolveDuplicates(beam int, ds, merged *dataset.Dataset, dups []string, o options) error {
	for _, name := range dups {
		if o.policy == MergeRejectConflicts {
			if !merged.Data[name].Equal(ds.Data[name]) {
				return fmt.Errorf("%w: beam %d %s (%s)", ErrDuplicateBPM, beam, name, ds.Metadata.ReferencePath)
			}
			continue
		}
		if o.logger != nil {
			o.logger.Warn("overwriting duplicate BPM", "beam", beam, "bpm", name, "source", ds.Metadata.ReferencePath)
		}
	}
	return nil
}

func checkCrossBeam(b1, b2 dataset.Metadata) error {
	switch {
	case b1.RDT != b2.RDT:
		return &MetadataConflictError{Field: "rdt", Want: b1.RDT, Got: b2.RDT}
	case b1.RDTPlane != b2.RDTPlane:
		return &MetadataConflictError{Field: "rdt_plane", Want: b1.RDTPlane, Got: b2.RDTPlane}
	case b1.KnobName != b2.KnobName:
		return &MetadataConflictError{Field: "knob_name", Want: b1.KnobName, Got: b2.KnobName}
	}
	return nil
}

func names(ids map[string]uint32, set *roaring.Bitmap) []string {
	var out []string
	for name, id := range ids {
		if set.Contains(id) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
