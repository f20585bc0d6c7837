package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/feeddown/bpm"
	"github.com/hupe1980/feeddown/knob"
	"github.com/hupe1980/feeddown/lattice"
	"github.com/hupe1980/feeddown/measurement"
	"github.com/hupe1980/feeddown/outlier"
)

// BuildInput describes one beam, RDT and plane of a knob scan.
type BuildInput struct {
	Beam      int
	Model     *lattice.Model
	Reference string
	Scans     []string
	RDT       measurement.RDT
	Plane     string
	KnobName  string
	Resolver  knob.Resolver
	// Reader defaults to measurement.FileReader.
	Reader measurement.Reader
}

func (in *BuildInput) validate() error {
	switch {
	case in.Beam != 1 && in.Beam != 2:
		return fmt.Errorf("%w: beam %d", ErrInvalidInput, in.Beam)
	case in.Model == nil || in.Model.Len() == 0:
		return fmt.Errorf("%w: empty model", ErrInvalidInput)
	case in.Reference == "":
		return fmt.Errorf("%w: no reference", ErrInvalidInput)
	case in.Resolver == nil:
		return fmt.Errorf("%w: no knob resolver", ErrInvalidInput)
	case !measurement.ValidPlane(in.Plane):
		return fmt.Errorf("%w: plane %q", ErrInvalidInput, in.Plane)
	}
	return nil
}

func (in *BuildInput) reader() measurement.Reader {
	if in.Reader == nil {
		return measurement.FileReader{}
	}
	return in.Reader
}

// Build reduces a reference and its scans to a reference-relative dataset.
//
// The reference must resolve and read cleanly. A scan whose knob cannot be
// resolved, or whose file is missing, is skipped and recorded in the report.
// A beam mismatch in any file aborts the build. Monitors are kept only when
// they have one reference entry and one entry per requested scan, so a
// skipped scan leaves the intersection empty.
func Build(ctx context.Context, in BuildInput, opts ...Option) (*Dataset, *Report, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	o := applyOptions(opts)
	log := o.logger.With("beam", in.Beam, "rdt", in.RDT.String(), "plane", in.Plane)
	reader := in.reader()

	rep := &Report{Requested: len(in.Scans), Excluded: make(map[string]Exclusion)}
	acc := NewAccumulator(in.Model)

	refKnob, err := in.Resolver.Resolve(ctx, in.Reference)
	if err != nil {
		return nil, rep, fmt.Errorf("resolve reference knob: %w", err)
	}
	rows, err := readFiltered(ctx, reader, in, in.Reference, o.threshold, rep)
	if err != nil {
		return nil, rep, fmt.Errorf("read reference: %w", err)
	}
	acc.AddRef(refKnob, rows)

	for _, scan := range in.Scans {
		if err := ctx.Err(); err != nil {
			return nil, rep, err
		}
		k, err := in.Resolver.Resolve(ctx, scan)
		if err != nil {
			if errors.Is(err, knob.ErrNotFound) {
				rep.Skipped = append(rep.Skipped, SkippedScan{Source: scan, Err: err})
				log.Warn("skipping scan: knob not resolved", "source", scan, "error", err)
				continue
			}
			return nil, rep, fmt.Errorf("resolve knob: %w", err)
		}
		rows, err := readFiltered(ctx, reader, in, scan, o.threshold, rep)
		if err != nil {
			if errors.Is(err, measurement.ErrNotFound) {
				rep.Skipped = append(rep.Skipped, SkippedScan{Source: scan, Err: err})
				log.Warn("skipping scan: file not found", "source", scan, "error", err)
				continue
			}
			return nil, rep, fmt.Errorf("read scan: %w", err)
		}
		acc.AddData(k, rows)
		rep.Processed++
	}
	if rep.Processed == 0 {
		return nil, rep, fmt.Errorf("%w: %d requested", ErrNoScans, rep.Requested)
	}

	keep := Intersect(acc, rep.Requested, rep.Excluded)
	if keep.IsEmpty() {
		return nil, rep, fmt.Errorf("%w: beam %d %s_%s", ErrEmptyIntersection, in.Beam, in.RDT, in.Plane)
	}

	ds := &Dataset{
		Metadata: Metadata{
			Beam:          bpm.BeamName(in.Beam),
			ReferencePath: in.Reference,
			RDT:           in.RDT.String(),
			RDTPlane:      in.Plane,
			KnobName:      in.KnobName,
		},
		Data: make(map[string]*BPMData, keep.GetCardinality()),
	}
	names := acc.Names()
	it := keep.Iterator()
	for it.HasNext() {
		name := names[it.Next()]
		rec := acc.records[name]
		ds.Data[name] = &BPMData{S: rec.S, Diffs: Differences(rec.Ref[0], rec.Data)}
	}
	logBuild(log, ds, rep)
	return ds, rep, nil
}

func readFiltered(ctx context.Context, r measurement.Reader, in BuildInput, path string, threshold float64, rep *Report) ([]measurement.Row, error) {
	t, err := r.Read(ctx, path, in.RDT, in.Plane)
	if err != nil {
		return nil, err
	}
	if err := t.CheckBeam(in.Beam); err != nil {
		return nil, err
	}
	rows := outlier.Filter(t.Rows, threshold)
	rep.Rejected += len(t.Rows) - len(rows)
	return rows, nil
}

func logBuild(log *slog.Logger, ds *Dataset, rep *Report) {
	log.Info("dataset built",
		"count", ds.Len(),
		"excluded", len(rep.Excluded),
		"skipped", len(rep.Skipped),
		"rejected", rep.Rejected,
	)
}
