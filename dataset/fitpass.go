package dataset

import (
	"context"

	"github.com/hupe1980/feeddown/fit"
	"golang.org/x/sync/errgroup"
)

// Fit fits the real and imaginary response of every monitor.
//
// It returns a new dataset with Fit set on every monitor that could be
// fitted and a map of the monitors that could not. A failing monitor never
// aborts the pass; only context cancellation does. Results do not depend on
// the number of workers.
func Fit(ctx context.Context, ds *Dataset, opts ...Option) (*Dataset, map[string]error, error) {
	o := applyOptions(opts)
	out := ds.Clone()
	names := out.Names()

	results := make([]*FitData, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, name := range names {
		b := out.Data[name]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = FitBPM(name, b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	failures := make(map[string]error)
	for i, name := range names {
		if errs[i] != nil {
			failures[name] = errs[i]
			out.Data[name].Fit = nil
			o.logger.Warn("fit failed", "beam", ds.Metadata.Beam, "rdt", ds.Metadata.RDT, "bpm", name, "error", errs[i])
			continue
		}
		out.Data[name].Fit = results[i]
	}
	o.logger.Info("fit pass done", "beam", ds.Metadata.Beam, "rdt", ds.Metadata.RDT, "count", len(names)-len(failures), "failed", len(failures))
	return out, failures, nil
}

// FitBPM fits both channels of one monitor.
func FitBPM(name string, b *BPMData) (*FitData, error) {
	x, re, im := b.Channels()
	fr, err := fit.Quadratic(x, re)
	if err != nil {
		return nil, &FitError{BPM: name, Channel: "real", Err: err}
	}
	fi, err := fit.Quadratic(x, im)
	if err != nil {
		return nil, &FitError{BPM: name, Channel: "imag", Err: err}
	}
	return &FitData{Real: fr, Imag: fi}, nil
}
