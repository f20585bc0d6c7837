package feeddown

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/feeddown/aggregate"
	"github.com/hupe1980/feeddown/dataset"
	"github.com/hupe1980/feeddown/group"
	"github.com/hupe1980/feeddown/internal/compress"
	"github.com/hupe1980/feeddown/measurement"
	"golang.org/x/sync/errgroup"
)

// Analyzer runs the reduction pipeline with a shared configuration.
// It is safe for concurrent use.
type Analyzer struct {
	opts options
}

// New returns an Analyzer configured by opts.
func New(opts ...Option) *Analyzer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Analyzer{opts: o}
}

// Logger returns the analyzer's logger.
func (a *Analyzer) Logger() *Logger { return a.opts.logger }

func (a *Analyzer) datasetOptions() []dataset.Option {
	return []dataset.Option{
		dataset.WithLogger(a.opts.logger.Logger),
		dataset.WithThreshold(a.opts.threshold),
		dataset.WithWorkers(a.opts.workers),
		dataset.WithClassifier(a.opts.classifier),
	}
}

// Build reduces one reference and its scans to a dataset.
// See dataset.Build for the skip and failure rules.
func (a *Analyzer) Build(ctx context.Context, in dataset.BuildInput) (*dataset.Dataset, *dataset.Report, error) {
	start := time.Now()
	ds, rep, err := dataset.Build(ctx, in, a.datasetOptions()...)

	included, skipped := 0, 0
	if ds != nil {
		included = ds.Len()
	}
	if rep != nil {
		skipped = len(rep.Skipped)
	}
	a.opts.metricsCollector.RecordBuild(time.Since(start), included, skipped, err)
	if err != nil {
		a.opts.logger.WithBeam(in.Beam).WithRDT(in.RDT.String(), in.Plane).LogBuildFailure(ctx, skipped, err)
	}
	return ds, rep, err
}

// Fit fits every monitor of ds. The returned map holds the monitors that
// could not be fitted.
func (a *Analyzer) Fit(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, map[string]error, error) {
	start := time.Now()
	out, failures, err := dataset.Fit(ctx, ds, a.datasetOptions()...)
	if err != nil {
		return nil, nil, err
	}
	a.opts.metricsCollector.RecordFit(time.Since(start), ds.Len(), len(failures))
	a.opts.logger.LogFit(ctx, ds.Len(), len(failures))
	return out, failures, nil
}

// Shift aggregates the amplitude change of the good arc monitors per knob step.
func (a *Analyzer) Shift(ds *dataset.Dataset) (aggregate.Series, error) {
	return aggregate.Shift(ds, a.opts.classifier)
}

// Slopes summarizes the fitted slopes of the good arc monitors.
func (a *Analyzer) Slopes(ds *dataset.Dataset) (aggregate.SlopeStats, error) {
	return aggregate.Slopes(ds, a.opts.classifier)
}

// Response reduces a simulated reference and scan to per-monitor responses.
func (a *Analyzer) Response(ctx context.Context, in dataset.ResponseInput) (*dataset.Response, error) {
	return dataset.BuildResponse(ctx, in, a.datasetOptions()...)
}

// Result is the outcome of Analyze.
type Result struct {
	Combination
	Dataset  *dataset.Dataset
	Report   *dataset.Report
	Failures map[string]error
	Shift    aggregate.Series
}

// Analyze builds, fits and aggregates one dataset.
func (a *Analyzer) Analyze(ctx context.Context, in dataset.BuildInput) (*Result, error) {
	ds, rep, err := a.Build(ctx, in)
	if err != nil {
		return nil, err
	}
	fitted, failures, err := a.Fit(ctx, ds)
	if err != nil {
		return nil, err
	}
	shift, err := a.Shift(fitted)
	if err != nil {
		return nil, err
	}
	return &Result{
		Combination: Combination{RDT: in.RDT, Plane: in.Plane},
		Dataset:     fitted,
		Report:      rep,
		Failures:    failures,
		Shift:       shift,
	}, nil
}

// Combination is one RDT and plane to analyze.
type Combination struct {
	RDT   measurement.RDT
	Plane string
}

func (c Combination) String() string {
	return c.RDT.String() + "_" + c.Plane
}

// BuildAll analyzes every combination with the reference, scans and knob
// settings of base. Combinations run concurrently, bounded by WithWorkers;
// results are in input order. The first failure cancels the rest.
func (a *Analyzer) BuildAll(ctx context.Context, base dataset.BuildInput, combos []Combination) ([]*Result, error) {
	results := make([]*Result, len(combos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.workers)
	for i, c := range combos {
		in := base
		in.RDT, in.Plane = c.RDT, c.Plane
		g.Go(func() error {
			res, err := a.Analyze(gctx, in)
			if err != nil {
				return fmt.Errorf("%s: %w", c, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// DatasetName returns the base name under which a dataset is saved,
// e.g. "lhcb1_f1200_x.json".
func DatasetName(md dataset.Metadata) string {
	return strings.ToLower(fmt.Sprintf("%s_%s_%s", md.Beam, md.RDT, md.RDTPlane)) + ".json"
}

// SaveDataset writes ds to the configured store and returns its name.
func (a *Analyzer) SaveDataset(ctx context.Context, ds *dataset.Dataset) (string, error) {
	return a.SaveDatasetAs(ctx, DatasetName(ds.Metadata), ds)
}

// SaveDatasetAs writes ds under name, with the extension of the configured
// compression appended.
func (a *Analyzer) SaveDatasetAs(ctx context.Context, name string, ds *dataset.Dataset) (string, error) {
	if a.opts.store == nil {
		return "", ErrNoStore
	}
	start := time.Now()
	name = compress.TrimExt(name) + a.opts.compression.Ext()

	size, err := a.save(ctx, name, ds)
	a.opts.metricsCollector.RecordSave(time.Since(start), size, err)
	a.opts.logger.LogSave(ctx, name, size, err)
	if err != nil {
		return "", err
	}
	return name, nil
}

func (a *Analyzer) save(ctx context.Context, name string, ds *dataset.Dataset) (int, error) {
	data, err := dataset.Encode(ds, a.opts.codec)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", name, err)
	}
	data, err = compress.Compress(data, a.opts.compression)
	if err != nil {
		return 0, fmt.Errorf("compress %s: %w", name, err)
	}
	if err := a.opts.store.Put(ctx, name, data); err != nil {
		return 0, fmt.Errorf("put %s: %w", name, err)
	}
	return len(data), nil
}

// LoadDataset reads and validates a saved dataset. The compression is taken
// from the name. Malformed content yields a *dataset.ValidationError
// carrying the name.
func (a *Analyzer) LoadDataset(ctx context.Context, name string) (*dataset.Dataset, error) {
	if a.opts.store == nil {
		return nil, ErrNoStore
	}
	start := time.Now()
	ds, err := a.load(ctx, name)
	a.opts.metricsCollector.RecordLoad(time.Since(start), err)
	return ds, err
}

func (a *Analyzer) load(ctx context.Context, name string) (*dataset.Dataset, error) {
	data, err := a.opts.store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	data, err = compress.Decompress(data, compress.FromName(name))
	if err != nil {
		return nil, &dataset.ValidationError{Source: name, Err: err}
	}
	ds, err := dataset.Decode(data, a.opts.codec)
	if err != nil {
		var ve *dataset.ValidationError
		if errors.As(err, &ve) {
			ve.Source = name
		}
		return nil, err
	}
	return ds, nil
}

// LoadDatasets loads names concurrently. A file that fails validation is
// logged and reported in rejected; any other failure aborts. Datasets are
// returned in input order.
func (a *Analyzer) LoadDatasets(ctx context.Context, names []string) (loaded []*dataset.Dataset, rejected []string, err error) {
	slots := make([]*dataset.Dataset, len(names))
	invalid := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.workers)
	for i, name := range names {
		g.Go(func() error {
			ds, err := a.LoadDataset(gctx, name)
			if errors.Is(err, ErrValidation) {
				invalid[i] = err
				return nil
			}
			if err != nil {
				return err
			}
			slots[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for i, ds := range slots {
		if invalid[i] != nil {
			a.opts.logger.LogRejected(ctx, names[i], invalid[i])
			rejected = append(rejected, names[i])
			continue
		}
		loaded = append(loaded, ds)
	}
	return loaded, rejected, nil
}

// Group merges datasets into one dataset per beam.
func (a *Analyzer) Group(ctx context.Context, datasets []*dataset.Dataset) (*group.Result, error) {
	start := time.Now()
	res, err := group.Group(datasets,
		group.WithMergePolicy(a.opts.mergePolicy),
		group.WithLogger(a.opts.logger.Logger),
	)
	a.opts.metricsCollector.RecordGroup(time.Since(start), err)
	a.opts.logger.LogGroup(ctx, len(datasets), 0, err)
	return res, err
}

// GroupStored loads every dataset under prefix and groups them. Invalid
// files are skipped and returned in rejected.
func (a *Analyzer) GroupStored(ctx context.Context, prefix string) (res *group.Result, rejected []string, err error) {
	if a.opts.store == nil {
		return nil, nil, ErrNoStore
	}
	all, err := a.opts.store.List(ctx, prefix)
	if err != nil {
		return nil, nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	var names []string
	for _, name := range all {
		if IsDatasetName(name) {
			names = append(names, name)
		}
	}

	loaded, rejected, err := a.LoadDatasets(ctx, names)
	if err != nil {
		return nil, nil, err
	}
	if len(loaded) == 0 {
		return nil, rejected, fmt.Errorf("%w: %d files, %d rejected", ErrNoDatasets, len(names), len(rejected))
	}

	start := time.Now()
	res, err = group.Group(loaded,
		group.WithMergePolicy(a.opts.mergePolicy),
		group.WithLogger(a.opts.logger.Logger),
	)
	a.opts.metricsCollector.RecordGroup(time.Since(start), err)
	a.opts.logger.LogGroup(ctx, len(names), len(rejected), err)
	if err != nil {
		return nil, rejected, err
	}
	return res, rejected, nil
}

// IsDatasetName reports whether name looks like a saved dataset.
func IsDatasetName(name string) bool {
	return strings.HasSuffix(compress.TrimExt(name), ".json")
}
