// Package feeddown reduces RDT feed-down measurements to per-monitor
// response models and ring-wide statistics.
//
// A feed-down measurement sweeps a control knob (typically a crossing angle)
// and records a resonance driving term at every beam position monitor.
// Each scan is compared to a reference taken at the nominal knob setting:
//
//	ctx := context.Background()
//	model, _ := lattice.Load("model/twiss.dat")
//	resolver, _ := knob.LoadTable("knobs.txt")
//
//	a := feeddown.New(feeddown.WithStore(storage.NewLocalStore("./results")))
//	res, err := a.Analyze(ctx, dataset.BuildInput{
//	    Beam:      1,
//	    Model:     model,
//	    Reference: "meas/ref",
//	    Scans:     []string{"meas/m100", "meas/p100"},
//	    RDT:       measurement.MustParseRDT("f1200"),
//	    Plane:     "x",
//	    KnobName:  "IP1-XING",
//	    Resolver:  resolver,
//	})
//	name, _ := a.SaveDataset(ctx, res.Dataset)
//
// # Pipeline
//
//   - Outlier rejection per file (package outlier)
//   - Reference-relative differences over the monitors seen in every file (package dataset)
//   - Quadratic fit per monitor, both channels (packages fit and dataset)
//   - Shift statistics over good arc monitors (packages aggregate and bpm)
//
// Scans whose knob cannot be resolved, or whose file is missing, are skipped
// with a warning and listed in the build Report; every other problem is
// returned as an error. Use errors.Is with the exported error kinds.
//
// # Grouping
//
// Partial results saved by separate runs are merged per beam with
// GroupStored. Files that fail validation are logged and skipped:
//
//	res, rejected, err := a.GroupStored(ctx, "run-2024-04-12/")
//
// # Storage
//
// Results go to any storage.Store: the local file system, memory, Amazon S3
// (storage/s3) or MinIO (storage/minio). Datasets may be compressed with
// LZ4 or zstd; the compression is recorded in the file extension.
//
// # Observability
//
// Logging uses log/slog via Logger; without configuration, warnings go to
// stderr. Operational metrics are reported to a MetricsCollector, see
// BasicMetricsCollector and package metrics/prometheus.
package feeddown
