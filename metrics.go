package feeddown

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// metrics/prometheus provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called after each dataset build. included is the number
	// of monitors in the dataset and skipped the number of skipped scans.
	RecordBuild(duration time.Duration, included, skipped int, err error)

	// RecordFit is called after each fit pass.
	RecordFit(duration time.Duration, fitted, failed int)

	// RecordSave is called after each dataset write.
	RecordSave(duration time.Duration, size int, err error)

	// RecordLoad is called after each dataset read. Validation failures are
	// reported as errors.
	RecordLoad(duration time.Duration, err error)

	// RecordGroup is called after each grouping run.
	RecordGroup(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(time.Duration, int, int, error) {}
func (NoopMetricsCollector) RecordFit(time.Duration, int, int)          {}
func (NoopMetricsCollector) RecordSave(time.Duration, int, error)       {}
func (NoopMetricsCollector) RecordLoad(time.Duration, error)            {}
func (NoopMetricsCollector) RecordGroup(time.Duration, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	BPMsIncluded    atomic.Int64
	ScansSkipped    atomic.Int64
	FitCount        atomic.Int64
	FitBPMs         atomic.Int64
	FitFailed       atomic.Int64
	SaveCount       atomic.Int64
	SaveErrors      atomic.Int64
	SaveBytes       atomic.Int64
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
	GroupCount      atomic.Int64
	GroupErrors     atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(duration time.Duration, included, skipped int, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	b.ScansSkipped.Add(int64(skipped))
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BPMsIncluded.Add(int64(included))
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(_ time.Duration, fitted, failed int) {
	b.FitCount.Add(1)
	b.FitBPMs.Add(int64(fitted))
	b.FitFailed.Add(int64(failed))
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(_ time.Duration, size int, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(int64(size))
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordGroup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGroup(_ time.Duration, err error) {
	b.GroupCount.Add(1)
	if err != nil {
		b.GroupErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:    b.BuildCount.Load(),
		BuildErrors:   b.BuildErrors.Load(),
		BuildAvgNanos: b.getAvgBuildNanos(),
		BPMsIncluded:  b.BPMsIncluded.Load(),
		ScansSkipped:  b.ScansSkipped.Load(),
		FitCount:      b.FitCount.Load(),
		FitBPMs:       b.FitBPMs.Load(),
		FitFailed:     b.FitFailed.Load(),
		SaveCount:     b.SaveCount.Load(),
		SaveErrors:    b.SaveErrors.Load(),
		SaveBytes:     b.SaveBytes.Load(),
		LoadCount:     b.LoadCount.Load(),
		LoadErrors:    b.LoadErrors.Load(),
		GroupCount:    b.GroupCount.Load(),
		GroupErrors:   b.GroupErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgBuildNanos() int64 {
	count := b.BuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.BuildTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount    int64
	BuildErrors   int64
	BuildAvgNanos int64
	BPMsIncluded  int64
	ScansSkipped  int64
	FitCount      int64
	FitBPMs       int64
	FitFailed     int64
	SaveCount     int64
	SaveErrors    int64
	SaveBytes     int64
	LoadCount     int64
	LoadErrors    int64
	GroupCount    int64
	GroupErrors   int64
}
