// Package prometheus exports feeddown metrics to Prometheus.
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Collector implements feeddown.MetricsCollector.
type Collector struct {
	opLatency    *prom.HistogramVec
	bpmsIncluded prom.Gauge
	scansSkipped prom.Counter
	fits         *prom.CounterVec
	savedBytes   prom.Counter
}

// New creates a Collector and registers its metrics with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func New(reg prom.Registerer) *Collector {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	c := &Collector{
		opLatency: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "feeddown_operation_latency_seconds",
			Help:    "Latency of reduction operations",
			Buckets: prom.DefBuckets,
		}, []string{"op", "status"}),
		bpmsIncluded: prom.NewGauge(prom.GaugeOpts{
			Name: "feeddown_bpms_included",
			Help: "Number of monitors in the last built dataset",
		}),
		scansSkipped: prom.NewCounter(prom.CounterOpts{
			Name: "feeddown_scans_skipped_total",
			Help: "Total scan sources skipped during builds",
		}),
		fits: prom.NewCounterVec(prom.CounterOpts{
			Name: "feeddown_bpm_fits_total",
			Help: "Total per-monitor fits",
		}, []string{"status"}),
		savedBytes: prom.NewCounter(prom.CounterOpts{
			Name: "feeddown_saved_bytes_total",
			Help: "Total bytes of saved datasets",
		}),
	}

	reg.MustRegister(c.opLatency, c.bpmsIncluded, c.scansSkipped, c.fits, c.savedBytes)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) RecordBuild(d time.Duration, included, skipped int, err error) {
	c.opLatency.WithLabelValues("build", status(err)).Observe(d.Seconds())
	c.scansSkipped.Add(float64(skipped))
	if err == nil {
		c.bpmsIncluded.Set(float64(included))
	}
}

func (c *Collector) RecordFit(d time.Duration, fitted, failed int) {
	c.opLatency.WithLabelValues("fit", "success").Observe(d.Seconds())
	c.fits.WithLabelValues("success").Add(float64(fitted - failed))
	c.fits.WithLabelValues("error").Add(float64(failed))
}

func (c *Collector) RecordSave(d time.Duration, size int, err error) {
	c.opLatency.WithLabelValues("save", status(err)).Observe(d.Seconds())
	c.savedBytes.Add(float64(size))
}

func (c *Collector) RecordLoad(d time.Duration, err error) {
	c.opLatency.WithLabelValues("load", status(err)).Observe(d.Seconds())
}

func (c *Collector) RecordGroup(d time.Duration, err error) {
	c.opLatency.WithLabelValues("group", status(err)).Observe(d.Seconds())
}
