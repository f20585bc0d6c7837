package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/feeddown"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ feeddown.MetricsCollector = (*Collector)(nil)

func TestCollector(t *testing.T) {
	reg := prom.NewRegistry()
	c := New(reg)

	c.RecordBuild(time.Millisecond, 42, 2, nil)
	c.RecordBuild(time.Millisecond, 0, 1, errors.New("boom"))
	c.RecordFit(time.Millisecond, 42, 3)
	c.RecordSave(time.Millisecond, 1024, nil)
	c.RecordLoad(time.Millisecond, nil)
	c.RecordGroup(time.Millisecond, nil)

	assert.Equal(t, 42.0, testutil.ToFloat64(c.bpmsIncluded))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.scansSkipped))
	assert.Equal(t, 39.0, testutil.ToFloat64(c.fits.WithLabelValues("success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.fits.WithLabelValues("error")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(c.savedBytes))
	assert.Equal(t, 6, testutil.CollectAndCount(c.opLatency))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestCollector_DoubleRegistrationPanics(t *testing.T) {
	reg := prom.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
