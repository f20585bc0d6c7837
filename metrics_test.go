package feeddown

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	mc := &BasicMetricsCollector{}
	assert.Equal(t, int64(0), mc.GetStats().BuildAvgNanos)

	mc.RecordBuild(2*time.Millisecond, 10, 1, nil)
	mc.RecordBuild(4*time.Millisecond, 0, 3, errors.New("boom"))
	mc.RecordFit(time.Millisecond, 10, 2)
	mc.RecordSave(time.Millisecond, 128, nil)
	mc.RecordSave(time.Millisecond, 0, errors.New("boom"))
	mc.RecordLoad(time.Millisecond, nil)
	mc.RecordLoad(time.Millisecond, ErrValidation)
	mc.RecordGroup(time.Millisecond, nil)

	s := mc.GetStats()
	assert.Equal(t, int64(2), s.BuildCount)
	assert.Equal(t, int64(1), s.BuildErrors)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), s.BuildAvgNanos)
	assert.Equal(t, int64(10), s.BPMsIncluded)
	assert.Equal(t, int64(4), s.ScansSkipped)
	assert.Equal(t, int64(10), s.FitBPMs)
	assert.Equal(t, int64(2), s.FitFailed)
	assert.Equal(t, int64(2), s.SaveCount)
	assert.Equal(t, int64(1), s.SaveErrors)
	assert.Equal(t, int64(128), s.SaveBytes)
	assert.Equal(t, int64(2), s.LoadCount)
	assert.Equal(t, int64(1), s.LoadErrors)
	assert.Equal(t, int64(1), s.GroupCount)
	assert.Equal(t, int64(0), s.GroupErrors)
}

func TestNoopMetricsCollector(t *testing.T) {
	var mc MetricsCollector = NoopMetricsCollector{}
	mc.RecordBuild(time.Second, 1, 1, nil)
	mc.RecordGroup(time.Second, errors.New("ignored"))

	a := New(WithMetricsCollector(nil))
	assert.IsType(t, NoopMetricsCollector{}, a.opts.metricsCollector)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, nil)).WithBeam(1).WithRDT("f1200", "x")

	l.LogBuildFailure(context.Background(), 1, ErrEmptyIntersection)
	assert.Contains(t, buf.String(), "build failed")
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "beam=1")
	assert.Contains(t, buf.String(), "rdt=f1200")
	assert.Contains(t, buf.String(), "skipped=1")

	buf.Reset()
	l.WithSource("a.json").LogRejected(context.Background(), "a.json", ErrValidation)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "source=a.json")

	buf.Reset()
	l.LogFit(context.Background(), 5, 2)
	assert.Contains(t, buf.String(), "failed=2")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
