package knob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquisitionTime(t *testing.T) {
	at, ok := AcquisitionTime("/data/Beam1@BunchTurn@2024_04_12@10_30_15_123.sdds", nil)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 4, 12, 10, 30, 15, 123e6, time.UTC), at)

	_, ok = AcquisitionTime("reference.tfs", nil)
	assert.False(t, ok)
}

func TestFileNameLister(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{
		"Beam1@BunchTurn@2024_04_12@10_31_00_000.sdds",
		"Beam1@BunchTurn@2024_04_12@10_30_00_000.sdds",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}

	times, err := FileNameLister(time.UTC)(dir)
	require.NoError(t, err)
	require.Len(t, times, 2)
	assert.True(t, times[0].Before(times[1]))

	_, err = FileNameLister(time.UTC)(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

type historyFunc func(ctx context.Context, knob string, at time.Time) (float64, error)

func (f historyFunc) Value(ctx context.Context, knob string, at time.Time) (float64, error) {
	return f(ctx, knob, at)
}

func listerOf(times ...time.Time) Lister {
	return func(string) ([]time.Time, error) { return times, nil }
}

func TestHistoryResolver(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 4, 12, 10, 0, 0, 0, time.UTC)

	t.Run("consistent", func(t *testing.T) {
		var calls atomic.Int32
		client := historyFunc(func(_ context.Context, knob string, _ time.Time) (float64, error) {
			calls.Add(1)
			assert.Equal(t, "LHCBEAM/IP5-XING-H-MURAD", knob)
			return 160, nil
		})
		h := NewHistoryResolver("LHCBEAM/IP5-XING-H-MURAD", client,
			WithLister(listerOf(t0, t0.Add(time.Second))), WithRateLimit(0, 0))

		v, err := h.Resolve(ctx, "meas")
		require.NoError(t, err)
		assert.Equal(t, 160.0, v)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, "LHCBEAM/IP5-XING-H-MURAD", h.Knob())
	})

	t.Run("inconsistent", func(t *testing.T) {
		client := historyFunc(func(_ context.Context, _ string, at time.Time) (float64, error) {
			if at.Equal(t0) {
				return 160, nil
			}
			return 150, nil
		})
		h := NewHistoryResolver("k", client, WithLister(listerOf(t0, t0.Add(time.Minute))))

		_, err := h.Resolve(ctx, "meas")
		assert.ErrorIs(t, err, ErrInconsistent)
		assert.NotErrorIs(t, err, ErrNotFound)
		var ie *InconsistentError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, []float64{160, 150}, ie.Values)
	})

	t.Run("within tolerance", func(t *testing.T) {
		client := historyFunc(func(_ context.Context, _ string, at time.Time) (float64, error) {
			if at.Equal(t0) {
				return 160, nil
			}
			return 160.0004, nil
		})
		h := NewHistoryResolver("k", client, WithLister(listerOf(t0, t0.Add(time.Minute))), WithTolerance(1e-3))
		v, err := h.Resolve(ctx, "meas")
		require.NoError(t, err)
		assert.Equal(t, 160.0, v)
	})

	t.Run("no acquisitions", func(t *testing.T) {
		h := NewHistoryResolver("k", historyFunc(nil), WithLister(listerOf()))
		_, err := h.Resolve(ctx, "meas")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("client not found passes through", func(t *testing.T) {
		client := historyFunc(func(context.Context, string, time.Time) (float64, error) {
			return 0, ErrNotFound
		})
		h := NewHistoryResolver("k", client, WithLister(listerOf(t0)))
		_, err := h.Resolve(ctx, "meas")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rate limit honors context", func(t *testing.T) {
		client := historyFunc(func(context.Context, string, time.Time) (float64, error) { return 1, nil })
		h := NewHistoryResolver("k", client, WithLister(listerOf(t0, t0, t0)), WithRateLimit(0.001, 1))
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := h.Resolve(cctx, "meas")
		assert.Error(t, err)
	})
}

func TestTableResolver(t *testing.T) {
	table := `
# simulation knob table
^xing_160.*\.tfs$  160
^xing_-?150        -150
.*ref.*            0
`
	r, err := ParseTable(strings.NewReader(table))
	require.NoError(t, err)

	ctx := context.Background()
	v, err := r.Resolve(ctx, "/sim/xing_160_b1.tfs")
	require.NoError(t, err)
	assert.Equal(t, 160.0, v)

	v, err = r.Resolve(ctx, "/sim/xing_-150")
	require.NoError(t, err)
	assert.Equal(t, -150.0, v)

	v, err = r.Resolve(ctx, "/sim/my_ref_run")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = r.Resolve(ctx, "/sim/other")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ParseTable(strings.NewReader("only-pattern\n"))
	assert.Error(t, err)
	_, err = ParseTable(strings.NewReader("[ 1\n"))
	assert.Error(t, err)
	_, err = ParseTable(strings.NewReader("a b\n"))
	assert.Error(t, err)
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knobs.txt")
	require.NoError(t, os.WriteFile(path, []byte("run1 1.5\n"), 0o644))

	r, err := LoadTable(path)
	require.NoError(t, err)
	v, err := r.Resolve(context.Background(), "run1")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestStaticAndFunc(t *testing.T) {
	ctx := context.Background()
	s := Static{"a": 1}
	v, err := s.Resolve(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	_, err = s.Resolve(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	f := Func(func(context.Context, string) (float64, error) { return 0, errors.New("boom") })
	_, err = f.Resolve(ctx, "x")
	assert.EqualError(t, err, "boom")
}

func TestCachingResolver(t *testing.T) {
	var calls atomic.Int32
	inner := Func(func(_ context.Context, source string) (float64, error) {
		calls.Add(1)
		if source == "missing" {
			return 0, ErrNotFound
		}
		return 42, nil
	})
	c := NewCachingResolver(inner, 8)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := c.Resolve(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 42.0, v)
	}
	assert.Equal(t, int32(1), calls.Load())

	// failures are not cached
	for i := 0; i < 2; i++ {
		_, err := c.Resolve(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(3), calls.Load())

	hits, _ := c.Stats()
	assert.Equal(t, int64(2), hits)
}
