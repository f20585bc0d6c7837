package outlier

import (
	"fmt"
	"math"
	"testing"

	"github.com/hupe1980/feeddown/measurement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(name string, amp, re, im float64) measurement.Row {
	return measurement.Row{Name: name, Amplitude: amp, Real: re, Imag: im, AmplitudeErr: 0.01}
}

func TestFilter_RejectsSpike(t *testing.T) {
	var rows []measurement.Row
	for i := 0; i < 20; i++ {
		rows = append(rows, row(fmt.Sprintf("BPM.%dL1.B1", i+10), 1+0.01*float64(i%3), 0.5, 0.2+0.01*float64(i%2)))
	}
	rows = append(rows, row("BPM.99L1.B1", 50, 0.5, 0.2))

	got := Filter(rows, DefaultThreshold)
	require.Len(t, got, 20)
	for _, r := range got {
		assert.NotEqual(t, "BPM.99L1.B1", r.Name)
	}
	// order preserved
	assert.Equal(t, rows[0].Name, got[0].Name)
	assert.Equal(t, rows[19].Name, got[19].Name)
}

func TestFilter_ColumnsIndependent(t *testing.T) {
	var rows []measurement.Row
	for i := 0; i < 30; i++ {
		rows = append(rows, row(fmt.Sprintf("A%d", i), 1, 1, 1))
	}
	// Only the imaginary column is off for this row.
	rows[7].Imag = 100

	got := Filter(rows, DefaultThreshold)
	assert.Len(t, got, 29)
	for _, r := range got {
		assert.NotEqual(t, "A7", r.Name)
	}
}

func TestFilter_ZeroVarianceKeepsAll(t *testing.T) {
	rows := []measurement.Row{row("a", 1, 2, 3), row("b", 1, 2, 3), row("c", 1, 2, 3)}
	got := Filter(rows, DefaultThreshold)
	assert.Equal(t, rows, got)
}

func TestFilter_ZeroVarianceAtZeroThreshold(t *testing.T) {
	rows := []measurement.Row{row("a", 1, 2, 3), row("b", 1, 2, 3), row("c", 1, 2, 3)}
	assert.Equal(t, rows, Filter(rows, 0))

	// Only the varying column may reject at threshold 0.
	mixed := []measurement.Row{row("a", 1, 2, 3), row("b", 1, 2, 3), row("c", 1, 2, 4)}
	assert.Empty(t, Filter(mixed, 0))
}

func TestFilter_SmallInputs(t *testing.T) {
	assert.Empty(t, Filter(nil, DefaultThreshold))

	one := []measurement.Row{row("a", 1, 2, 3)}
	got := Filter(one, DefaultThreshold)
	assert.Equal(t, one, got)

	// returned slice is a copy
	got[0].Name = "changed"
	assert.Equal(t, "a", one[0].Name)
}

func TestFilter_Properties(t *testing.T) {
	rows := []measurement.Row{
		row("a", 1, 1, 1),
		row("b", 2, 1.5, 0.9),
		row("c", 1.2, 0.8, 1.1),
		row("d", 9, 7, -4),
		row("e", 1.1, 1.05, 1.0),
	}

	for _, th := range []float64{0, 0.5, 1, 1.5, 2, 3} {
		t.Run(fmt.Sprintf("threshold=%g", th), func(t *testing.T) {
			got := Filter(rows, th)
			assert.LessOrEqual(t, len(got), len(rows))

			amp, re, im := ZScores(rows)
			kept := make(map[string]bool, len(got))
			for _, r := range got {
				kept[r.Name] = true
			}
			for i, r := range rows {
				if math.Abs(amp[i]) > th || math.Abs(re[i]) > th || math.Abs(im[i]) > th {
					assert.False(t, kept[r.Name], "row %s exceeds threshold but was kept", r.Name)
				}
			}
		})
	}
}
