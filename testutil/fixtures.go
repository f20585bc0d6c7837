package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Reading is one monitor's RDT value in a synthetic measurement.
type Reading struct {
	Name   string
	Real   float64
	Imag   float64
	ErrAmp float64
}

// Amplitude returns |Real + i Imag|.
func (r Reading) Amplitude() float64 { return math.Hypot(r.Real, r.Imag) }

// MonitorNames returns count arc monitor names for beam, starting at index 10
// left of IP1, then continuing right of IP1.
func MonitorNames(beam, count int) []string {
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		side := "L"
		idx := 10 + i
		if i%2 == 1 {
			side = "R"
			idx = 10 + i - 1
		}
		names = append(names, fmt.Sprintf("BPM.%d%s1.B%d", idx, side, beam))
	}
	return names
}

// Response returns readings following re = re0 + slopeRe*knob and
// im = im0 + slopeIm*knob for each name, with per-monitor offsets.
func Response(names []string, knob, slopeRe, slopeIm float64) []Reading {
	out := make([]Reading, len(names))
	for i, n := range names {
		base := 1 + 0.01*float64(i)
		out[i] = Reading{
			Name:   n,
			Real:   base + slopeRe*knob,
			Imag:   0.5*base + slopeIm*knob,
			ErrAmp: 0.001,
		}
	}
	return out
}

// WriteRDTTable writes an RDT table to path.
func WriteRDTTable(t testing.TB, path string, beam int, readings []Reading) {
	t.Helper()

	var b strings.Builder
	fmt.Fprintf(&b, "@ BEAM %%d %d\n", beam)
	b.WriteString("* NAME S AMP REAL IMAG ERRAMP\n")
	b.WriteString("$ %s %le %le %le %le %le\n")
	for i, r := range readings {
		fmt.Fprintf(&b, " \"%s\" %g %.17g %.17g %.17g %.17g\n",
			r.Name, float64(i)*100, r.Amplitude(), r.Real, r.Imag, r.ErrAmp)
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

// WriteMeasurement creates root/name with the analysis output layout for a
// single RDT and returns the measurement directory.
func WriteMeasurement(t testing.TB, root, name, category, file string, beam int, readings []Reading) string {
	t.Helper()

	dir := filepath.Join(root, name)
	WriteRDTTable(t, filepath.Join(dir, "rdt", category, file), beam, readings)
	return dir
}

// WriteTwiss writes a model twiss table with the given monitor names plus a
// few non-monitor elements, and returns its path.
func WriteTwiss(t testing.TB, dir string, names []string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("@ SEQUENCE %s \"LHCB1\"\n")
	b.WriteString("* NAME S BETX BETY\n")
	b.WriteString("$ %s %le %le %le\n")
	b.WriteString(" \"IP1\" 0 0.55 0.55\n")
	for i, n := range names {
		fmt.Fprintf(&b, " \"%s\" %g 100 120\n", n, float64(i+1)*53.45)
		fmt.Fprintf(&b, " \"MQ.%d\" %g 150 30\n", i+10, float64(i+1)*53.45+1.2)
	}

	path := filepath.Join(dir, "twiss.dat")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// WriteSimulation writes a simulation table with one complex column named
// after the RDT (upper case) and returns its path.
func WriteSimulation(t testing.TB, path, rdt string, beam int, readings []Reading) string {
	t.Helper()

	col := strings.ToUpper(rdt)
	var b strings.Builder
	fmt.Fprintf(&b, "@ BEAM %%d %d\n", beam)
	fmt.Fprintf(&b, "* NAME %s\n", col)
	b.WriteString("$ %s %s\n")
	for _, r := range readings {
		fmt.Fprintf(&b, " \"%s\" (%.17g%+.17gj)\n", r.Name, r.Real, r.Imag)
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}
