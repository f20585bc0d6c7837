package measurement

import (
	"context"
	"fmt"
	"math/cmplx"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/feeddown/bpm"
	"github.com/hupe1980/feeddown/internal/tfs"
)

// FileReader reads the RDT tables written by the optics analysis. The path
// is either the table itself or a measurement directory holding
// rdt/<category>/<rdt>_<plane>.tfs.
type FileReader struct{}

// Read implements Reader.
func (FileReader) Read(ctx context.Context, path string, rdt RDT, plane string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := Locate(path, rdt, plane)
	t, err := tfs.ReadFile(file)
	if err != nil {
		return nil, wrapOpenErr(file, err)
	}

	cols := make(map[string]int, 5)
	for _, name := range []string{"NAME", "AMP", "REAL", "IMAG", "ERRAMP"} {
		c, err := t.Col(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		cols[name] = c
	}

	out := &Table{Path: file, Rows: make([]Row, 0, len(t.Rows))}
	for i, cells := range t.Rows {
		r := Row{Name: cells[cols["NAME"]]}
		if r.Amplitude, err = t.Float(i, cols["AMP"]); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if r.Real, err = t.Float(i, cols["REAL"]); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if r.Imag, err = t.Float(i, cols["IMAG"]); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if r.AmplitudeErr, err = t.Float(i, cols["ERRAMP"]); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		out.Rows = append(out.Rows, r)
	}

	if out.Beam, err = beamOf(t, out.Rows); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return out, nil
}

// Locate returns the table path for a measurement path.
func Locate(path string, rdt RDT, plane string) string {
	if strings.EqualFold(filepath.Ext(path), ".tfs") {
		return path
	}
	return filepath.Join(path, "rdt", rdt.Category(), rdt.FileName(plane))
}

// SimulationReader reads simulation output where the driving term is a
// single complex-valued column named after it (e.g. "F1200"). Amplitude,
// real and imaginary parts are derived from that column; the amplitude error
// is zero.
type SimulationReader struct {
	// FileName is looked up when the path is a directory. Defaults to "rdts.tfs".
	FileName string
}

// Read implements Reader.
func (s SimulationReader) Read(ctx context.Context, path string, rdt RDT, _ string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := path
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		name := s.FileName
		if name == "" {
			name = "rdts.tfs"
		}
		file = filepath.Join(path, name)
	}

	t, err := tfs.ReadFile(file)
	if err != nil {
		return nil, wrapOpenErr(file, err)
	}
	nameCol, err := t.Col("NAME")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	rdtCol, err := t.Col(rdt.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	out := &Table{Path: file, Rows: make([]Row, 0, len(t.Rows))}
	for i, cells := range t.Rows {
		z, err := t.Complex(i, rdtCol)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		out.Rows = append(out.Rows, Row{
			Name:      cells[nameCol],
			Amplitude: cmplx.Abs(z),
			Real:      real(z),
			Imag:      imag(z),
		})
	}

	if out.Beam, err = beamOf(t, out.Rows); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return out, nil
}

// beamOf prefers the BEAM header and falls back to the monitor name suffix.
func beamOf(t *tfs.Table, rows []Row) (int, error) {
	if v, ok := t.Header("BEAM"); ok {
		return bpm.ParseBeam(v)
	}
	if v, ok := t.Header("SEQUENCE"); ok {
		if b, err := bpm.ParseBeam(v); err == nil {
			return b, nil
		}
	}
	for _, r := range rows {
		if b := bpm.BeamOf(r.Name); b > 0 {
			return b, nil
		}
	}
	return 0, ErrNoBeam
}
