// Package measurement reads per-BPM RDT readings from analysis output.
package measurement

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotFound is returned when a measurement or model file is missing.
	ErrNotFound = errors.New("measurement file not found")

	// ErrBeamMismatch matches any *BeamMismatchError.
	ErrBeamMismatch = errors.New("beam mismatch")

	// ErrNoBeam is returned when a file declares no beam and none can be
	// derived from its monitor names.
	ErrNoBeam = errors.New("cannot determine beam")
)

// Row is one monitor's reading of an RDT.
type Row struct {
	Name         string
	Amplitude    float64
	Real         float64
	Imag         float64
	AmplitudeErr float64
}

// Table is the content of one measurement file.
type Table struct {
	Path string
	Beam int
	Rows []Row
}

// Reader reads the RDT rows of one measurement.
type Reader interface {
	Read(ctx context.Context, path string, rdt RDT, plane string) (*Table, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(ctx context.Context, path string, rdt RDT, plane string) (*Table, error)

// Read implements Reader.
func (f ReaderFunc) Read(ctx context.Context, path string, rdt RDT, plane string) (*Table, error) {
	return f(ctx, path, rdt, plane)
}

// BeamMismatchError reports a file whose beam differs from the requested one.
type BeamMismatchError struct {
	Path      string
	Requested int
	Found     int
}

func (e *BeamMismatchError) Error() string {
	return fmt.Sprintf("%s: beam mismatch: requested beam %d, file is beam %d", e.Path, e.Requested, e.Found)
}

// Is makes errors.Is(err, ErrBeamMismatch) match.
func (e *BeamMismatchError) Is(target error) bool { return target == ErrBeamMismatch }

// CheckBeam returns a *BeamMismatchError when t does not belong to beam.
func (t *Table) CheckBeam(beam int) error {
	if t.Beam != beam {
		return &BeamMismatchError{Path: t.Path, Requested: beam, Found: t.Beam}
	}
	return nil
}

func wrapOpenErr(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return err
}
