package dataset

import (
	"context"
	"fmt"
	"sort"

	"github.com/hupe1980/feeddown/bpm"
	"github.com/hupe1980/feeddown/measurement"
)

// ResponseInput describes a two-point simulation response.
type ResponseInput struct {
	Beam          int
	Reference     string
	Scan          string
	RDT           measurement.RDT
	Plane         string
	KnobName      string
	CrossingAngle float64
	Strength      float64
	// Reader defaults to measurement.SimulationReader.
	Reader measurement.Reader
}

// ResponsePoint is the per-unit-knob sensitivity of one monitor.
type ResponsePoint struct {
	Real float64
	Imag float64
}

// Response is the result of BuildResponse.
type Response struct {
	Metadata      Metadata
	CrossingAngle float64
	Strength      float64
	Data          map[string]ResponsePoint
}

// Names returns the monitor names in lexical order.
func (r *Response) Names() []string {
	names := make([]string, 0, len(r.Data))
	for n := range r.Data {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BuildResponse estimates the linear knob sensitivity of every good arc
// monitor from one reference and one scan:
//
//	((scan - ref) / crossingAngle) / strength
//
// for the real and imaginary parts. No fit or error propagation is done.
func BuildResponse(ctx context.Context, in ResponseInput, opts ...Option) (*Response, error) {
	switch {
	case in.CrossingAngle == 0:
		return nil, fmt.Errorf("%w: zero crossing angle", ErrInvalidInput)
	case in.Strength == 0:
		return nil, fmt.Errorf("%w: zero knob strength", ErrInvalidInput)
	case in.Beam != 1 && in.Beam != 2:
		return nil, fmt.Errorf("%w: beam %d", ErrInvalidInput, in.Beam)
	}
	o := applyOptions(opts)
	reader := in.Reader
	if reader == nil {
		reader = measurement.SimulationReader{}
	}

	ref, err := readResponse(ctx, reader, in, in.Reference)
	if err != nil {
		return nil, fmt.Errorf("read reference: %w", err)
	}
	scan, err := readResponse(ctx, reader, in, in.Scan)
	if err != nil {
		return nil, fmt.Errorf("read scan: %w", err)
	}

	refRows := make(map[string]measurement.Row, len(ref.Rows))
	for _, r := range ref.Rows {
		refRows[r.Name] = r
	}
	out := &Response{
		Metadata: Metadata{
			Beam:          bpm.BeamName(in.Beam),
			ReferencePath: in.Reference,
			RDT:           in.RDT.String(),
			RDTPlane:      in.Plane,
			KnobName:      in.KnobName,
		},
		CrossingAngle: in.CrossingAngle,
		Strength:      in.Strength,
		Data:          make(map[string]ResponsePoint),
	}
	for _, s := range scan.Rows {
		r, ok := refRows[s.Name]
		if !ok || !o.classifier.Good(in.Beam, s.Name) {
			continue
		}
		out.Data[s.Name] = ResponsePoint{
			Real: ((s.Real - r.Real) / in.CrossingAngle) / in.Strength,
			Imag: ((s.Imag - r.Imag) / in.CrossingAngle) / in.Strength,
		}
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("%w: no good arc BPM in both files", ErrEmptyIntersection)
	}
	o.logger.Info("response built", "beam", in.Beam, "rdt", in.RDT.String(), "count", len(out.Data))
	return out, nil
}

func readResponse(ctx context.Context, r measurement.Reader, in ResponseInput, path string) (*measurement.Table, error) {
	t, err := r.Read(ctx, path, in.RDT, in.Plane)
	if err != nil {
		return nil, err
	}
	if err := t.CheckBeam(in.Beam); err != nil {
		return nil, err
	}
	return t, nil
}
