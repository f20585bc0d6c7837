package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/hupe1980/feeddown/codec"
	"github.com/hupe1980/feeddown/fit"
)

// Persisted layout:
//
//	{
//	  "metadata": {"beam": "LHCB1", "reference_path": "...", "rdt": "f1200",
//	               "rdt_plane": "x", "knob_name": "..."},
//	  "data": {"BPM.12L1.B1": {"s": 123.4,
//	                           "diffdata": [[knob, re, im, err], ...],
//	                           "fitdata": {"real": {...}, "imag": {...}}}}
//	}
//
// Non-finite floats are written as the strings "Infinity", "-Infinity" and
// "NaN". Older files may name the knob "knob" instead of "knob_name".

type fileDataset struct {
	Metadata *fileMetadata       `json:"metadata"`
	Data     map[string]*fileBPM `json:"data"`
}

type fileMetadata struct {
	Beam          *flexString `json:"beam"`
	ReferencePath *string     `json:"reference_path"`
	RDT           *string     `json:"rdt"`
	RDTPlane      *string     `json:"rdt_plane"`
	KnobName      *string     `json:"knob_name,omitempty"`
	Knob          *string     `json:"knob,omitempty"`
}

type fileBPM struct {
	S        *jsonFloat    `json:"s"`
	DiffData [][]jsonFloat `json:"diffdata"`
	FitData  *fileFit      `json:"fitdata,omitempty"`
}

type fileFit struct {
	Real fileResult `json:"real"`
	Imag fileResult `json:"imag"`
}

type fileResult struct {
	Coefficients []jsonFloat `json:"coefficients"`
	Covariance   []jsonFloat `json:"covariance"`
	StdErrors    []jsonFloat `json:"std_errors"`
}

// Encode serializes a dataset. A nil codec selects codec.Default.
func Encode(ds *Dataset, c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	f := fileDataset{
		Metadata: &fileMetadata{
			Beam:          ptr(flexString(ds.Metadata.Beam)),
			ReferencePath: ptr(ds.Metadata.ReferencePath),
			RDT:           ptr(ds.Metadata.RDT),
			RDTPlane:      ptr(ds.Metadata.RDTPlane),
			KnobName:      ptr(ds.Metadata.KnobName),
		},
		Data: make(map[string]*fileBPM, len(ds.Data)),
	}
	for name, b := range ds.Data {
		fb := &fileBPM{S: ptr(jsonFloat(b.S)), DiffData: make([][]jsonFloat, len(b.Diffs))}
		for i, d := range b.Diffs {
			fb.DiffData[i] = []jsonFloat{jsonFloat(d.Knob), jsonFloat(d.Real), jsonFloat(d.Imag), jsonFloat(d.AmplitudeErr)}
		}
		if b.Fit != nil {
			fb.FitData = &fileFit{Real: encodeResult(b.Fit.Real), Imag: encodeResult(b.Fit.Imag)}
		}
		f.Data[name] = fb
	}
	out, err := c.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return out, nil
}

// Decode parses and validates a persisted dataset. Malformed input yields a
// *ValidationError naming the offending key. A nil codec selects
// codec.Default.
func Decode(data []byte, c codec.Codec) (*Dataset, error) {
	if c == nil {
		c = codec.Default
	}
	var f fileDataset
	if err := c.Unmarshal(data, &f); err != nil {
		return nil, &ValidationError{Err: err}
	}

	md := f.Metadata
	if md == nil {
		return nil, &ValidationError{Key: "metadata"}
	}
	switch {
	case md.Beam == nil:
		return nil, &ValidationError{Key: "metadata.beam"}
	case md.ReferencePath == nil:
		return nil, &ValidationError{Key: "metadata.reference_path"}
	case md.RDT == nil:
		return nil, &ValidationError{Key: "metadata.rdt"}
	case md.RDTPlane == nil:
		return nil, &ValidationError{Key: "metadata.rdt_plane"}
	case md.KnobName == nil && md.Knob == nil:
		return nil, &ValidationError{Key: "metadata.knob_name"}
	}
	if f.Data == nil {
		return nil, &ValidationError{Key: "data"}
	}

	ds := &Dataset{
		Metadata: Metadata{
			Beam:          string(*md.Beam),
			ReferencePath: *md.ReferencePath,
			RDT:           *md.RDT,
			RDTPlane:      *md.RDTPlane,
		},
		Data: make(map[string]*BPMData, len(f.Data)),
	}
	if md.KnobName != nil {
		ds.Metadata.KnobName = *md.KnobName
	} else {
		ds.Metadata.KnobName = *md.Knob
	}

	for name, fb := range f.Data {
		key := "data." + name
		if fb == nil || fb.S == nil {
			return nil, &ValidationError{Key: key + ".s"}
		}
		b := &BPMData{S: float64(*fb.S), Diffs: make([]Diff, len(fb.DiffData))}
		for i, row := range fb.DiffData {
			if len(row) != 4 {
				return nil, &ValidationError{Key: key + ".diffdata", Err: fmt.Errorf("entry %d has %d values, want 4", i, len(row))}
			}
			b.Diffs[i] = Diff{Knob: float64(row[0]), Real: float64(row[1]), Imag: float64(row[2]), AmplitudeErr: float64(row[3])}
		}
		if fb.FitData != nil {
			re, err := decodeResult(fb.FitData.Real)
			if err != nil {
				return nil, &ValidationError{Key: key + ".fitdata.real", Err: err}
			}
			im, err := decodeResult(fb.FitData.Imag)
			if err != nil {
				return nil, &ValidationError{Key: key + ".fitdata.imag", Err: err}
			}
			b.Fit = &FitData{Real: re, Imag: im}
		}
		ds.Data[name] = b
	}
	return ds, nil
}

func encodeResult(r fit.Result) fileResult {
	out := fileResult{
		Coefficients: make([]jsonFloat, fit.NumParams),
		Covariance:   make([]jsonFloat, 0, fit.NumParams*fit.NumParams),
		StdErrors:    make([]jsonFloat, fit.NumParams),
	}
	for i := range fit.NumParams {
		out.Coefficients[i] = jsonFloat(r.Coefficients[i])
		out.StdErrors[i] = jsonFloat(r.StdErrors[i])
		for j := range fit.NumParams {
			out.Covariance = append(out.Covariance, jsonFloat(r.Covariance[i][j]))
		}
	}
	return out
}

var errFitShape = errors.New("unexpected fit shape")

func decodeResult(f fileResult) (fit.Result, error) {
	var r fit.Result
	if len(f.Coefficients) != fit.NumParams || len(f.StdErrors) != fit.NumParams || len(f.Covariance) != fit.NumParams*fit.NumParams {
		return r, errFitShape
	}
	for i := range fit.NumParams {
		r.Coefficients[i] = float64(f.Coefficients[i])
		r.StdErrors[i] = float64(f.StdErrors[i])
		for j := range fit.NumParams {
			r.Covariance[i][j] = float64(f.Covariance[i*fit.NumParams+j])
		}
	}
	return r, nil
}

func ptr[T any](v T) *T { return &v }

// jsonFloat is a float64 that survives non-finite values.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *jsonFloat) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	switch s {
	case "NaN", "nan":
		*f = jsonFloat(math.NaN())
		return nil
	case "Infinity", "inf", "+Infinity":
		*f = jsonFloat(math.Inf(1))
		return nil
	case "-Infinity", "-inf":
		*f = jsonFloat(math.Inf(-1))
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	*f = jsonFloat(v)
	return nil
}

// flexString accepts a JSON string or number. Some writers store the beam
// as a bare number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		u, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*s = flexString(u)
		return nil
	}
	*s = flexString(b)
	return nil
}
