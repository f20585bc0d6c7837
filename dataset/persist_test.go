package dataset

import (
	"math"
	"testing"

	"github.com/hupe1980/feeddown/codec"
	"github.com/hupe1980/feeddown/fit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() *Dataset {
	inf := math.Inf(1)
	return &Dataset{
		Metadata: Metadata{
			Beam:          "LHCB1",
			ReferencePath: "/data/ref",
			RDT:           "f1200",
			RDTPlane:      "x",
			KnobName:      "LHCBEAM/IP1-XING",
		},
		Data: map[string]*BPMData{
			"BPM.10L1.B1": {
				S:     53.45,
				Diffs: []Diff{{Knob: -1, Real: 0.1, Imag: 0.2, AmplitudeErr: 0.01}, {Knob: 1, Real: 0.3, Imag: 0.4, AmplitudeErr: 0.01}},
				Fit: &FitData{
					Real: fit.Result{
						Coefficients: [3]float64{1, 2, 3},
						Covariance:   [3][3]float64{{inf, inf, inf}, {inf, inf, inf}, {inf, inf, inf}},
						StdErrors:    [3]float64{inf, inf, inf},
					},
					Imag: fit.Result{
						Coefficients: [3]float64{-1, 0.5, 0},
						Covariance:   [3][3]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
						StdErrors:    [3]float64{1, math.Sqrt(5), 3},
					},
				},
			},
			"BPM.11L1.B1": {S: 80, Diffs: []Diff{{Knob: 1, Real: 2, Imag: 3, AmplitudeErr: 0.1}}},
		},
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}, nil} {
		name := "default"
		if c != nil {
			name = c.Name()
		}
		t.Run(name, func(t *testing.T) {
			ds := sampleDataset()
			data, err := Encode(ds, c)
			require.NoError(t, err)

			got, err := Decode(data, c)
			require.NoError(t, err)
			assert.Equal(t, ds.Metadata, got.Metadata)
			require.Equal(t, ds.Names(), got.Names())
			for _, n := range ds.Names() {
				assert.True(t, ds.Data[n].Equal(got.Data[n]), n)
			}
		})
	}
}

func TestEncode_Layout(t *testing.T) {
	data, err := Encode(sampleDataset(), codec.JSON{})
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"knob_name":"LHCBEAM/IP1-XING"`)
	assert.Contains(t, s, `"diffdata":[[1,2,3,0.1]]`)
	assert.Contains(t, s, `"std_errors":["Infinity","Infinity","Infinity"]`)
}

func TestDecode_LegacyKnobKey(t *testing.T) {
	in := `{"metadata":{"beam":1,"reference_path":"r","rdt":"f1200","rdt_plane":"y","knob":"XING"},
	        "data":{"BPM.10L1.B1":{"s":1.5,"diffdata":[[1,2,3,4],[0,"NaN",0,0]]}}}`

	ds, err := Decode([]byte(in), nil)
	require.NoError(t, err)
	assert.Equal(t, "XING", ds.Metadata.KnobName)
	assert.Equal(t, "1", ds.Metadata.Beam)

	beam, err := ds.BeamNumber()
	require.NoError(t, err)
	assert.Equal(t, 1, beam)

	b := ds.Data["BPM.10L1.B1"]
	require.Len(t, b.Diffs, 2)
	assert.Equal(t, Diff{Knob: 1, Real: 2, Imag: 3, AmplitudeErr: 4}, b.Diffs[0])
	assert.True(t, math.IsNaN(b.Diffs[1].Real))
	assert.Nil(t, b.Fit)
}

func TestDecode_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		key  string
	}{
		{"no metadata", `{"data":{}}`, "metadata"},
		{"no beam", `{"metadata":{"reference_path":"r","rdt":"f1200","rdt_plane":"x","knob_name":"k"},"data":{}}`, "metadata.beam"},
		{"no reference", `{"metadata":{"beam":"LHCB1","rdt":"f1200","rdt_plane":"x","knob_name":"k"},"data":{}}`, "metadata.reference_path"},
		{"no rdt", `{"metadata":{"beam":"LHCB1","reference_path":"r","rdt_plane":"x","knob_name":"k"},"data":{}}`, "metadata.rdt"},
		{"no plane", `{"metadata":{"beam":"LHCB1","reference_path":"r","rdt":"f1200","knob_name":"k"},"data":{}}`, "metadata.rdt_plane"},
		{"no knob", `{"metadata":{"beam":"LHCB1","reference_path":"r","rdt":"f1200","rdt_plane":"x"},"data":{}}`, "metadata.knob_name"},
		{"no data", `{"metadata":{"beam":"LHCB1","reference_path":"r","rdt":"f1200","rdt_plane":"x","knob_name":"k"}}`, "data"},
		{"short diff", `{"metadata":{"beam":"LHCB1","reference_path":"r","rdt":"f1200","rdt_plane":"x","knob_name":"k"},"data":{"B":{"s":1,"diffdata":[[1,2,3]]}}}`, "data.B.diffdata"},
		{"no s", `{"metadata":{"beam":"LHCB1","reference_path":"r","rdt":"f1200","rdt_plane":"x","knob_name":"k"},"data":{"B":{"diffdata":[]}}}`, "data.B.s"},
		{"bad fit", `{"metadata":{"beam":"LHCB1","reference_path":"r","rdt":"f1200","rdt_plane":"x","knob_name":"k"},"data":{"B":{"s":1,"diffdata":[],"fitdata":{"real":{"coefficients":[1]},"imag":{}}}}}`, "data.B.fitdata.real"},
		{"syntax", `{"metadata":`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in), codec.JSON{})
			require.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.key, ve.Key)
		})
	}
}
