package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Beam     string               `json:"beam"`
	S        float64              `json:"s"`
	DiffData [][]float64          `json:"diffdata"`
	Meta     map[string]string    `json:"meta"`
	Fits     map[string][]float64 `json:"fits"`
}

func samplePayload() payload {
	return payload{
		Beam:     "LHCB1",
		S:        1234.5,
		DiffData: [][]float64{{-1, 0.1, 0.2, 0.01}, {1, 0.3, 0.4, 0.01}},
		Meta:     map[string]string{"rdt": "f1200", "rdt_plane": "x"},
		Fits:     map[string][]float64{"real": {1, 2, 3}},
	}
}

func mustMarshal(tb testing.TB, c Codec, v any) []byte {
	tb.Helper()
	b, err := c.Marshal(v)
	require.NoError(tb, err)
	return b
}

func TestCodecs_Interchangeable(t *testing.T) {
	codecs := []Codec{JSON{}, GoJSON{}, Pretty{}}
	for _, enc := range codecs {
		for _, dec := range codecs {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				var got payload
				require.NoError(t, dec.Unmarshal(mustMarshal(t, enc, samplePayload()), &got))
				assert.Equal(t, samplePayload(), got)
			})
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	c, ok := ByName("Go-JSON")
	require.True(t, ok)
	assert.Equal(t, GoJSON{}, c)
	_, ok = ByName("msgpack")
	assert.False(t, ok)
	assert.Equal(t, "go-json", Default.Name())
	assert.Equal(t, []string{"go-json", "json", "pretty"}, Names())
}

func TestPretty_Indents(t *testing.T) {
	compact := mustMarshal(t, GoJSON{}, samplePayload())
	pretty := mustMarshal(t, Pretty{}, samplePayload())
	assert.NotContains(t, string(compact), "\n")
	assert.Contains(t, string(pretty), "\n  \"beam\": \"LHCB1\"")
	assert.Greater(t, len(pretty), len(compact))
	assert.False(t, bytes.Equal(compact, pretty))
}

func TestMarshal_Unsupported(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}, Pretty{}} {
		_, err := c.Marshal(make(chan int))
		assert.Error(t, err, c.Name())
	}
}

func BenchmarkCodec_Marshal(b *testing.B) {
	p := samplePayload()
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		b.Run(c.Name(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := c.Marshal(p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCodec_Unmarshal(b *testing.B) {
	data := mustMarshal(b, JSON{}, samplePayload())
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		b.Run(c.Name(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				var p payload
				if err := c.Unmarshal(data, &p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
