package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte(`{"diffdata":[[1,2,3,0.1]]}`), 200)

	for _, typ := range []Type{None, LZ4, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			c, err := Compress(data, typ)
			require.NoError(t, err)
			if typ != None {
				assert.Less(t, len(c), len(data))
			}

			got, err := Decompress(c, typ)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestDecompress_Corrupt(t *testing.T) {
	_, err := Decompress([]byte("not compressed"), ZSTD)
	require.Error(t, err)
	_, err = Decompress([]byte("not compressed"), LZ4)
	require.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, ZSTD, FromName("b1_f1200_x.json.zst"))
	assert.Equal(t, LZ4, FromName("b1_f1200_x.json.lz4"))
	assert.Equal(t, None, FromName("b1_f1200_x.json"))
	assert.Equal(t, "b1.json", TrimExt("b1.json.zst"))
	assert.Equal(t, ".zst", ZSTD.Ext())
	assert.Equal(t, "", None.Ext())

	for _, s := range []string{"none", "lz4", "zstd"} {
		typ, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, typ.String())
	}
	_, err := Parse("gzip")
	require.Error(t, err)
}
