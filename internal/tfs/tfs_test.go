package tfs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `@ TITLE            %s "f1200_x"
@ BEAM             %d 1
# comment line
*  NAME              S         AMP      REAL     IMAG      ERRAMP
$  %s                %le       %le      %le      %le       %le
   "BPM.12L1.B1"     10.0      1.0      0.6      0.8       0.01
   "BPM.11L1.B1"     20.0      2.0      1.2      1.6       0.02
`

func TestParse(t *testing.T) {
	tbl, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	v, ok := tbl.Header("TITLE")
	require.True(t, ok)
	assert.Equal(t, "f1200_x", v)
	v, _ = tbl.Header("BEAM")
	assert.Equal(t, "1", v)

	assert.Equal(t, []string{"NAME", "S", "AMP", "REAL", "IMAG", "ERRAMP"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "BPM.12L1.B1", tbl.Rows[0][0])

	c, err := tbl.Col("real")
	require.NoError(t, err)
	f, err := tbl.Float(1, c)
	require.NoError(t, err)
	assert.InDelta(t, 1.2, f, 1e-12)

	_, err = tbl.Col("MISSING")
	assert.ErrorIs(t, err, ErrColumnMissing)
	assert.True(t, tbl.HasCol("ERRAMP"))
}

func TestParse_Errors(t *testing.T) {
	t.Run("no columns", func(t *testing.T) {
		_, err := Parse(strings.NewReader("@ A %s \"b\"\n"))
		assert.ErrorIs(t, err, ErrNoColumns)
	})
	t.Run("row before columns", func(t *testing.T) {
		_, err := Parse(strings.NewReader("BPM 1 2\n"))
		assert.ErrorIs(t, err, ErrNoColumns)
	})
	t.Run("cell count", func(t *testing.T) {
		_, err := Parse(strings.NewReader("* A B\n$ %s %le\n x 1 2\n"))
		assert.Error(t, err)
	})
}

func TestComplex(t *testing.T) {
	tbl, err := Parse(strings.NewReader("* NAME F1200\n$ %s %s\n A (1.5+2j)\n B 3-4i\n C 2\n"))
	require.NoError(t, err)

	want := []complex128{complex(1.5, 2), complex(3, -4), complex(2, 0)}
	for i, w := range want {
		got, err := tbl.Complex(i, 1)
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f1200_x.tfs")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	tbl, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "nope.tfs"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
